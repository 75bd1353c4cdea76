package main

import (
	"os"
	"strconv"

	"github.com/seuros/go-packstream/src/bolt/packstream"
)

// runPack encodes a single scalar value and writes the raw PackStream
// bytes to stdout. By default the argument is packed as a string; a
// leading type flag selects a different encoding.
func runPack(args []string) error {
	if len(args) == 0 {
		return usageErrorf("usage: pstream pack [--int|--float|--bool|--null] <value>")
	}

	var kind, raw string
	switch args[0] {
	case "--int", "--float", "--bool", "--null":
		if args[0] != "--null" && len(args) < 2 {
			return usageErrorf("pstream pack %s requires a value", args[0])
		}
		kind = args[0]
		if len(args) > 1 {
			raw = args[1]
		}
	default:
		kind = "--string"
		raw = args[0]
	}

	var v interface{}
	switch kind {
	case "--string":
		v = raw
	case "--int":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return usageErrorf("invalid integer %q: %v", raw, err)
		}
		v = n
	case "--float":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return usageErrorf("invalid float %q: %v", raw, err)
		}
		v = f
	case "--bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return usageErrorf("invalid boolean %q: %v", raw, err)
		}
		v = b
	case "--null":
		v = nil
	}

	encoded, err := packstream.Pack(v)
	if err != nil {
		return runtimeErrorf("pack: %v", err)
	}
	if _, err := os.Stdout.Write(encoded); err != nil {
		return runtimeErrorf("write: %v", err)
	}
	return nil
}
