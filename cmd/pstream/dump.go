package main

import (
	"fmt"
	"io"
	"os"

	"github.com/seuros/go-packstream/src/bolt/packstream"
)

// runDump reads PackStream-encoded values, one after another, from a
// file (or stdin if no file is given) and prints each as a Go value.
func runDump(args []string) error {
	var r io.Reader = os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return runtimeErrorf("open: %v", err)
		}
		defer f.Close()
		r = f
	}

	u := packstream.NewUnpacker(r)
	count := 0
	for u.HasNext() {
		v, err := u.Unpack()
		if err != nil {
			return runtimeErrorf("dump: value %d: %v", count, err)
		}
		fmt.Printf("%#v\n", v)
		count++
	}
	return nil
}
