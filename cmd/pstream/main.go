// Command pstream is a small demonstration client/server and codec
// inspector for the packstream wire format: pack and dump values from
// the command line, or run a tiny framed echo service to see the
// streaming Packer/Unpacker and the chunked frame package work over a
// real net.Conn.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	shutdown, err := setupTelemetry()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pstream:", err)
		os.Exit(exitCode(err))
	}

	// os.Exit below would skip a deferred shutdown, so flush telemetry
	// explicitly before deciding whether to exit nonzero.
	runErr := run(os.Args[1:])
	if err := shutdown(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "pstream: telemetry shutdown:", err)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "pstream:", runErr)
		os.Exit(exitCode(runErr))
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return usageErrorf("usage: pstream <pack|dump|serve|ping> [args...]")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "pack":
		return runPack(rest)
	case "dump":
		return runDump(rest)
	case "serve":
		return runServe(rest)
	case "ping":
		return runPing(rest)
	case "help", "-h", "--help":
		fmt.Println("usage: pstream <pack|dump|serve|ping> [args...]")
		return nil
	default:
		return usageErrorf("unknown command %q", cmd)
	}
}
