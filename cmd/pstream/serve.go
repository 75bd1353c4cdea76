package main

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/seuros/go-packstream/src/bolt/packstream"
	"github.com/seuros/go-packstream/src/frame"
)

// runServe listens on addr and answers every framed Echo it receives
// with an EchoAck carrying a per-connection sequence number, until the
// peer closes the connection.
func runServe(args []string) error {
	if len(args) != 1 {
		return usageErrorf("usage: pstream serve <addr>")
	}
	addr := args[0]

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return runtimeErrorf("listen: %v", err)
	}
	defer ln.Close()

	fmt.Printf("listening on %s\n", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			return runtimeErrorf("accept: %v", err)
		}
		go serveConn(conn)
	}
}

func serveConn(conn net.Conn) {
	defer conn.Close()
	fc := frame.NewConn(conn, packstream.DefaultConfig())

	var seq int64
	for {
		msg, err := fc.Receive()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Println("pstream: serve:", err)
			}
			return
		}
		echo, ok := msg.(frame.Echo)
		if !ok {
			fmt.Printf("pstream: serve: unexpected message type %T\n", msg)
			return
		}
		seq++
		if err := fc.Send(frame.EchoAck{Payload: echo.Payload, Seq: seq}); err != nil {
			fmt.Println("pstream: serve:", err)
			return
		}
	}
}
