package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/seuros/go-packstream/src/bolt/packstream"
	"github.com/seuros/go-packstream/src/frame"
	"github.com/yudhasubki/netpool"
)

// runPing dials addr through a pooled connection, exchanges count framed
// Echo/EchoAck round trips, and prints each reply. It exists to exercise
// the connection pool against the chunked frame codec the way a real
// client would, rather than opening a fresh socket per request.
func runPing(args []string) error {
	if len(args) < 2 {
		return usageErrorf("usage: pstream ping <addr> <message> [count]")
	}
	addr, message := args[0], args[1]

	count := 1
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return usageErrorf("invalid count %q: %v", args[2], err)
		}
		count = n
	}

	pool, err := netpool.New(func() (net.Conn, error) {
		return net.Dial("tcp", addr)
	})
	if err != nil {
		return runtimeErrorf("pool: %v", err)
	}
	defer pool.Close()

	for i := 0; i < count; i++ {
		if err := ping(pool, message); err != nil {
			return runtimeErrorf("ping %d: %v", i+1, err)
		}
	}
	return nil
}

func ping(pool *netpool.Netpool, message string) error {
	conn, err := pool.Get()
	if err != nil {
		return err
	}

	fc := frame.NewConn(conn, packstream.DefaultConfig())
	if err := fc.Send(frame.Echo{Payload: message}); err != nil {
		pool.Put(conn, err)
		return err
	}

	reply, err := fc.Receive()
	pool.Put(conn, err)
	if err != nil {
		return err
	}

	ack, ok := reply.(frame.EchoAck)
	if !ok {
		return fmt.Errorf("unexpected reply type %T", reply)
	}
	fmt.Printf("seq=%d payload=%q\n", ack.Seq, ack.Payload)
	return nil
}
