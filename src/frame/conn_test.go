package frame

import (
	"net"
	"testing"

	"github.com/seuros/go-packstream/src/bolt/packstream"
)

func TestConnSendReceiveOverPipe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		serverConn := NewConn(server, packstream.DefaultConfig())
		msg, err := serverConn.Receive()
		if err != nil {
			done <- err
			return
		}
		echo, ok := msg.(Echo)
		if !ok {
			done <- err
			return
		}
		done <- serverConn.Send(EchoAck{Payload: echo.Payload, Seq: 1})
	}()

	clientConn := NewConn(client, packstream.DefaultConfig())
	if err := clientConn.Send(Echo{Payload: "ping"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	reply, err := clientConn.Receive()
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	ack, ok := reply.(EchoAck)
	if !ok {
		t.Fatalf("reply type = %T, want EchoAck", reply)
	}
	if ack.Payload != "ping" || ack.Seq != 1 {
		t.Errorf("got %+v, want {ping 1}", ack)
	}

	if err := <-done; err != nil {
		t.Fatalf("server goroutine: %v", err)
	}
}
