package frame

import (
	"testing"

	"github.com/seuros/go-packstream/src/bolt/packstream"
)

func TestMarshalUnmarshalEcho(t *testing.T) {
	body, err := Marshal(Echo{Payload: "hello"}, packstream.DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	decoded, err := Unmarshal(body)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	echo, ok := decoded.(Echo)
	if !ok {
		t.Fatalf("decoded type = %T, want Echo", decoded)
	}
	if echo.Payload != "hello" {
		t.Errorf("Payload = %q, want %q", echo.Payload, "hello")
	}
}

func TestMarshalUnmarshalEchoAck(t *testing.T) {
	body, err := Marshal(EchoAck{Payload: "hello", Seq: 7}, packstream.DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	decoded, err := Unmarshal(body)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	ack, ok := decoded.(EchoAck)
	if !ok {
		t.Fatalf("decoded type = %T, want EchoAck", decoded)
	}
	if ack.Payload != "hello" || ack.Seq != 7 {
		t.Errorf("got %+v, want {hello 7}", ack)
	}
}

func TestMarshalUnknownMessageType(t *testing.T) {
	_, err := Marshal(42, packstream.DefaultConfig())
	if err == nil {
		t.Fatal("Marshal(42): expected error, got nil")
	}
}

func TestUnmarshalNonStructBody(t *testing.T) {
	body, err := packstream.Pack("not a struct")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	_, err = Unmarshal(body)
	if err == nil {
		t.Fatal("Unmarshal: expected error for non-struct body, got nil")
	}
}
