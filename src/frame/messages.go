package frame

import (
	"bytes"
	"fmt"

	"github.com/seuros/go-packstream/src/bolt/packstream"
)

// Signature bytes identifying the demo message structs this package
// knows how to marshal and unmarshal. Real deployments of the chunked
// framing carry richer message sets; these two are enough to drive a
// round trip end to end over cmd/pstream's serve/ping commands.
const (
	SignatureEcho    byte = 0x01
	SignatureEchoAck byte = 0x02
)

// Echo is a client-to-server request: "encode this payload and send it
// back to me, along with a sequence number."
type Echo struct {
	Payload string
}

// EchoAck is the server's reply.
type EchoAck struct {
	Payload string
	Seq     int64
}

// Marshal encodes msg (an Echo or EchoAck) as a PackStream Struct using
// cfg's buffer/logging/observability settings.
func Marshal(msg interface{}, cfg *packstream.Config) ([]byte, error) {
	s, err := toStruct(msg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	p := packstream.NewPackerConfig(&buf, cfg)
	if err := p.Pack(s); err != nil {
		return nil, err
	}
	if err := p.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toStruct(msg interface{}) (packstream.Struct, error) {
	switch m := msg.(type) {
	case Echo:
		return packstream.Struct{Signature: SignatureEcho, Fields: []interface{}{m.Payload}}, nil
	case EchoAck:
		return packstream.Struct{Signature: SignatureEchoAck, Fields: []interface{}{m.Payload, m.Seq}}, nil
	default:
		return packstream.Struct{}, fmt.Errorf("frame: unknown message type %T", msg)
	}
}

// Unmarshal decodes a PackStream-encoded message body into its typed Go
// form, dispatching on the struct's signature byte the way a message
// registry keyed by signature would.
func Unmarshal(body []byte) (interface{}, error) {
	v, err := packstream.Unpack(body)
	if err != nil {
		return nil, err
	}
	s, ok := v.(packstream.Struct)
	if !ok {
		return nil, fmt.Errorf("frame: expected a struct message, got %T", v)
	}

	switch s.Signature {
	case SignatureEcho:
		if len(s.Fields) != 1 {
			return nil, fmt.Errorf("frame: Echo: expected 1 field, got %d", len(s.Fields))
		}
		payload, ok := s.Fields[0].(string)
		if !ok {
			return nil, fmt.Errorf("frame: Echo: payload field is %T, want string", s.Fields[0])
		}
		return Echo{Payload: payload}, nil
	case SignatureEchoAck:
		if len(s.Fields) != 2 {
			return nil, fmt.Errorf("frame: EchoAck: expected 2 fields, got %d", len(s.Fields))
		}
		payload, ok := s.Fields[0].(string)
		if !ok {
			return nil, fmt.Errorf("frame: EchoAck: payload field is %T, want string", s.Fields[0])
		}
		seq, ok := s.Fields[1].(int64)
		if !ok {
			return nil, fmt.Errorf("frame: EchoAck: seq field is %T, want int64", s.Fields[1])
		}
		return EchoAck{Payload: payload, Seq: seq}, nil
	default:
		return nil, fmt.Errorf("frame: unrecognized message signature 0x%02X", s.Signature)
	}
}
