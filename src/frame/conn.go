package frame

import (
	"io"

	"github.com/seuros/go-packstream/src/bolt/packstream"
)

// Conn sends and receives framed PackStream messages over a single
// connection. It pairs a Writer/Reader (chunk framing) with this
// package's Marshal/Unmarshal helpers (struct encoding), the same
// layering a protocol built on PackStream uses in production: chunking
// is a connection-level concern, the struct encoding is not.
type Conn struct {
	w   *Writer
	r   *Reader
	cfg *packstream.Config
}

// NewConn wraps an io.ReadWriter (typically a net.Conn) for framed
// message exchange using cfg's packstream settings. A nil cfg behaves
// like packstream.DefaultConfig().
func NewConn(rw io.ReadWriter, cfg *packstream.Config) *Conn {
	if cfg == nil {
		cfg = packstream.DefaultConfig()
	}
	return &Conn{w: NewWriter(rw), r: NewReader(rw), cfg: cfg}
}

// Send marshals msg and writes it as one framed message.
func (c *Conn) Send(msg interface{}) error {
	body, err := Marshal(msg, c.cfg)
	if err != nil {
		return err
	}
	return c.w.WriteMessage(body)
}

// Receive reads one framed message and unmarshals it into its typed Go
// form (Echo or EchoAck).
func (c *Conn) Receive() (interface{}, error) {
	body, err := c.r.ReadMessage()
	if err != nil {
		return nil, err
	}
	return Unmarshal(body)
}
