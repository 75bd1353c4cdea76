// Package frame implements the chunked message framing a PackStream
// struct travels in over a persistent connection: each message is split
// into one or more chunks, every chunk prefixed by its own 2-byte
// big-endian length, the whole message terminated by a zero-length
// chunk. This lets a receiver detect message boundaries without relying
// on the PackStream encoding itself to be self-terminating at the
// message level — only at the value level.
package frame

import (
	"encoding/binary"
	"io"
)

// MaxChunkSize is the largest payload a single chunk can carry; its
// length prefix is a uint16, so 0xFFFF is the hard ceiling.
const MaxChunkSize = 0xFFFF

// endMarker is the zero-length chunk that terminates a message.
var endMarker = [2]byte{0x00, 0x00}

// Writer splits an already-encoded message body into length-prefixed
// chunks and writes them to the underlying channel, finishing with the
// end marker.
type Writer struct {
	w         io.Writer
	chunkSize int
}

// NewWriter creates a Writer using MaxChunkSize chunks.
func NewWriter(w io.Writer) *Writer {
	return NewWriterSize(w, MaxChunkSize)
}

// NewWriterSize creates a Writer that splits messages into chunks no
// larger than chunkSize, clamped to MaxChunkSize.
func NewWriterSize(w io.Writer, chunkSize int) *Writer {
	if chunkSize <= 0 || chunkSize > MaxChunkSize {
		chunkSize = MaxChunkSize
	}
	return &Writer{w: w, chunkSize: chunkSize}
}

// WriteMessage frames body as one or more chunks followed by the end
// marker. An empty body is framed as the end marker alone: one
// zero-length chunk, with no data chunk before it.
func (fw *Writer) WriteMessage(body []byte) error {
	header := make([]byte, 2)
	for len(body) > fw.chunkSize {
		chunk := body[:fw.chunkSize]
		binary.BigEndian.PutUint16(header, uint16(len(chunk)))
		if err := fw.writeAll(header, chunk); err != nil {
			return err
		}
		body = body[fw.chunkSize:]
	}

	binary.BigEndian.PutUint16(header, uint16(len(body)))
	if err := fw.writeAll(header, body); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := fw.w.Write(endMarker[:])
	return err
}

func (fw *Writer) writeAll(header, body []byte) error {
	if _, err := fw.w.Write(header); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	_, err := fw.w.Write(body)
	return err
}

// Reader reassembles a chunked message from the underlying channel,
// concatenating chunks until it reads the end marker.
type Reader struct {
	r io.Reader
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadMessage reads and reassembles one complete message. It blocks
// until the end marker arrives or the channel fails.
func (fr *Reader) ReadMessage() ([]byte, error) {
	var body []byte
	header := make([]byte, 2)

	for {
		if _, err := io.ReadFull(fr.r, header); err != nil {
			return nil, err
		}
		size := binary.BigEndian.Uint16(header)
		if size == 0 {
			if body == nil {
				// A message body is empty when the end marker is the first
				// chunk read; return an empty, non-nil slice so callers can
				// distinguish "empty message" from "read error".
				body = []byte{}
			}
			return body, nil
		}
		chunk := make([]byte, size)
		if _, err := io.ReadFull(fr.r, chunk); err != nil {
			return nil, err
		}
		body = append(body, chunk...)
	}
}
