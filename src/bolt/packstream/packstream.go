// Package packstream implements the PackStream binary serialization
// format: a compact, self-describing wire encoding for null, boolean,
// integer, float, bytes, string, list, map, and struct values, plus a
// streaming Packer/Unpacker pair that can operate directly over a
// network connection without buffering whole messages in memory.
package packstream

import "bytes"

// Pack encodes v to a freshly allocated byte slice using the default
// buffer size. It is a convenience wrapper over Packer for callers that
// already hold the whole value in memory.
func Pack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	p := NewPacker(&buf)
	if err := p.Pack(v); err != nil {
		return nil, err
	}
	if err := p.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unpack decodes a single value from data. It is a convenience wrapper
// over Unpacker for callers that already hold the whole encoded value in
// memory; trailing bytes after the first value are ignored.
func Unpack(data []byte) (interface{}, error) {
	u := NewUnpacker(bytes.NewReader(data))
	return u.Unpack()
}
