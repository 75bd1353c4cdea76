package packstream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// chunkedReader hands back at most chunkSize bytes per Read call,
// regardless of how much the caller asked for, to exercise the
// reassembly buffer's handling of channel fragmentation.
type chunkedReader struct {
	data      []byte
	pos       int
	chunkSize int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.data) {
		return 0, io.EOF
	}
	n := c.chunkSize
	if n > len(p) {
		n = len(p)
	}
	if remaining := len(c.data) - c.pos; n > remaining {
		n = remaining
	}
	copy(p, c.data[c.pos:c.pos+n])
	c.pos += n
	return n, nil
}

func TestByteSourcePeekIsNonDestructive(t *testing.T) {
	src := NewByteSourceConfig(bytes.NewReader([]byte{0xC3, 0xC2}), &Config{BufferSize: 8})

	b1, err := src.PeekByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xC3), b1)

	b2, err := src.PeekByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xC3), b2, "peeking twice should return the same byte")

	consumed, err := src.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xC3), consumed)

	next, err := src.PeekByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xC2), next)
}

func TestByteSourceHasNext(t *testing.T) {
	src := NewByteSourceConfig(bytes.NewReader([]byte{0x01}), &Config{BufferSize: 8})
	require.True(t, src.HasNext())
	_, err := src.ReadByte()
	require.NoError(t, err)
	require.False(t, src.HasNext())
}

func TestByteSourceReadExactAcrossChunkBoundaries(t *testing.T) {
	payload := []byte{0xCB, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}
	for _, chunkSize := range []int{1, 2, 3, 100} {
		r := &chunkedReader{data: payload, chunkSize: chunkSize}
		src := NewByteSourceConfig(r, &Config{BufferSize: 8})

		marker, err := src.ReadByte()
		require.NoError(t, err)
		require.Equal(t, byte(0xCB), marker)

		body, err := src.readExact(8)
		require.NoError(t, err)
		require.Equal(t, payload[1:], body)
	}
}

func TestByteSourceReadExactBypassesTinyBuffer(t *testing.T) {
	// An 8-byte Int64 payload against a 1-byte and a 7-byte buffer: both
	// are smaller than the payload, so readExact must stream the
	// remainder straight from the channel rather than trying to ensure()
	// the whole thing into the reassembly buffer.
	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	for _, bufSize := range []int{1, 7} {
		r := &chunkedReader{data: payload, chunkSize: 3}
		src := NewByteSourceConfig(r, &Config{BufferSize: bufSize})

		body, err := src.readExact(8)
		require.NoError(t, err)
		require.Equal(t, payload, body)
	}
}

func TestByteSourceBackToBackReadsWithSmallBuffer(t *testing.T) {
	// Two Int64 bodies in a row against an 11-byte buffer: the first
	// readExact(8) must not consume bytes belonging to the second value.
	first := bytes.Repeat([]byte{0xAA}, 8)
	second := bytes.Repeat([]byte{0xBB}, 8)
	payload := append(append([]byte{}, first...), second...)

	r := &chunkedReader{data: payload, chunkSize: 5}
	src := NewByteSourceConfig(r, &Config{BufferSize: 11})

	got1, err := src.readExact(8)
	require.NoError(t, err)
	require.Equal(t, first, got1)

	got2, err := src.readExact(8)
	require.NoError(t, err)
	require.Equal(t, second, got2)

	require.False(t, src.HasNext())
}

func TestByteSourceUnexpectedEOF(t *testing.T) {
	src := NewByteSourceConfig(bytes.NewReader([]byte{0x01, 0x02}), &Config{BufferSize: 8})
	_, err := src.readExact(4)
	require.Error(t, err)
	kind, ok := ErrorKindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrKindUnexpectedEOF, kind)
}

func TestByteSourceReset(t *testing.T) {
	src := NewByteSourceConfig(bytes.NewReader([]byte{0x01, 0x02}), &Config{BufferSize: 8})
	_, err := src.ReadByte()
	require.NoError(t, err)

	src.Reset(bytes.NewReader([]byte{0x09, 0x0A}))
	b, err := src.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x09), b)
}
