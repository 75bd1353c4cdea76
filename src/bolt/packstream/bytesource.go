package packstream

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/trace"
)

// ByteSource is a buffered read abstraction over a byte-oriented input
// channel. It owns a fixed-capacity reassembly buffer that absorbs
// however the underlying channel chunks its bytes: ensure(k) compacts
// unread bytes to the front of the buffer and issues reads until at
// least k bytes are available or the channel reports EOF.
//
// Reads wider than the buffer's capacity (an oversize string or bytes
// payload) never go through the buffer at all: whatever is already
// buffered is drained first, then the remainder streams straight from
// the channel into the destination.
type ByteSource struct {
	r          io.Reader
	buf        []byte
	start, end int

	logger Logger
	obs    *observabilityInstruments
	obsCfg *ObservabilityConfig
}

// NewByteSource creates a source with DefaultBufferSize capacity.
func NewByteSource(r io.Reader) *ByteSource {
	return NewByteSourceConfig(r, DefaultConfig())
}

// NewByteSourceConfig creates a source using the buffer size, logger,
// and observability settings in cfg. A nil cfg behaves like
// DefaultConfig(). Buffer sizes below 11 bytes are accepted; they force
// every multi-byte integer and every sized header through the
// cross-boundary path.
func NewByteSourceConfig(r io.Reader, cfg *Config) *ByteSource {
	size := cfg.bufferSize()
	return &ByteSource{
		r:      r,
		buf:    make([]byte, size),
		logger: cfg.logger(),
		obs:    globalObservability,
		obsCfg: cfg.observability(),
	}
}

// Reset rebinds the source to a new channel, reusing the already
// allocated reassembly buffer. Any bytes buffered from the previous
// channel are discarded; they belong to a different logical stream.
func (s *ByteSource) Reset(r io.Reader) {
	s.r = r
	s.start = 0
	s.end = 0
}

func (s *ByteSource) buffered() int { return s.end - s.start }

// ensure guarantees at least k unread bytes are sitting in the buffer,
// compacting and refilling from the channel as needed. k must not
// exceed the buffer's capacity; callers route larger reads through
// readExact instead, which bypasses the buffer.
func (s *ByteSource) ensure(k int) error {
	if k > len(s.buf) {
		return fmt.Errorf("packstream: ensure(%d) exceeds buffer capacity %d", k, len(s.buf))
	}

	refillCount := 0
	var span trace.Span
	for s.buffered() < k {
		if s.start > 0 {
			copy(s.buf, s.buf[s.start:s.end])
			s.end -= s.start
			s.start = 0
		}

		refillCount++
		if refillCount == 2 {
			// The first extra read is what makes this a genuine
			// cross-boundary refill; open the span only once.
			_, span = s.obs.startRefillSpan(context.Background(), s.obsCfg, k)
		}

		n, err := s.r.Read(s.buf[s.end:])
		if n > 0 {
			s.end += n
		}
		if err != nil {
			if s.buffered() >= k {
				break
			}
			endSpan(span)
			if err == io.EOF {
				return &UnexpectedEOFError{Context: "reading value", Err: err}
			}
			return &IOError{Op: "read", Err: err}
		}
	}

	if refillCount > 1 {
		s.logger.Debug("reassembly buffer required multiple reads", "requested", k)
		s.obs.recordBufferRefill(s.obsCfg)
		endSpan(span)
	}

	return nil
}

// HasNext reports whether at least one more marker byte is currently
// buffered or obtainable from the channel. It signals end-of-stream by
// returning false rather than surfacing an error.
func (s *ByteSource) HasNext() bool {
	if s.buffered() > 0 {
		return true
	}
	if s.start > 0 {
		s.start, s.end = 0, 0
	}
	n, _ := s.r.Read(s.buf[s.end:])
	if n > 0 {
		s.end += n
		return true
	}
	return false
}

// PeekByte returns the next byte without consuming it.
func (s *ByteSource) PeekByte() (byte, error) {
	if err := s.ensure(1); err != nil {
		return 0, err
	}
	return s.buf[s.start], nil
}

// ReadByte returns and consumes the next byte.
func (s *ByteSource) ReadByte() (byte, error) {
	if err := s.ensure(1); err != nil {
		return 0, err
	}
	b := s.buf[s.start]
	s.start++
	return b, nil
}

// readExact returns exactly n bytes, consuming them. When n fits within
// the buffer's capacity it goes through ensure/compaction as usual; when
// it doesn't (an oversize string/bytes payload, or a fixed-width integer
// larger than a caller-supplied tiny buffer), whatever is already
// buffered is drained first and the remainder is read directly from the
// channel into the result, bypassing the buffer.
func (s *ByteSource) readExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}

	if n <= len(s.buf) {
		if err := s.ensure(n); err != nil {
			return nil, err
		}
		out := make([]byte, n)
		copy(out, s.buf[s.start:s.start+n])
		s.start += n
		return out, nil
	}

	out := make([]byte, n)
	copied := copy(out, s.buf[s.start:s.end])
	s.start += copied

	if copied < n {
		if _, err := io.ReadFull(s.r, out[copied:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, &UnexpectedEOFError{Context: "streaming oversize payload", Err: err}
			}
			return nil, &IOError{Op: "read", Err: err}
		}
	}
	return out, nil
}

// readUint reads an n-byte (n in {1,2,4}) unsigned big-endian integer,
// used for sized-container and sized-string length prefixes.
func (s *ByteSource) readUint(n int) (uint32, error) {
	b, err := s.readExact(n)
	if err != nil {
		return 0, err
	}
	var v uint32
	for _, byt := range b {
		v = v<<8 | uint32(byt)
	}
	return v, nil
}
