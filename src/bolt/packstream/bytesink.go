package packstream

import "io"

// ByteSink is a buffered write abstraction over a byte-oriented output
// channel. Writes accumulate in a fixed-capacity buffer; when a write
// would overflow it, the sink flushes first and then writes. A write
// larger than the buffer's capacity is split: whatever is already
// buffered drains to the channel, then the oversize payload goes
// straight through, bypassing the buffer entirely.
//
// ByteSink never flushes on its own initiative beyond what's needed to
// make room for an incoming write; flush points are the caller's choice.
type ByteSink struct {
	w      io.Writer
	buf    []byte
	n      int
	logger Logger
	obs    *observabilityInstruments
	obsCfg *ObservabilityConfig
}

var globalObservability = initObservability()

// NewByteSink creates a sink with DefaultBufferSize capacity.
func NewByteSink(w io.Writer) *ByteSink {
	return NewByteSinkConfig(w, DefaultConfig())
}

// NewByteSinkConfig creates a sink using the buffer size, logger, and
// observability settings in cfg. A nil cfg behaves like DefaultConfig().
func NewByteSinkConfig(w io.Writer, cfg *Config) *ByteSink {
	size := cfg.bufferSize()
	return &ByteSink{
		w:      w,
		buf:    make([]byte, size),
		logger: cfg.logger(),
		obs:    globalObservability,
		obsCfg: cfg.observability(),
	}
}

// Write appends p to the sink's buffer, flushing first if it wouldn't
// otherwise fit, and writing directly to the underlying channel if p
// alone is larger than the buffer's capacity. It satisfies io.Writer.
func (s *ByteSink) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if s.n+len(p) <= len(s.buf) {
		copy(s.buf[s.n:], p)
		s.n += len(p)
		return len(p), nil
	}

	if err := s.Flush(); err != nil {
		return 0, err
	}

	if len(p) > len(s.buf) {
		s.logger.Debug("writing oversize payload directly", "size", len(p), "capacity", len(s.buf))
		if _, err := s.w.Write(p); err != nil {
			return 0, &IOError{Op: "write", Err: err}
		}
		return len(p), nil
	}

	copy(s.buf, p)
	s.n = len(p)
	return len(p), nil
}

// WriteByte appends a single byte, matching the same overflow behavior
// as Write.
func (s *ByteSink) WriteByte(b byte) error {
	_, err := s.Write([]byte{b})
	return err
}

// Flush drains any buffered bytes to the underlying channel.
func (s *ByteSink) Flush() error {
	if s.n == 0 {
		return nil
	}
	if _, err := s.w.Write(s.buf[:s.n]); err != nil {
		return &IOError{Op: "flush", Err: err}
	}
	s.n = 0
	return nil
}
