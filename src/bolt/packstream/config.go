package packstream

// DefaultBufferSize is the default reassembly/output buffer capacity in
// bytes, used when a Config leaves BufferSize unset.
const DefaultBufferSize = 8192

// Config holds the options a Packer or Unpacker is constructed with.
type Config struct {
	// BufferSize is the capacity in bytes of the reassembly (Unpacker) or
	// output (Packer) buffer. Any positive value is legal, including
	// values below 11 bytes: tests rely on tiny buffers to force the
	// cross-boundary streaming path. A value <= 0 selects DefaultBufferSize.
	BufferSize int

	// Logger receives codec diagnostics. Defaults to a no-op logger.
	Logger Logger

	// Observability controls OpenTelemetry metrics and tracing. Defaults
	// to DefaultObservabilityConfig().
	Observability *ObservabilityConfig
}

// DefaultConfig returns a Config with the documented defaults: an 8 KiB
// buffer, a silent logger, and metrics/tracing both enabled.
func DefaultConfig() *Config {
	return &Config{
		BufferSize:    DefaultBufferSize,
		Logger:        NoOpLogger{},
		Observability: DefaultObservabilityConfig(),
	}
}

func (c *Config) bufferSize() int {
	if c == nil || c.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return c.BufferSize
}

func (c *Config) logger() Logger {
	if c == nil || c.Logger == nil {
		return NoOpLogger{}
	}
	return c.Logger
}

func (c *Config) observability() *ObservabilityConfig {
	if c == nil || c.Observability == nil {
		return DefaultObservabilityConfig()
	}
	return c.Observability
}
