package chunker

// Defaults for the chunking policies.
const (
	DefaultMinChunkSize        = 100
	DefaultMaxChunkSize        = 2000
	DefaultMinParagraphSize    = 20
	DefaultRawMinParagraphSize = 30
	DefaultQualityThreshold    = 0.4
	DefaultRawQualityThreshold = 0.5
)

// Config holds the size bounds, thresholds and stage toggles shared by the
// chunking strategies. Zero or negative sizes and negative thresholds are
// replaced by defaults in New* constructors; a zero threshold accepts every
// chunk.
type Config struct {
	MinChunkSize        int
	MaxChunkSize        int
	MinParagraphSize    int
	RawMinParagraphSize int
	QualityThreshold    float64
	RawQualityThreshold float64
	FilterNavigation    bool
	RemoveDuplicates    bool
}

// DefaultConfig returns the documented defaults with both cleanup stages on.
func DefaultConfig() Config {
	return Config{
		MinChunkSize:        DefaultMinChunkSize,
		MaxChunkSize:        DefaultMaxChunkSize,
		MinParagraphSize:    DefaultMinParagraphSize,
		RawMinParagraphSize: DefaultRawMinParagraphSize,
		QualityThreshold:    DefaultQualityThreshold,
		RawQualityThreshold: DefaultRawQualityThreshold,
		FilterNavigation:    true,
		RemoveDuplicates:    true,
	}
}

func (c Config) withDefaults() Config {
	if c.MinChunkSize <= 0 {
		c.MinChunkSize = DefaultMinChunkSize
	}
	if c.MaxChunkSize <= 0 {
		c.MaxChunkSize = DefaultMaxChunkSize
	}
	if c.MinParagraphSize <= 0 {
		c.MinParagraphSize = DefaultMinParagraphSize
	}
	if c.RawMinParagraphSize <= 0 {
		c.RawMinParagraphSize = DefaultRawMinParagraphSize
	}
	if c.QualityThreshold < 0 {
		c.QualityThreshold = DefaultQualityThreshold
	}
	if c.RawQualityThreshold < 0 {
		c.RawQualityThreshold = DefaultRawQualityThreshold
	}
	return c
}
