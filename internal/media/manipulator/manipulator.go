package manipulator

import (
	"io"

	"github.com/pkg/errors"
)

var ErrTransformationFailed = errors.New("manipulator transformation failed")
var ErrBadImage = errors.New("manipulator bad image provided")

// maximum distance into image to look for EXIF tags
const maxExifSize = 1 << 20

const (
	DefaultQuality         = 90
	DefaultMaxDimension    = 10000
	DefaultMaxOriginalSize = 50 << 20
)

type Config struct {
	// JPEGQuality used for every derived JPEG variant
	JPEGQuality int
	// MaxDimension caps both requested width and height
	MaxDimension int
	// MaxOriginalSize caps how many bytes of an original are read for decoding
	MaxOriginalSize int64
}

func (c *Config) withDefaults() Config {
	cfg := Config{}
	if c != nil {
		cfg = *c
	}

	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = DefaultQuality
	}

	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = DefaultMaxDimension
	}

	if cfg.MaxOriginalSize <= 0 {
		cfg.MaxOriginalSize = DefaultMaxOriginalSize
	}

	return cfg
}

// Manipulator is safe for concurrent use, it carries no per request state
type Manipulator struct {
	cfg              Config
	imageTransformer *imageTransformer
}

func New(cfg *Config) *Manipulator {
	c := cfg.withDefaults()

	return &Manipulator{
		cfg:              c,
		imageTransformer: newImageTransformer(&c),
	}
}

func (m *Manipulator) MaxDimension() int {
	return m.cfg.MaxDimension
}

// CreateTransformation validates the requested size against the configured limits
func (m *Manipulator) CreateTransformation(width, height int, format Format) (*Transformation, error) {
	return NewTransformation(format, width, height, m.cfg.MaxDimension)
}

// Transform decodes the source, resizes it to exactly the requested
// dimensions and writes the encoded result to dst
func (m *Manipulator) Transform(source io.Reader, dst io.Writer, t *Transformation) (*Result, error) {
	return m.imageTransformer.transform(source, dst, t)
}

// Probe reads only the image header
func (m *Manipulator) Probe(source io.Reader) (*Result, error) {
	return m.imageTransformer.probe(source)
}

type Result struct {
	Width  int
	Height int
	Size   int
	Format Format
}
