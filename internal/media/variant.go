package media

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	FullDir      = "full"
	ProcessedDir = "processed"
)

var ErrInvalidKey = errors.New("invalid variant key")

// Variant is a request scoped (imageID, width, height) triple.
// A zero width or height means the original.
type Variant struct {
	ImageID ImageID
	Width   int
	Height  int
}

// NewVariant normalizes the requested size: a resize happens only
// when both dimensions are positive, otherwise it falls back to the original
func NewVariant(id ImageID, width, height int) Variant {
	if width <= 0 || height <= 0 {
		return Variant{ImageID: id}
	}

	return Variant{ImageID: id, Width: width, Height: height}
}

func (v Variant) IsOriginal() bool {
	return v.Width <= 0 || v.Height <= 0
}

func (v Variant) String() string {
	if v.IsOriginal() {
		return v.ImageID.String() + "@original"
	}

	return fmt.Sprintf("%s@%dx%d", v.ImageID, v.Width, v.Height)
}

// Size formats the dimensions the way they appear in the processed directory name
func (v Variant) Size() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// SizeDir is the directory holding every image derived at this size
func (v Variant) SizeDir() string {
	return ProcessedDir + "/" + v.Size()
}

// Key is the canonical storage key of the variant, it is also its cache identity
func (v Variant) Key() string {
	if v.IsOriginal() {
		return OriginalKey(v.ImageID)
	}

	return v.SizeDir() + "/" + v.ImageID.String()
}

// Original returns the variant this one is derived from
func (v Variant) Original() Variant {
	return Variant{ImageID: v.ImageID}
}

func OriginalKey(id ImageID) string {
	return FullDir + "/" + id.String()
}

// ParseKey is the inverse of Variant.Key
func ParseKey(key string) (Variant, error) {
	segments := strings.Split(key, "/")

	switch {
	case len(segments) == 2 && segments[0] == FullDir:
		id := ImageID(segments[1])
		if err := id.Validate(); err != nil {
			return Variant{}, errors.Wrapf(ErrInvalidKey, "key %s: %v", key, err)
		}

		return Variant{ImageID: id}, nil
	case len(segments) == 3 && segments[0] == ProcessedDir:
		width, height, err := ParseSize(segments[1])
		if err != nil {
			return Variant{}, errors.Wrapf(ErrInvalidKey, "key %s: %v", key, err)
		}

		id := ImageID(segments[2])
		if err := id.Validate(); err != nil {
			return Variant{}, errors.Wrapf(ErrInvalidKey, "key %s: %v", key, err)
		}

		return Variant{ImageID: id, Width: width, Height: height}, nil
	default:
		return Variant{}, errors.Wrapf(ErrInvalidKey, "key %s does not match the store layout", key)
	}
}

// ParseSize parses a WxH size segment, both parts must be positive
// integers without leading zeros
func ParseSize(s string) (int, int, error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("size %q must look like WxH", s)
	}

	width, err := parseDimension(parts[0])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "size %q has invalid width", s)
	}

	height, err := parseDimension(parts[1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "size %q has invalid height", s)
	}

	return width, height, nil
}

func parseDimension(s string) (int, error) {
	if s == "" || s[0] == '0' {
		return 0, errors.Errorf("dimension %q must be a positive integer", s)
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.Errorf("dimension %q must be a positive integer", s)
	}

	return n, nil
}
