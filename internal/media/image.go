package media

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidImageID = errors.New("invalid image id")

// ImageID names an original file under the full images directory,
// extension included (e.g. fjord.jpg)
type ImageID string

func (id ImageID) String() string {
	return string(id)
}

func (id ImageID) None() bool {
	return id == ""
}

// Ext returns the lower-cased extension without the leading dot
func (id ImageID) Ext() string {
	s := string(id)
	i := strings.LastIndexByte(s, '.')
	if i < 0 || i == len(s)-1 {
		return ""
	}

	return strings.ToLower(s[i+1:])
}

// Name returns the id without its extension
func (id ImageID) Name() string {
	s := string(id)
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		return s[:i]
	}

	return s
}

// Validate makes sure the id names exactly one file inside the store
func (id ImageID) Validate() error {
	if id.None() {
		return errors.Wrap(ErrInvalidImageID, "image id is empty")
	}

	s := string(id)
	if s == "." || s == ".." {
		return errors.Wrapf(ErrInvalidImageID, "image id %q is reserved", s)
	}

	if strings.ContainsAny(s, "/\\\x00") {
		return errors.Wrapf(ErrInvalidImageID, "image id %q must not contain path separators", s)
	}

	return nil
}
