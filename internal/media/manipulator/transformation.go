package manipulator

import (
	"github.com/denismitr/stockresizer/internal/media"
	"github.com/pkg/errors"
)

var ErrBadTransformationRequest = errors.New("manipulator bad transformation request")

type Format = media.Extension

const (
	JPEG = media.JPEG
	PNG  = media.PNG
	GIF  = media.GIF
)

type Pixels uint16
type Percent uint16

type Resize struct {
	Width  Pixels
	Height Pixels
}

func (r Resize) None() bool {
	return r.Width == 0 || r.Height == 0
}

type Transformation struct {
	Resize  Resize
	Format  Format
	Quality Percent
}

func NewTransformation(format Format, width, height, maxDimension int) (*Transformation, error) {
	if maxDimension <= 0 || maxDimension > 0xFFFF {
		maxDimension = 0xFFFF
	}

	if width < 1 || width > maxDimension {
		return nil, errors.Wrapf(ErrBadTransformationRequest, "width %d is out of range 1..%d", width, maxDimension)
	}

	if height < 1 || height > maxDimension {
		return nil, errors.Wrapf(ErrBadTransformationRequest, "height %d is out of range 1..%d", height, maxDimension)
	}

	switch format {
	case JPEG, PNG, GIF:
	default:
		return nil, errors.Wrapf(ErrBadTransformationRequest, "output format %s is unsupported", format)
	}

	return &Transformation{
		Resize: Resize{Width: Pixels(width), Height: Pixels(height)},
		Format: format,
	}, nil
}

func (t *Transformation) RequiresResize() bool {
	return !t.Resize.None()
}
