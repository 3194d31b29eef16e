package manipulator

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/ioutil"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/exif"
)

type imageTransformer struct {
	cfg *Config
}

func newImageTransformer(cfg *Config) *imageTransformer {
	return &imageTransformer{
		cfg: cfg,
	}
}

func (it *imageTransformer) transform(source io.Reader, dst io.Writer, t *Transformation) (*Result, error) {
	if t == nil || !t.RequiresResize() {
		return nil, errors.Wrap(ErrBadTransformationRequest, "width and height are required")
	}

	img, err := it.decode(source)
	if err != nil {
		return nil, err
	}

	// exact dimensions, aspect ratio is not preserved
	resized := imaging.Resize(img, int(t.Resize.Width), int(t.Resize.Height), imaging.Lanczos)

	buf := &bytes.Buffer{}
	if err := it.encode(buf, resized, t); err != nil {
		return nil, err
	}

	n, err := io.Copy(dst, buf)
	if err != nil {
		return nil, errors.Wrapf(ErrTransformationFailed, "could not copy bytes to dst; %v", err)
	}

	return &Result{
		Width:  resized.Bounds().Dx(),
		Height: resized.Bounds().Dy(),
		Size:   int(n),
		Format: t.Format,
	}, nil
}

func (it *imageTransformer) decode(source io.Reader) (image.Image, error) {
	lr := io.LimitReader(source, it.cfg.MaxOriginalSize+1)
	raw, err := ioutil.ReadAll(lr)
	if err != nil {
		return nil, errors.Wrapf(ErrBadImage, "could not read original: %v", err)
	}

	if int64(len(raw)) > it.cfg.MaxOriginalSize {
		return nil, errors.Wrapf(ErrBadImage, "original exceeds %d bytes", it.cfg.MaxOriginalSize)
	}

	img, sourceFormat, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(ErrBadImage, err.Error())
	}

	if sourceFormat == "jpeg" {
		exifData := raw
		if len(exifData) > maxExifSize {
			exifData = exifData[:maxExifSize]
		}

		img = applyOrientation(img, computeExifOrientation(bytes.NewReader(exifData)))
	}

	return img, nil
}

func (it *imageTransformer) encode(dst io.Writer, img image.Image, t *Transformation) error {
	switch t.Format {
	case JPEG:
		q := int(t.Quality)
		if q == 0 {
			q = it.cfg.JPEGQuality
		}

		if err := jpeg.Encode(dst, img, &jpeg.Options{Quality: q}); err != nil {
			return errors.Wrapf(ErrTransformationFailed, "could not encode image to jpeg %v", err)
		}
	case PNG:
		if err := png.Encode(dst, img); err != nil {
			return errors.Wrapf(ErrTransformationFailed, "could not encode image to png %v", err)
		}
	case GIF:
		if err := gif.Encode(dst, img, nil); err != nil {
			return errors.Wrapf(ErrTransformationFailed, "could not encode image to gif %v", err)
		}
	default:
		return errors.Wrapf(ErrBadTransformationRequest, "unsupported format %v", t.Format)
	}

	return nil
}

func (it *imageTransformer) probe(source io.Reader) (*Result, error) {
	cfg, format, err := image.DecodeConfig(source)
	if err != nil {
		return nil, errors.Wrap(ErrBadImage, err.Error())
	}

	ext := Format(format)
	if format == "jpeg" {
		ext = JPEG
	}

	return &Result{Width: cfg.Width, Height: cfg.Height, Format: ext}, nil
}

// Exif Orientation Tag values
// http://sylvana.net/jpegcrop/exif_orientation.html
const (
	topLeftSide     = 1
	topRightSide    = 2
	bottomRightSide = 3
	bottomLeftSide  = 4
	leftSideTop     = 5
	rightSideTop    = 6
	rightSideBottom = 7
	leftSideBottom  = 8
)

func computeExifOrientation(r io.Reader) int {
	exf, err := exif.Decode(r)
	if err != nil {
		return topLeftSide
	}

	tag, err := exf.Get(exif.Orientation)
	if err != nil {
		return topLeftSide
	}

	orient, err := tag.Int(0)
	if err != nil {
		return topLeftSide
	}

	return orient
}

func applyOrientation(img image.Image, orient int) image.Image {
	switch orient {
	case topRightSide:
		return imaging.FlipH(img)
	case bottomRightSide:
		return imaging.Rotate180(img)
	case bottomLeftSide:
		return imaging.FlipV(img)
	case leftSideTop:
		return imaging.Transpose(img)
	case rightSideTop:
		return imaging.Rotate270(img)
	case rightSideBottom:
		return imaging.Transverse(img)
	case leftSideBottom:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
