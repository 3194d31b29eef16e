package media

import (
	"fmt"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
)

var ErrInvalidExtension = errors.New("invalid extension")

type Extension string

const (
	JPEG Extension = "jpg"
	PNG  Extension = "png"
	GIF  Extension = "gif"
	TIFF Extension = "tiff"
	WEBP Extension = "webp"
)

var extensions = map[string]Extension{
	"png":  PNG,
	"jpg":  JPEG,
	"jpeg": JPEG,
	"gif":  GIF,
	"tif":  TIFF,
	"tiff": TIFF,
	"webp": WEBP,
}

var mimes = map[Extension]string{
	PNG:  "image/png",
	JPEG: "image/jpeg",
	GIF:  "image/gif",
	TIFF: "image/tiff",
	WEBP: "image/webp",
}

func GuessMimeFromExtension(ext string) (string, error) {
	e, err := NormalizeExtension(ext)
	if err != nil {
		return "", errors.Wrapf(err, "mime type unsupported for %s", ext)
	}

	return mimes[e], nil
}

func NormalizeExtension(ext string) (Extension, error) {
	if e, ok := extensions[ext]; ok {
		return e, nil
	}

	return "", errors.Wrapf(ErrInvalidExtension, "extension unsupported: %s", ext)
}

// OutputFormat is the fixed encoding of derived variants. PNG and GIF
// originals keep their format, everything else is written as JPEG.
func (id ImageID) OutputFormat() Extension {
	switch e, _ := NormalizeExtension(id.Ext()); e {
	case PNG:
		return PNG
	case GIF:
		return GIF
	default:
		return JPEG
	}
}

// Mime is the content type a variant is served with
func (v Variant) Mime() string {
	if v.IsOriginal() {
		if m, err := GuessMimeFromExtension(v.ImageID.Ext()); err == nil {
			return m
		}

		return "application/octet-stream"
	}

	return mimes[v.ImageID.OutputFormat()]
}

// DownloadFilename builds a URL friendly file name for Content-Disposition
func DownloadFilename(v Variant) string {
	name := slug.Make(v.ImageID.Name())
	if name == "" {
		name = "image"
	}

	if !v.IsOriginal() {
		name = fmt.Sprintf("%s-%s", name, v.Size())
	}

	if ext := v.ImageID.Ext(); ext != "" {
		return name + "." + ext
	}

	return name
}
