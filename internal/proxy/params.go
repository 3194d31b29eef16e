package proxy

import (
	"net/url"
	"strconv"
	"strings"
)

type imageParams struct {
	imageID string
	width   int
	height  int
}

// parseImageParams validates the query of an image request. Absent sizes
// are zero, which resolves to the original image.
func parseImageParams(q url.Values, maxDimension int) (*imageParams, error) {
	imageID := q.Get("imageId")
	if imageID == "" {
		return nil, badRequestf("Can't proceed without Image ID")
	}

	width, err := parseDimension(q, "width", maxDimension)
	if err != nil {
		return nil, err
	}

	height, err := parseDimension(q, "height", maxDimension)
	if err != nil {
		return nil, err
	}

	return &imageParams{imageID: imageID, width: width, height: height}, nil
}

func parseDimension(q url.Values, name string, maxDimension int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || (maxDimension > 0 && v > maxDimension) {
		return 0, badRequestf(`Invalid "%s" value: %s`, name, raw)
	}

	return v, nil
}
