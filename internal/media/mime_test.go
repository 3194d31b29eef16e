package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageID_OutputFormat(t *testing.T) {
	tt := []struct {
		id       ImageID
		expected Extension
	}{
		{id: "fjord.jpg", expected: JPEG},
		{id: "fjord.jpeg", expected: JPEG},
		{id: "fjord.png", expected: PNG},
		{id: "fjord.PNG", expected: PNG},
		{id: "fjord.gif", expected: GIF},
		{id: "fjord.tiff", expected: JPEG},
		{id: "fjord", expected: JPEG},
	}

	for _, tc := range tt {
		t.Run(string(tc.id), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.id.OutputFormat())
		})
	}
}

func TestVariant_Mime(t *testing.T) {
	assert.Equal(t, "image/jpeg", NewVariant("fjord.jpg", 0, 0).Mime())
	assert.Equal(t, "image/webp", NewVariant("fjord.webp", 0, 0).Mime())
	assert.Equal(t, "image/jpeg", NewVariant("fjord.webp", 10, 10).Mime())
	assert.Equal(t, "image/png", NewVariant("fjord.png", 10, 10).Mime())
	assert.Equal(t, "application/octet-stream", NewVariant("fjord", 0, 0).Mime())
}

func TestDownloadFilename(t *testing.T) {
	tt := []struct {
		v        Variant
		expected string
	}{
		{v: NewVariant("fjord.jpg", 100, 90), expected: "fjord-100x90.jpg"},
		{v: NewVariant("fjord.jpg", 0, 0), expected: "fjord.jpg"},
		{v: NewVariant("Palm Tunnel.png", 20, 10), expected: "palm-tunnel-20x10.png"},
		{v: NewVariant("noext", 0, 0), expected: "noext"},
	}

	for _, tc := range tt {
		t.Run(tc.v.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, DownloadFilename(tc.v))
		})
	}
}

func TestGuessMimeFromExtension(t *testing.T) {
	m, err := GuessMimeFromExtension("jpeg")
	assert.NoError(t, err)
	assert.Equal(t, "image/jpeg", m)

	_, err = GuessMimeFromExtension("svg")
	assert.Error(t, err)
}
