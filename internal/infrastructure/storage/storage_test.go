package storage

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeImage(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, nil)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImageValidateAcceptsJPEGAndPNG(t *testing.T) {
	p := NewImageProcessor()

	format, err := p.Validate(encodeImage(t, "jpeg", 10, 10))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	format, err = p.Validate(encodeImage(t, "png", 10, 10))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestImageValidateRejectsNonImage(t *testing.T) {
	p := NewImageProcessor()

	_, err := p.Validate([]byte("%PDF-1.7 definitely not an image"))
	assert.Error(t, err)
}

func TestImageValidateRejectsOversized(t *testing.T) {
	p := NewImageProcessor()
	p.MaxSize = 64

	_, err := p.Validate(encodeImage(t, "png", 100, 100))
	assert.Error(t, err)
}

func TestThumbnailFitsWithinBounds(t *testing.T) {
	p := NewImageProcessor()

	thumb, err := p.Thumbnail(encodeImage(t, "jpeg", 400, 200), 100)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.LessOrEqual(t, cfg.Width, 100)
	assert.LessOrEqual(t, cfg.Height, 100)
}

func TestThumbKeyMapping(t *testing.T) {
	thumb := ThumbKeyFor("brands/abc.png")
	assert.Equal(t, "brands/thumbs/abc.jpeg", thumb)

	base, ok := BaseKeyPrefixForThumb(thumb)
	require.True(t, ok)
	assert.Equal(t, "brands/abc.", base)

	_, ok = BaseKeyPrefixForThumb("brands/abc.png")
	assert.False(t, ok)
}

func TestKeyFromURL(t *testing.T) {
	s := &MinIOStorage{bucket: "medinfo"}

	key, err := s.KeyFromURL("http://localhost:9000/medinfo/brands/abc.jpeg")
	require.NoError(t, err)
	assert.Equal(t, "brands/abc.jpeg", key)
}

func TestKeyFromURLRejectsForeignBucket(t *testing.T) {
	s := &MinIOStorage{bucket: "medinfo"}

	_, err := s.KeyFromURL("http://localhost:9000/other-bucket/brands/abc.jpeg")
	assert.Error(t, err)
}

func TestUploadFileRejectsDisallowedExtension(t *testing.T) {
	s := &MinIOStorage{bucket: "medinfo"}

	_, err := s.UploadFile(context.Background(), []byte("x"), "malware.exe", "files")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}
