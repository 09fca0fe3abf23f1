// Package images normalizes uploaded pictures before they reach the object
// store: decode (honoring EXIF orientation), bound the dimensions, and
// re-encode as JPEG. Re-encoding also guarantees the stored object really is
// an image regardless of the uploaded content type.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// ErrNotImage is returned when the payload cannot be decoded as an image.
var ErrNotImage = errors.New("file is not a supported image")

const (
	// maxEdge bounds the longest side of a stored image.
	maxEdge     = 1600
	jpegQuality = 85
)

// Normalized is a processed image ready for upload.
type Normalized struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Reader returns a fresh reader over the encoded bytes.
func (n *Normalized) Reader() io.Reader { return bytes.NewReader(n.Data) }

// Size returns the encoded length in bytes.
func (n *Normalized) Size() int64 { return int64(len(n.Data)) }

// Normalize decodes, resizes and re-encodes an uploaded image.
func Normalize(r io.Reader) (*Normalized, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrNotImage
	}
	b := img.Bounds()
	if b.Dx() > maxEdge || b.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
		b = img.Bounds()
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return &Normalized{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}
