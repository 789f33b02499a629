package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// MaxDimension bounds the larger side of the re-encoded image. Keeps
// upload and model input size down regardless of source resolution.
const MaxDimension = 1200

// jpegQuality 70 keeps uploads small without hurting label legibility.
const jpegQuality = 70

var ErrDecode = errors.New("image decode failed")

// Normalized is the transport-ready form of an input photo.
type Normalized struct {
	Base64   string
	MimeType string
	DataURL  string
	Width    int
	Height   int
}

// Normalize decodes an arbitrary user-supplied image, downscales it so
// the larger dimension does not exceed MaxDimension (never upscales),
// and re-encodes it as JPEG. A corrupt or unsupported input returns
// ErrDecode instead of hanging the caller.
func Normalize(r io.Reader) (*Normalized, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		// Fit preserves aspect ratio and only ever scales down.
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	b64 := base64.StdEncoding.EncodeToString(buf.Bytes())
	out := img.Bounds()
	return &Normalized{
		Base64:   b64,
		MimeType: "image/jpeg",
		DataURL:  "data:image/jpeg;base64," + b64,
		Width:    out.Dx(),
		Height:   out.Dy(),
	}, nil
}
