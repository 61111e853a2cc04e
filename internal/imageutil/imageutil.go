// Package imageutil prepares source images for upload and turns base64 image results into
// JPEG files.
package imageutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	_ "image/png" // decoding only
	"os"
	"strings"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp" // decoding only
)

const (
	// MaxUploadSide is the longest side an uploaded image keeps.
	MaxUploadSide = 2048
	// UploadQuality is the JPEG quality of uploaded images.
	UploadQuality = 85
	// SaveQuality is the JPEG quality of saved results.
	SaveQuality = 95
)

// ReadFile loads an image file.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read image %s", path)
	}
	return data, nil
}

// EncodeForUpload decodes a jpeg, png or webp image, shrinks it to fit MaxUploadSide and
// returns it as base64 JPEG.
func EncodeForUpload(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "decode source image")
	}

	b := img.Bounds()
	if b.Dx() > MaxUploadSide || b.Dy() > MaxUploadSide {
		img = resize.Thumbnail(MaxUploadSide, MaxUploadSide, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: UploadQuality}); err != nil {
		return "", errors.Wrap(err, "encode source image")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeBase64 turns a base64 image (optionally a data URI) into JPEG bytes.
func DecodeBase64(b64 string) ([]byte, error) {
	if strings.HasPrefix(b64, "data:") {
		if i := strings.IndexByte(b64, ','); i >= 0 {
			b64 = b64[i+1:]
		}
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, errors.Wrap(err, "decode base64 image")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: SaveQuality}); err != nil {
		return nil, errors.Wrap(err, "encode image")
	}
	return buf.Bytes(), nil
}
