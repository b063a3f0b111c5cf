package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	apperrors "go-nutrition-scanner/internal/errors"
)

// Preprocessing constants. Applied unconditionally, in order: EXIF
// auto-orientation, upscale to MinLongEdge, contrast boost, sharpening.
const (
	// MinLongEdge is the minimum long-edge size in pixels handed to any
	// extraction tier. Label photos below this are upscaled for OCR.
	MinLongEdge = 1200

	// ContrastBoost is the percentage contrast adjustment applied before OCR
	ContrastBoost = 15.0

	// SharpenSigma controls the unsharp radius applied after upscaling
	SharpenSigma = 1.0
)

var supportedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

// SupportedMIME reports whether the declared content type can be decoded.
// An empty declaration is allowed; the decoder sniffs the real format.
func SupportedMIME(mime string) bool {
	if mime == "" {
		return true
	}
	return supportedMIMETypes[strings.ToLower(strings.TrimSpace(mime))]
}

// Normalize decodes raw image bytes and returns a normalized PNG suitable
// for extraction. It is a pure transform: same input, same output, no
// side effects. Decode failures surface as unsupported-image errors.
func Normalize(data []byte, mime string) ([]byte, error) {
	if !SupportedMIME(mime) {
		return nil, apperrors.NewUnsupportedImageError(
			fmt.Sprintf("unsupported content type %q", mime), nil)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.NewUnsupportedImageError("unable to decode image", err)
	}

	img = normalizeImage(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, apperrors.NewInternalError("failed to encode normalized image", err)
	}
	return buf.Bytes(), nil
}

func normalizeImage(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Upscale small label photos, preserving aspect ratio
	if long := max(w, h); long > 0 && long < MinLongEdge {
		if w >= h {
			img = imaging.Resize(img, MinLongEdge, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, MinLongEdge, imaging.Lanczos)
		}
	}

	img = imaging.AdjustContrast(img, ContrastBoost)
	img = imaging.Sharpen(img, SharpenSigma)
	return img
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
