package squish

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/pkg/errors"
)

// jpegQualityScale damps the requested quality before the JPEG encode. The
// same nominal value produces a visibly larger file on the JPEG quality
// scale than on the quantizer's, so both paths land at a comparable
// perceptual level.
const jpegQualityScale = 0.75

// EncodeJPEG re-encodes img as a baseline JPEG at the scaled quality. JPEG
// carries no alpha channel; any alpha in img is discarded by the YCbCr
// conversion.
func EncodeJPEG(img image.Image, quality uint8) ([]byte, error) {
	q := int(float64(quality) * jpegQualityScale)
	if q < 1 {
		q = 1
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, errors.Wrapf(ErrEncodeFailed, "squish: EncodeJPEG: %v", err)
	}
	return buf.Bytes(), nil
}
