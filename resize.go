package squish

import (
	"image"

	"github.com/disintegration/gift"
)

// Resize scales img by factor using nearest-neighbor sampling. Nearest is
// deliberately cheap; the result feeds straight into lossy quantization. A
// factor of 1.0 returns img itself with no copy. Target dimensions are
// floored, with a 1px minimum so a tiny factor cannot produce an empty
// raster.
func Resize(img image.Image, factor float32) image.Image {
	if factor == 1.0 {
		return img
	}

	w := int(float32(img.Bounds().Dx()) * factor)
	h := int(float32(img.Bounds().Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	gift.Resize(w, h, gift.NearestNeighborResampling).Draw(dst, img, &gift.Options{
		Parallelization: true,
	})
	return dst
}
