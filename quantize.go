package squish

import (
	"image"
	"image/color"

	"github.com/1lann/imagequant"
	"github.com/pkg/errors"
)

// maxColors is the palette capacity of an 8-bit indexed image.
const maxColors = 256

// Quantize reduces img to a palette of at most 256 RGBA colors and one
// palette index per pixel. The quality value (0-100) is an upper bound on
// acceptable quantization error, not a fixed operating point: the engine is
// configured with the range [0, quality] and may use fewer colors when they
// suffice.
//
// The returned index buffer is row-major with exactly width*height entries,
// and every index is below len(palette).
func Quantize(img image.Image, quality uint8) (color.Palette, []uint8, error) {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	if width <= 0 || height <= 0 {
		return nil, nil, errors.Wrap(ErrQuantizationFailed, "squish: Quantize: empty raster")
	}

	attr, err := imagequant.NewAttributes()
	if err != nil {
		return nil, nil, errors.Wrapf(ErrQuantizationFailed, "squish: Quantize: attributes: %v", err)
	}
	defer attr.Release()

	if err := attr.SetMaxColors(maxColors); err != nil {
		return nil, nil, errors.Wrapf(ErrQuantizationFailed, "squish: Quantize: max colors: %v", err)
	}
	if err := attr.SetQuality(0, int(quality)); err != nil {
		return nil, nil, errors.Wrapf(ErrQuantizationFailed, "squish: Quantize: quality %d: %v", quality, err)
	}

	quant, err := imagequant.NewImage(attr, imagequant.GoImageToRgba32(img), width, height, 0)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrQuantizationFailed, "squish: Quantize: NewImage: %v", err)
	}
	defer quant.Release()

	res, err := quant.Quantize(attr)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrQuantizationFailed, "squish: Quantize: %v", err)
	}
	defer res.Release()

	indexes, err := res.WriteRemappedImage()
	if err != nil {
		return nil, nil, errors.Wrapf(ErrQuantizationFailed, "squish: Quantize: remap: %v", err)
	}

	return res.GetPalette(), indexes, nil
}

// Reconstruct expands a palette and row-major index buffer back into a dense
// RGBA raster. It is used where the destination container cannot carry an
// indexed color model directly. An out-of-range index means the buffer and
// palette are out of sync; that is reported as an error, never clamped.
func Reconstruct(width, height int, palette color.Palette, indexes []uint8) (*image.RGBA, error) {
	if len(indexes) != width*height {
		return nil, errors.Wrapf(ErrEncodeFailed,
			"squish: Reconstruct: have %d indexes, want %d", len(indexes), width*height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, index := range indexes {
		if int(index) >= len(palette) {
			return nil, errors.Wrapf(ErrEncodeFailed,
				"squish: Reconstruct: index %d out of palette bounds (%d >= %d)",
				i, index, len(palette))
		}
		entry := rgbaEntry(palette[index])
		img.Pix[i*4] = entry.R
		img.Pix[i*4+1] = entry.G
		img.Pix[i*4+2] = entry.B
		img.Pix[i*4+3] = entry.A
	}
	return img, nil
}

func rgbaEntry(c color.Color) color.RGBA {
	if rgba, ok := c.(color.RGBA); ok {
		return rgba
	}
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}
