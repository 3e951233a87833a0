package squish

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPNG encodes a 100x100 truecolor PNG with redundant color data, the
// kind of input indexed recompression should always win on.
func testPNG(t *testing.T) []byte {
	t.Helper()

	img := stripedImage(100, 100, []color.RGBA{
		{220, 40, 30, 255},
		{30, 180, 90, 255},
		{20, 60, 210, 255},
		{240, 220, 60, 255},
	})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testJPEG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 2), uint8(y * 2), 120, 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func TestCompressPNGScenario(t *testing.T) {
	input := testPNG(t)

	output, err := Compress(input, Options{Quality: 80, ResizePercent: 1.0})
	require.NoError(t, err)
	assert.Less(t, len(output), len(input),
		"indexed recompression must beat truecolor PNG on redundant color data")

	decoded, err := png.Decode(bytes.NewReader(output))
	require.NoError(t, err, "output must be a valid PNG")

	paletted, ok := decoded.(*image.Paletted)
	require.True(t, ok, "PNG output must be indexed color, got %T", decoded)
	assert.Equal(t, 100, paletted.Bounds().Dx())
	assert.Equal(t, 100, paletted.Bounds().Dy())
	assert.LessOrEqual(t, len(paletted.Palette), 256)
}

func TestCompressJPEG(t *testing.T) {
	input := testJPEG(t)

	output, err := Compress(input, Options{Quality: 80, ResizePercent: 1.0})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(output), len(input))

	decoded, err := jpeg.Decode(bytes.NewReader(output))
	require.NoError(t, err, "JPEG input must stay a JPEG")
	assert.Equal(t, 100, decoded.Bounds().Dx())
}

func TestCompressResizesStillImages(t *testing.T) {
	input := testPNG(t)

	output, err := Compress(input, Options{Quality: 80, ResizePercent: 0.5})
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(output))
	require.NoError(t, err)
	assert.Equal(t, 50, decoded.Bounds().Dx())
	assert.Equal(t, 50, decoded.Bounds().Dy())
}

func TestCompressQualityBoundaries(t *testing.T) {
	input := testPNG(t)

	for _, quality := range []uint8{0, 100} {
		output, err := Compress(input, Options{Quality: quality, ResizePercent: 1.0})
		require.NoError(t, err, "quality %d is a valid boundary value", quality)
		assert.LessOrEqual(t, len(output), len(input))
	}
}

func TestCompressUnsupportedFormat(t *testing.T) {
	_, err := Compress(make([]byte, 128), Options{Quality: 80, ResizePercent: 1.0})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat), "expected ErrUnsupportedFormat, got %v", err)
}

func TestCompressRejectsInvalidOptions(t *testing.T) {
	input := testPNG(t)

	for _, opts := range []Options{
		{Quality: 80, ResizePercent: 0},
		{Quality: 80, ResizePercent: -0.5},
		{Quality: 80, ResizePercent: 1.5},
		{Quality: 101, ResizePercent: 1.0},
	} {
		_, err := Compress(input, opts)
		assert.True(t, errors.Is(err, ErrInvalidOptions), "opts %+v must be rejected, got %v", opts, err)
	}
}

func TestGuard(t *testing.T) {
	original := []byte{1, 2, 3, 4}

	assert.Equal(t, []byte{9, 9}, guard(original, []byte{9, 9}))
	assert.Equal(t, original, guard(original, []byte{9, 9, 9, 9, 9}),
		"compression that grows the file must be substituted by the original")
	assert.Equal(t, []byte{9, 9, 9, 9}, guard(original, []byte{9, 9, 9, 9}),
		"equal size still returns the compressed bytes")
}

func BenchmarkCompressPNG(b *testing.B) {
	img := stripedImage(256, 256, []color.RGBA{
		{220, 40, 30, 255},
		{30, 180, 90, 255},
		{20, 60, 210, 255},
	})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		b.Fatal(err)
	}
	input := buf.Bytes()
	opts := Options{Quality: 80, ResizePercent: 1.0}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compress(input, opts); err != nil {
			b.Fatal(err)
		}
	}
}
