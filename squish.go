// Package squish recompresses PNG, JPEG, WebP and GIF images by quantizing
// their colors, optionally downscaling them first. PNG input becomes an
// indexed-color PNG with a split RGB/alpha palette, JPEG and WebP input
// become a quality-scaled JPEG, and animated GIF input is re-encoded with
// every frame quantized independently. The output is never larger than the
// input: when recompression does not help, the original bytes are returned
// verbatim.
package squish

import (
	"bytes"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Options configures a single Compress call.
type Options struct {
	// Quality ranges from 0 to 100; lower means more aggressive
	// quantization and a smaller, lossier output. Both boundaries are
	// valid.
	Quality uint8

	// ResizePercent scales the image dimensions before quantization. It
	// must be in (0, 1]; 1.0 means no resize.
	ResizePercent float32

	// Workers caps concurrent frame quantization for animated input.
	// Zero means one worker per CPU. Still images ignore it.
	Workers int

	// Logger receives per-call compression stats. Nil disables logging.
	Logger *slog.Logger
}

func (o *Options) validate() error {
	if o.Quality > 100 {
		return errors.Wrapf(ErrInvalidOptions, "squish: quality must be 0-100, got %d", o.Quality)
	}
	if o.ResizePercent <= 0 || o.ResizePercent > 1 {
		return errors.Wrapf(ErrInvalidOptions,
			"squish: resize percent must be in (0, 1], got %v", o.ResizePercent)
	}
	return nil
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Compress recompresses the image in data according to opts. The container
// is sniffed from the magic bytes; PNG becomes indexed PNG, JPEG and WebP
// become JPEG, and GIF becomes an infinitely looping GIF. Inputs in any
// other format fail with ErrUnsupportedFormat.
//
// The returned slice is never longer than data: if recompression grows the
// file, data is returned unchanged.
func Compress(data []byte, opts Options) ([]byte, error) {
	start := time.Now()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	var out []byte
	switch format {
	case FormatGIF:
		// Animations resize per frame, not up front.
		out, err = EncodeAnimation(data, opts)
	default:
		var img image.Image
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(ErrDecodeFailed, "squish: Compress: %v", err)
		}
		img = Resize(img, opts.ResizePercent)

		switch format {
		case FormatPNG:
			out, err = compressPNG(img, opts.Quality)
		case FormatJPEG, FormatWebP:
			out, err = EncodeJPEG(img, opts.Quality)
		}
	}
	if err != nil {
		return nil, err
	}

	out = guard(data, out)

	opts.logger().Info("squish: compressed image",
		slog.String("format", format.String()),
		slog.String("output_format", format.Output().String()),
		slog.Int("input_bytes", len(data)),
		slog.Int("output_bytes", len(out)),
		slog.Duration("elapsed", time.Since(start)))

	return out, nil
}

// compressPNG quantizes a still image and serializes it as indexed PNG.
func compressPNG(img image.Image, quality uint8) ([]byte, error) {
	palette, indexes, err := Quantize(img, quality)
	if err != nil {
		return nil, err
	}
	return EncodeIndexedPNG(img.Bounds().Dx(), img.Bounds().Dy(), palette, indexes)
}

// guard returns the original bytes when compression did not reduce size.
// Applied once per call, after the format branch, never per frame.
func guard(original, compressed []byte) []byte {
	if len(compressed) > len(original) {
		return original
	}
	return compressed
}
