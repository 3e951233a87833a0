package squish

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// EncodedFrame is one fully processed animation frame: the quantized raster
// reconstructed to dense RGBA together with the palette it was quantized
// against. Frames never share a palette; each one pays its own quantization
// cost, which is what makes them independent and safe to process
// concurrently.
type EncodedFrame struct {
	RGBA    *image.RGBA
	Palette color.Palette
	Delay   int // hundredths of a second, carried from the source unchanged
}

// EncodeAnimation re-encodes an animated GIF with every frame independently
// resized and quantized. Frames are processed on a worker pool and written
// back into their original slots, so output order always matches source
// order no matter which frame finishes first. A single frame failure aborts
// the whole animation.
//
// The output loops forever regardless of the source's loop count.
func EncodeAnimation(data []byte, opts Options) ([]byte, error) {
	src, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(ErrDecodeFailed, "squish: EncodeAnimation: %v", err)
	}
	if len(src.Image) == 0 {
		return nil, errors.Wrap(ErrDecodeFailed, "squish: EncodeAnimation: no frames")
	}

	frames := coalesceFrames(src)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	encoded := make([]*EncodedFrame, len(frames))
	var group errgroup.Group
	group.SetLimit(workers)
	for i := range frames {
		i := i
		group.Go(func() error {
			delay := 0
			if i < len(src.Delay) {
				delay = src.Delay[i]
			}
			frame, err := encodeFrame(frames[i], delay, opts)
			if err != nil {
				return errors.Wrapf(err, "squish: EncodeAnimation: frame %d", i)
			}
			encoded[i] = frame
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := &gif.GIF{LoopCount: 0} // 0 loops forever
	for _, frame := range encoded {
		out.Image = append(out.Image, palettedFrame(frame))
		out.Delay = append(out.Delay, frame.Delay)
		out.Disposal = append(out.Disposal, gif.DisposalNone)
	}
	out.Config = image.Config{
		Width:  out.Image[0].Bounds().Dx(),
		Height: out.Image[0].Bounds().Dy(),
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, errors.Wrapf(ErrEncodeFailed, "squish: EncodeAnimation: %v", err)
	}
	return buf.Bytes(), nil
}

// encodeFrame runs the still-image pipeline on a single coalesced frame.
func encodeFrame(src *image.RGBA, delay int, opts Options) (*EncodedFrame, error) {
	resized := Resize(src, opts.ResizePercent)
	palette, indexes, err := Quantize(resized, opts.Quality)
	if err != nil {
		return nil, err
	}

	rgba, err := Reconstruct(resized.Bounds().Dx(), resized.Bounds().Dy(), palette, indexes)
	if err != nil {
		return nil, err
	}

	return &EncodedFrame{RGBA: rgba, Palette: palette, Delay: delay}, nil
}

// coalesceFrames flattens a decoded GIF into full-canvas RGBA frames. GIF
// frames may cover only a sub-rectangle of the canvas and rely on earlier
// frames' pixels plus a disposal mode; quantizing a frame in isolation needs
// the complete picture the viewer would see.
func coalesceFrames(src *gif.GIF) []*image.RGBA {
	bounds := image.Rect(0, 0, src.Config.Width, src.Config.Height)
	if bounds.Empty() {
		bounds = src.Image[0].Bounds()
	}

	canvas := image.NewRGBA(bounds)
	frames := make([]*image.RGBA, len(src.Image))
	for i, frame := range src.Image {
		var restore *image.RGBA
		if i < len(src.Disposal) && src.Disposal[i] == gif.DisposalPrevious {
			restore = cloneRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames[i] = cloneRGBA(canvas)

		if i < len(src.Disposal) {
			switch src.Disposal[i] {
			case gif.DisposalBackground:
				draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				canvas = restore
			}
		}
	}
	return frames
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// palettedFrame converts a reconstructed frame back to the indexed model the
// GIF encoder expects. Every pixel is an exact palette entry, so the reverse
// lookup is a map hit, never a nearest-color search.
func palettedFrame(frame *EncodedFrame) *image.Paletted {
	paletteToIndex := make(map[color.RGBA]uint8, len(frame.Palette))
	for i, entry := range frame.Palette {
		c := rgbaEntry(entry)
		if _, ok := paletteToIndex[c]; !ok {
			paletteToIndex[c] = uint8(i)
		}
	}

	out := image.NewPaletted(frame.RGBA.Bounds(), frame.Palette)
	pix := frame.RGBA.Pix
	for i := range out.Pix {
		out.Pix[i] = paletteToIndex[color.RGBA{pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3]}]
	}
	return out
}
