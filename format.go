package squish

import (
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// Format is a recognized input container.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatWebP
	FormatGIF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatWebP:
		return "webp"
	case FormatGIF:
		return "gif"
	}
	return "unknown"
}

// Output returns the container the compressed result is written in. WebP is
// never preserved; it is re-encoded as JPEG.
func (f Format) Output() Format {
	if f == FormatWebP {
		return FormatJPEG
	}
	return f
}

// MIME returns the media type of the format.
func (f Format) MIME() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	case FormatGIF:
		return "image/gif"
	}
	return "application/octet-stream"
}

// DetectFormat sniffs the container from the magic bytes alone. It never
// trusts file extensions or caller-supplied hints, and it never falls back:
// anything other than the four known containers is ErrUnsupportedFormat.
func DetectFormat(data []byte) (Format, error) {
	mime := mimetype.Detect(data)
	switch {
	case mime.Is("image/png"):
		return FormatPNG, nil
	case mime.Is("image/jpeg"):
		return FormatJPEG, nil
	case mime.Is("image/webp"):
		return FormatWebP, nil
	case mime.Is("image/gif"):
		return FormatGIF, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedFormat, "squish: DetectFormat: detected %q", mime.String())
}
