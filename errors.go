package squish

import "github.com/pkg/errors"

// Every failure returned by this package wraps one of these sentinels, so
// callers can classify errors with errors.Is without parsing messages.
var (
	// ErrInvalidOptions indicates an out-of-range quality or resize factor.
	ErrInvalidOptions = errors.New("squish: invalid options")

	// ErrUnsupportedFormat indicates the input is not a PNG, JPEG, WebP or
	// GIF container.
	ErrUnsupportedFormat = errors.New("squish: unsupported image format")

	// ErrDecodeFailed indicates the input claimed a known container but its
	// contents could not be decoded.
	ErrDecodeFailed = errors.New("squish: failed to decode image")

	// ErrQuantizationFailed indicates the quantization engine rejected the
	// raster or the requested quality.
	ErrQuantizationFailed = errors.New("squish: quantization failed")

	// ErrEncodeFailed indicates the target encoder rejected the assembled
	// data. Consistent palettes and index buffers should make this
	// unreachable; seeing it means a bug upstream of the encoder.
	ErrEncodeFailed = errors.New("squish: failed to encode image")
)
