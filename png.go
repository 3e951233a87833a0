package squish

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image/color"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// EncodeIndexedPNG serializes a quantized raster as an indexed-color PNG
// (color type 3, bit depth 8). The palette is split into two synchronized
// tables: a PLTE chunk of RGB triplets and a parallel tRNS chunk carrying one
// alpha byte per entry, which preserves non-uniform per-color transparency
// without per-pixel alpha storage. Scanlines are written with filter None and
// deflated at the maximum compression level; filtering gains almost nothing
// on low-entropy index data and costs encode time.
func EncodeIndexedPNG(width, height int, palette color.Palette, indexes []uint8) ([]byte, error) {
	if len(palette) == 0 || len(palette) > maxColors {
		return nil, errors.Wrapf(ErrEncodeFailed,
			"squish: EncodeIndexedPNG: palette has %d entries", len(palette))
	}
	if len(indexes) != width*height {
		return nil, errors.Wrapf(ErrEncodeFailed,
			"squish: EncodeIndexedPNG: have %d indexes, want %d", len(indexes), width*height)
	}

	rgb := make([]byte, 0, len(palette)*3)
	alpha := make([]byte, 0, len(palette))
	for _, entry := range palette {
		c := rgbaEntry(entry)
		rgb = append(rgb, c.R, c.G, c.B)
		alpha = append(alpha, c.A)
	}

	var buf bytes.Buffer
	buf.Write(pngSignature)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8 // bit depth
	ihdr[9] = 3 // color type: indexed
	// compression, filter and interlace methods stay zero
	writeChunk(&buf, "IHDR", ihdr)
	writeChunk(&buf, "PLTE", rgb)
	writeChunk(&buf, "tRNS", alpha)

	var idat bytes.Buffer
	zw, err := zlib.NewWriterLevel(&idat, zlib.BestCompression)
	if err != nil {
		return nil, errors.Wrapf(ErrEncodeFailed, "squish: EncodeIndexedPNG: %v", err)
	}
	filter := []byte{0} // None, prepended to every scanline
	for y := 0; y < height; y++ {
		zw.Write(filter)
		zw.Write(indexes[y*width : (y+1)*width])
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrapf(ErrEncodeFailed, "squish: EncodeIndexedPNG: deflate: %v", err)
	}
	writeChunk(&buf, "IDAT", idat.Bytes())
	writeChunk(&buf, "IEND", nil)

	return buf.Bytes(), nil
}

func writeChunk(buf *bytes.Buffer, name string, data []byte) {
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(data)))
	copy(header[4:8], name)
	buf.Write(header[:])
	buf.Write(data)

	crc := crc32.NewIEEE()
	crc.Write(header[4:8])
	crc.Write(data)
	binary.Write(buf, binary.BigEndian, crc.Sum32())
}
