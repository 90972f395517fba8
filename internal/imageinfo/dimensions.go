// Package imageinfo reads pixel dimensions straight out of PNG and JPEG
// headers without decoding the image.
package imageinfo

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// Size is the pixel width and height of an image.
type Size struct {
	Width  int
	Height int
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Dimensions returns the size encoded in the header of data. ext selects the
// parser (".png", ".jpg" or ".jpeg", case-insensitive). The boolean is false
// for unknown extensions and for any malformed or truncated buffer.
func Dimensions(data []byte, ext string) (Size, bool) {
	switch strings.ToLower(ext) {
	case ".png":
		return pngDimensions(data)
	case ".jpg", ".jpeg":
		return jpegDimensions(data)
	default:
		return Size{}, false
	}
}

// IHDR is always the first chunk, so width and height sit at fixed offsets.
func pngDimensions(data []byte) (Size, bool) {
	if len(data) < 24 || !bytes.Equal(data[:8], pngSignature) {
		return Size{}, false
	}
	w := binary.BigEndian.Uint32(data[16:20])
	h := binary.BigEndian.Uint32(data[20:24])
	return Size{Width: int(w), Height: int(h)}, true
}

func jpegDimensions(data []byte) (Size, bool) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return Size{}, false
	}

	i := 2
	for {
		if i+1 >= len(data) || data[i] != 0xFF {
			return Size{}, false
		}
		marker := data[i+1]
		if marker == 0xDA || marker == 0xD9 {
			return Size{}, false
		}
		if i+3 >= len(data) {
			return Size{}, false
		}
		length := int(binary.BigEndian.Uint16(data[i+2 : i+4]))

		if isStartOfFrame(marker) {
			// payload: precision(1) height(2) width(2)
			if i+8 >= len(data) {
				return Size{}, false
			}
			h := binary.BigEndian.Uint16(data[i+5 : i+7])
			w := binary.BigEndian.Uint16(data[i+7 : i+9])
			return Size{Width: int(w), Height: int(h)}, true
		}

		i += 2 + length
	}
}

func isStartOfFrame(m byte) bool {
	switch {
	case m >= 0xC0 && m <= 0xC3:
		return true
	case m >= 0xC5 && m <= 0xC7:
		return true
	case m >= 0xC9 && m <= 0xCB:
		return true
	case m >= 0xCD && m <= 0xCF:
		return true
	}
	return false
}
