package stdimg

import (
	"encoding/binary"
	"fmt"

	"github.com/Fepozopo/grainer/pkg/grain"
)

// AutoOrient applies an EXIF orientation (1..8) to buf and returns a new
// buffer. Orientation 1 or an unknown value returns buf unchanged.
func AutoOrient(buf *grain.PixelBuffer, orientation int) *grain.PixelBuffer {
	if buf == nil || orientation <= 1 || orientation > 8 {
		return buf
	}
	h, w := buf.Rows, buf.Cols
	rows, cols := h, w
	if orientation >= 5 {
		// 5..8 swap the axes
		rows, cols = w, h
	}
	// src returns the source pixel for destination (r, c)
	var src func(r, c int) (int, int)
	switch orientation {
	case 2: // flop
		src = func(r, c int) (int, int) { return r, w - 1 - c }
	case 3: // rotate 180
		src = func(r, c int) (int, int) { return h - 1 - r, w - 1 - c }
	case 4: // flip
		src = func(r, c int) (int, int) { return h - 1 - r, c }
	case 5: // transpose
		src = func(r, c int) (int, int) { return c, r }
	case 6: // rotate 90 CW
		src = func(r, c int) (int, int) { return h - 1 - c, r }
	case 7: // transverse
		src = func(r, c int) (int, int) { return h - 1 - c, w - 1 - r }
	case 8: // rotate 90 CCW
		src = func(r, c int) (int, int) { return c, w - 1 - r }
	}
	out := &grain.PixelBuffer{
		Rows:     rows,
		Cols:     cols,
		Channels: buf.Channels,
		Pix:      make([]uint8, len(buf.Pix)),
	}
	n := buf.Channels
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sr, sc := src(r, c)
			si := buf.Offset(sr, sc)
			di := out.Offset(r, c)
			copy(out.Pix[di:di+n], buf.Pix[si:si+n])
		}
	}
	return out
}

// jpegOrientation returns the EXIF orientation tag of a JPEG file, or an
// error if the file carries none.
func jpegOrientation(data []byte) (int, error) {
	tiffStart, err := exifTIFFStart(data)
	if err != nil {
		return 0, err
	}
	if tiffStart+8 > len(data) {
		return 0, fmt.Errorf("tiff header truncated")
	}
	var order binary.ByteOrder
	switch string(data[tiffStart : tiffStart+2]) {
	case "MM":
		order = binary.BigEndian
	case "II":
		order = binary.LittleEndian
	default:
		return 0, fmt.Errorf("unknown tiff byte order")
	}
	tiff := data[tiffStart:]
	if order.Uint16(tiff[2:4]) != 0x002A {
		return 0, fmt.Errorf("invalid tiff magic")
	}
	ifd := int(order.Uint32(tiff[4:8]))
	if ifd+2 > len(tiff) {
		return 0, fmt.Errorf("ifd0 out of range")
	}
	count := int(order.Uint16(tiff[ifd : ifd+2]))
	for i := 0; i < count; i++ {
		e := ifd + 2 + i*12
		if e+12 > len(tiff) {
			break
		}
		// 0x0112 Orientation, type 3 (SHORT), value stored inline
		if order.Uint16(tiff[e:e+2]) == 0x0112 && order.Uint16(tiff[e+2:e+4]) == 3 {
			return int(order.Uint16(tiff[e+8 : e+10])), nil
		}
	}
	return 0, fmt.Errorf("orientation tag not found")
}

// exifTIFFStart scans JPEG segments for an APP1 Exif block and returns the
// offset where its TIFF header begins.
func exifTIFFStart(data []byte) (int, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return -1, fmt.Errorf("not a jpeg")
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == 0xDA { // start of scan
			break
		}
		segLen := int(data[i+2])<<8 | int(data[i+3])
		if marker == 0xE1 && segLen >= 8 && i+10 <= len(data) && string(data[i+4:i+10]) == "Exif\x00\x00" {
			return i + 10, nil
		}
		if segLen <= 2 {
			i += 2
		} else {
			i += 2 + segLen
		}
	}
	return -1, fmt.Errorf("no exif segment")
}
