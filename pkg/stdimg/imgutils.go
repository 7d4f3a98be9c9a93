package stdimg

import (
	"fmt"
	"image"
	"image/color"

	"github.com/Fepozopo/grainer/pkg/grain"
)

// FromImage converts any image.Image into a PixelBuffer. Gray images become
// one channel, opaque images three (RGB), everything else four
// (non-premultiplied RGBA).
func FromImage(src image.Image) (*grain.PixelBuffer, error) {
	if src == nil {
		return nil, fmt.Errorf("source image is nil")
	}
	b := src.Bounds()
	channels := 4
	switch src.(type) {
	case *image.Gray, *image.Gray16:
		channels = 1
	default:
		if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
			channels = 3
		}
	}
	buf, err := grain.NewPixelBuffer(b.Dy(), b.Dx(), channels)
	if err != nil {
		return nil, err
	}

	if n, ok := src.(*image.NRGBA); ok && channels == 4 {
		// fast path: rows are already in the target layout
		for y := 0; y < buf.Rows; y++ {
			i := n.PixOffset(b.Min.X, b.Min.Y+y)
			copy(buf.Pix[buf.Offset(y, 0):buf.Offset(y+1, 0)], n.Pix[i:i+buf.Cols*4])
		}
		return buf, nil
	}

	idx := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			switch channels {
			case 1:
				buf.Pix[idx] = color.GrayModel.Convert(src.At(x, y)).(color.Gray).Y
			case 3:
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				buf.Pix[idx+0] = c.R
				buf.Pix[idx+1] = c.G
				buf.Pix[idx+2] = c.B
			default:
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				buf.Pix[idx+0] = c.R
				buf.Pix[idx+1] = c.G
				buf.Pix[idx+2] = c.B
				buf.Pix[idx+3] = c.A
			}
			idx += channels
		}
	}
	return buf, nil
}

// ToImage converts a PixelBuffer back into an image: one channel becomes
// *image.Gray, three or four channels become *image.NRGBA.
func ToImage(buf *grain.PixelBuffer) (image.Image, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, buf.Cols, buf.Rows)
	switch buf.Channels {
	case 1:
		out := image.NewGray(rect)
		for y := 0; y < buf.Rows; y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+buf.Cols], buf.Pix[buf.Offset(y, 0):buf.Offset(y+1, 0)])
		}
		return out, nil
	case 3:
		out := image.NewNRGBA(rect)
		idx := 0
		for y := 0; y < buf.Rows; y++ {
			for x := 0; x < buf.Cols; x++ {
				i := out.PixOffset(x, y)
				out.Pix[i+0] = buf.Pix[idx+0]
				out.Pix[i+1] = buf.Pix[idx+1]
				out.Pix[i+2] = buf.Pix[idx+2]
				out.Pix[i+3] = 255
				idx += 3
			}
		}
		return out, nil
	case 4:
		out := image.NewNRGBA(rect)
		for y := 0; y < buf.Rows; y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+buf.Cols*4], buf.Pix[buf.Offset(y, 0):buf.Offset(y+1, 0)])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported channel count %d", buf.Channels)
	}
}
