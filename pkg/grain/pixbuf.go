package grain

import "fmt"

// PixelBuffer is a rows x cols x channels block of 8-bit samples stored
// row-major with interleaved channels.
type PixelBuffer struct {
	Rows     int
	Cols     int
	Channels int
	Pix      []uint8
}

// NewPixelBuffer allocates a zeroed buffer.
func NewPixelBuffer(rows, cols, channels int) (*PixelBuffer, error) {
	if rows <= 0 || cols <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: pixel buffer %dx%dx%d", ErrInvalidDimensions, rows, cols, channels)
	}
	return &PixelBuffer{
		Rows:     rows,
		Cols:     cols,
		Channels: channels,
		Pix:      make([]uint8, rows*cols*channels),
	}, nil
}

// Offset returns the index of the first channel of pixel (r, c) in Pix.
func (p *PixelBuffer) Offset(r, c int) int {
	return (r*p.Cols + c) * p.Channels
}

// Clone returns a deep copy of p.
func (p *PixelBuffer) Clone() *PixelBuffer {
	if p == nil {
		return nil
	}
	out := *p
	out.Pix = make([]uint8, len(p.Pix))
	copy(out.Pix, p.Pix)
	return &out
}

// Validate reports whether the shape is non-empty and consistent with Pix.
func (p *PixelBuffer) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil pixel buffer", ErrInvalidDimensions)
	}
	if p.Rows <= 0 || p.Cols <= 0 || p.Channels <= 0 {
		return fmt.Errorf("%w: pixel buffer %dx%dx%d", ErrInvalidDimensions, p.Rows, p.Cols, p.Channels)
	}
	if want := p.Rows * p.Cols * p.Channels; len(p.Pix) != want {
		return fmt.Errorf("%w: pixel buffer %dx%dx%d has %d samples, want %d",
			ErrInvalidDimensions, p.Rows, p.Cols, p.Channels, len(p.Pix), want)
	}
	return nil
}
