package grain

import (
	"fmt"
	"math"
	"runtime"
	"sync"
)

// ApplyToImage adds mask to every channel of img and returns a new buffer of
// the same shape. Samples are scaled to [0,1], offset by the mask, scaled
// back, rounded half to even and clipped to [0,255].
func (c *Compositor) ApplyToImage(img *PixelBuffer, mask *Field) (*PixelBuffer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if mask == nil {
		return nil, fmt.Errorf("%w: nil mask", ErrInvalidDimensions)
	}
	if mr, mc := mask.Dims(); mr != img.Rows || mc != img.Cols {
		return nil, fmt.Errorf("%w: mask %dx%d does not match image %dx%d", ErrInvalidDimensions, mr, mc, img.Rows, img.Cols)
	}

	out := &PixelBuffer{
		Rows:     img.Rows,
		Cols:     img.Cols,
		Channels: img.Channels,
		Pix:      make([]uint8, len(img.Pix)),
	}

	workers := c.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > img.Rows {
		workers = img.Rows
	}
	jobs := make(chan int, img.Rows)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for r := range jobs {
				blendRow(out, img, mask.Row(r), r)
			}
		}()
	}
	for r := 0; r < img.Rows; r++ {
		jobs <- r
	}
	close(jobs)
	wg.Wait()
	return out, nil
}

func blendRow(dst, src *PixelBuffer, noise []float64, r int) {
	depth := src.Channels
	for col, n := range noise {
		i := src.Offset(r, col)
		for d := 0; d < depth; d++ {
			dst.Pix[i+d] = blendSample(src.Pix[i+d], n)
		}
	}
}

// blendSample offsets one 8-bit sample by n (in [0,1] units).
func blendSample(v uint8, n float64) uint8 {
	if math.IsNaN(n) {
		return v
	}
	f := math.RoundToEven(255 * (float64(v)/255 + n))
	return uint8(clampFloatToUint8(f))
}

// clampFloatToUint8 ensures v in [0,255]
func clampFloatToUint8(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
