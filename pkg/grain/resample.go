package grain

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// Interpolation selects the kernel used to upsample the coarse layers.
type Interpolation int

const (
	Bilinear Interpolation = iota
	CatmullRom
	Lanczos
)

func (i Interpolation) String() string {
	switch i {
	case Bilinear:
		return "bilinear"
	case CatmullRom:
		return "catmullrom"
	case Lanczos:
		return "lanczos"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// ParseInterpolation maps a case-insensitive kernel name to an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bilinear", "linear":
		return Bilinear, nil
	case "catmullrom", "catmull-rom", "bicubic":
		return CatmullRom, nil
	case "lanczos", "lanczos3":
		return Lanczos, nil
	default:
		return Bilinear, fmt.Errorf("unknown interpolation %q (want bilinear, catmullrom or lanczos)", s)
	}
}

func (i Interpolation) kernel() *draw.Kernel {
	switch i {
	case CatmullRom:
		return draw.CatmullRom
	case Lanczos:
		return lanczos3
	default:
		return draw.BiLinear
	}
}

var lanczos3 = &draw.Kernel{Support: 3, At: func(t float64) float64 { return lanczosKernel(t, 3) }}

// sinc helper
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x = math.Pi * x
	return math.Sin(x) / x
}

// lanczosKernel returns lanczos weight for distance x with parameter a.
func lanczosKernel(x, a float64) float64 {
	x = math.Abs(x)
	if x < 1e-12 {
		return 1
	}
	if x >= a {
		return 0
	}
	return sinc(x) * sinc(x/a)
}

// tap is one source index and its normalized weight.
type tap struct {
	i int
	w float64
}

// contributions computes, for each destination index, the source taps of a
// 1-D resample from n to m samples. Pixel centers sit at +0.5 and source
// indices are clamped to the edge.
func contributions(n, m int, k *draw.Kernel) [][]tap {
	scale := float64(n) / float64(m)
	// stretch the kernel when shrinking so every source sample contributes
	stretch := math.Max(1, scale)
	support := k.Support * stretch
	out := make([][]tap, m)
	for d := 0; d < m; d++ {
		center := (float64(d)+0.5)*scale - 0.5
		lo := int(math.Floor(center-support)) + 1
		hi := int(math.Floor(center + support))
		taps := make([]tap, 0, hi-lo+1)
		sum := 0.0
		for s := lo; s <= hi; s++ {
			t := math.Abs(float64(s)-center) / stretch
			if t >= k.Support {
				continue
			}
			w := k.At(t)
			if w == 0 {
				continue
			}
			taps = append(taps, tap{i: clampInt(s, 0, n-1), w: w})
			sum += w
		}
		if sum == 0 {
			sum = 1
		}
		for j := range taps {
			taps[j].w /= sum
		}
		out[d] = taps
	}
	return out
}

// resize resamples src to rows x cols with the separable kernel k.
func resize(src *Field, rows, cols int, k *draw.Kernel) (*Field, error) {
	sr, sc := src.Dims()
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: resize target %dx%d", ErrInvalidDimensions, rows, cols)
	}

	// horizontal pass: sr x cols
	tmp, err := NewField(sr, cols)
	if err != nil {
		return nil, err
	}
	xs := contributions(sc, cols, k)
	for r := 0; r < sr; r++ {
		in := src.Row(r)
		row := tmp.Row(r)
		for c, taps := range xs {
			v := 0.0
			for _, t := range taps {
				v += in[t.i] * t.w
			}
			row[c] = v
		}
	}

	// vertical pass: rows x cols
	dst, err := NewField(rows, cols)
	if err != nil {
		return nil, err
	}
	ys := contributions(sr, rows, k)
	for r, taps := range ys {
		row := dst.Row(r)
		for _, t := range taps {
			in := tmp.Row(t.i)
			for c := range row {
				row[c] += in[c] * t.w
			}
		}
	}
	return dst, nil
}

// clampInt clamps v to [lo,hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
