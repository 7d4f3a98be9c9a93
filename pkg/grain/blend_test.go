package grain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlendSample(t *testing.T) {
	cases := []struct {
		name string
		v    uint8
		n    float64
		want uint8
	}{
		{"zero offset", 128, 0, 128},
		{"one level up", 100, 1.0 / 255, 101},
		{"one level down", 100, -1.0 / 255, 99},
		{"clip low", 10, -1, 0},
		{"clip high", 250, 1, 255},
		{"huge positive", 0, 1000, 255},
		{"huge negative", 255, -1000, 0},
		{"positive infinity", 3, math.Inf(1), 255},
		{"negative infinity", 3, math.Inf(-1), 0},
		{"nan keeps sample", 77, math.NaN(), 77},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, blendSample(tc.v, tc.n))
		})
	}
}

func TestApplyToImageBroadcastsMask(t *testing.T) {
	img := solidBuffer(t, 4, 5, 4, 100)
	mask, err := NewField(4, 5)
	require.NoError(t, err)
	mask.Set(1, 2, 10.0/255)
	mask.Set(3, 4, -20.0/255)

	out, err := New(WithWorkers(3)).ApplyToImage(img, mask)
	require.NoError(t, err)
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			want := uint8(100)
			switch {
			case r == 1 && c == 2:
				want = 110
			case r == 3 && c == 4:
				want = 80
			}
			i := out.Offset(r, c)
			for d := 0; d < 4; d++ {
				require.Equal(t, want, out.Pix[i+d], "pixel (%d,%d) channel %d", r, c, d)
			}
		}
	}
}

func TestApplyToImageShapeMismatch(t *testing.T) {
	img := solidBuffer(t, 4, 4, 3, 1)
	mask, err := NewField(4, 5)
	require.NoError(t, err)
	_, err = New().ApplyToImage(img, mask)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = New().ApplyToImage(img, nil)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestApplyToImageRejectsInconsistentBuffer(t *testing.T) {
	img := &PixelBuffer{Rows: 4, Cols: 4, Channels: 3, Pix: make([]uint8, 10)}
	mask, err := NewField(4, 4)
	require.NoError(t, err)
	_, err = New().ApplyToImage(img, mask)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Gaussian")
	require.NoError(t, err)
	assert.Equal(t, ModeGaussian, m)

	m, err = ParseMode("poisson")
	require.NoError(t, err)
	assert.Equal(t, ModePoisson, m)

	_, err = ParseMode("localvar")
	assert.ErrorIs(t, err, ErrUnsupportedDistribution)
}

func TestModeLayers(t *testing.T) {
	in := Intensities{Fine: 0.1, Medium: 0.2, Large: 0.3}
	g, err := ModeGaussian.Layers(in)
	require.NoError(t, err)
	assert.Equal(t, [3]Distribution{Gaussian{0.1}, Gaussian{0.2}, Gaussian{0.3}}, g)

	p, err := ModePoisson.Layers(in)
	require.NoError(t, err)
	assert.Equal(t, [3]Distribution{Poisson{}, Poisson{}, Poisson{}}, p)
}

func TestScaleDivisor(t *testing.T) {
	assert.Equal(t, 1, ScaleFine.Divisor())
	assert.Equal(t, 2, ScaleMedium.Divisor())
	assert.Equal(t, 4, ScaleLarge.Divisor())
}
