package grain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantField(t *testing.T, rows, cols int, v float64) *Field {
	t.Helper()
	f, err := NewField(rows, cols)
	require.NoError(t, err)
	for r := 0; r < rows; r++ {
		row := f.Row(r)
		for i := range row {
			row[i] = v
		}
	}
	return f
}

func TestResizeConstantFieldStaysConstant(t *testing.T) {
	for _, interp := range []Interpolation{Bilinear, CatmullRom, Lanczos} {
		t.Run(interp.String(), func(t *testing.T) {
			src := constantField(t, 3, 5, 0.25)
			dst, err := resize(src, 12, 20, interp.kernel())
			require.NoError(t, err)
			rows, cols := dst.Dims()
			require.Equal(t, 12, rows)
			require.Equal(t, 20, cols)
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					assert.InDelta(t, 0.25, dst.At(r, c), 1e-12)
				}
			}
		})
	}
}

func TestResizeSingleSample(t *testing.T) {
	src := constantField(t, 1, 1, -0.5)
	dst, err := resize(src, 4, 4, Bilinear.kernel())
	require.NoError(t, err)
	for r := 0; r < 4; r++ {
		for _, v := range dst.Row(r) {
			assert.InDelta(t, -0.5, v, 1e-12)
		}
	}
}

func TestResizeBilinearInterpolatesBetweenSamples(t *testing.T) {
	src, err := NewField(1, 2)
	require.NoError(t, err)
	src.Set(0, 0, 0)
	src.Set(0, 1, 1)

	dst, err := resize(src, 1, 4, Bilinear.kernel())
	require.NoError(t, err)
	// centers map to -0.25, 0.25, 0.75, 1.25; edges clamp
	want := []float64{0, 0.25, 0.75, 1}
	for c, w := range want {
		assert.InDelta(t, w, dst.At(0, c), 1e-12, "col %d", c)
	}
}

func TestResizeZeroFieldStaysZero(t *testing.T) {
	src := constantField(t, 2, 2, 0)
	dst, err := resize(src, 8, 8, Lanczos.kernel())
	require.NoError(t, err)
	for r := 0; r < 8; r++ {
		for _, v := range dst.Row(r) {
			require.Zero(t, v)
		}
	}
}

func TestResizeRejectsEmptyTarget(t *testing.T) {
	src := constantField(t, 2, 2, 1)
	_, err := resize(src, 0, 4, Bilinear.kernel())
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestParseInterpolation(t *testing.T) {
	cases := []struct {
		in   string
		want Interpolation
	}{
		{"", Bilinear},
		{"bilinear", Bilinear},
		{"CatmullRom", CatmullRom},
		{"bicubic", CatmullRom},
		{" lanczos ", Lanczos},
	}
	for _, tc := range cases {
		got, err := ParseInterpolation(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	_, err := ParseInterpolation("nearest")
	assert.Error(t, err)
}

func TestLanczosKernel(t *testing.T) {
	assert.Equal(t, 1.0, lanczosKernel(0, 3))
	assert.Equal(t, 0.0, lanczosKernel(3, 3))
	assert.InDelta(t, 0, lanczosKernel(1, 3), 1e-12)
	assert.InDelta(t, 0, lanczosKernel(-2, 3), 1e-12)
}
