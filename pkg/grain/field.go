package grain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Field is a rows x cols grid of signed noise offsets in [0,1] image units.
type Field struct {
	m *mat.Dense
}

// NewField returns a zeroed field. rows and cols must be positive.
func NewField(rows, cols int) (*Field, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: field %dx%d", ErrInvalidDimensions, rows, cols)
	}
	return &Field{m: mat.NewDense(rows, cols, nil)}, nil
}

// Dims returns the number of rows and columns.
func (f *Field) Dims() (rows, cols int) {
	return f.m.Dims()
}

// At returns the value at row r, column c.
func (f *Field) At(r, c int) float64 {
	return f.m.At(r, c)
}

// Set stores v at row r, column c.
func (f *Field) Set(r, c int, v float64) {
	f.m.Set(r, c, v)
}

// Row returns row r without copying. Writes go through to the field.
func (f *Field) Row(r int) []float64 {
	return f.m.RawRowView(r)
}

// Add accumulates o into f element-wise. Both fields must have the same shape.
func (f *Field) Add(o *Field) error {
	fr, fc := f.Dims()
	or, oc := o.Dims()
	if fr != or || fc != oc {
		return fmt.Errorf("%w: cannot add %dx%d field to %dx%d", ErrInvalidDimensions, or, oc, fr, fc)
	}
	f.m.Add(f.m, o.m)
	return nil
}

// Stats returns the mean and unbiased variance of all values.
func (f *Field) Stats() (mean, variance float64) {
	rows, cols := f.Dims()
	vals := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		vals = append(vals, f.Row(r)...)
	}
	return stat.MeanVariance(vals, nil)
}
