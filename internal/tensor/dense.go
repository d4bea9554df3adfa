package tensor

import (
	"bytes"
	"fmt"
)

// Dense is a dense 4-axis {0,1} tensor over (species, site, interval, visit).
// Allocation zero-fills every cell, so the full species×site×interval×visit
// domain is defined from the start; building detections only ever flips
// cells to 1.
type Dense struct {
	axes *Axes
	data []uint8
}

// NewDense allocates a zeroed tensor over the given axes.
func NewDense(axes *Axes) *Dense {
	return &Dense{
		axes: axes,
		data: make([]uint8, axes.Cells()),
	}
}

// Axes returns the axes this tensor was built against.
func (t *Dense) Axes() *Axes {
	return t.axes
}

// offset maps 4-axis coordinates to the flat backing array, species-major.
func (t *Dense) offset(i, j, k, l int) int {
	nSpecies, nSites, nIntervals, nVisits := t.axes.Dims()
	if i < 0 || i >= nSpecies || j < 0 || j >= nSites || k < 0 || k >= nIntervals || l < 0 || l >= nVisits {
		panic(fmt.Sprintf("tensor index (%d,%d,%d,%d) out of range (%d,%d,%d,%d)",
			i, j, k, l, nSpecies, nSites, nIntervals, nVisits))
	}
	return ((i*nSites+j)*nIntervals+k)*nVisits + l
}

// At returns the cell value at (species, site, interval, visit) positions.
func (t *Dense) At(i, j, k, l int) uint8 {
	return t.data[t.offset(i, j, k, l)]
}

// Mark sets the cell at (species, site, interval, visit) positions to 1.
// Cells are binary, marking an already-set cell is a no-op.
func (t *Dense) Mark(i, j, k, l int) {
	t.data[t.offset(i, j, k, l)] = 1
}

// Sum returns the number of set cells.
func (t *Dense) Sum() int {
	total := 0
	for _, v := range t.data {
		total += int(v)
	}
	return total
}

// Equal reports whether two tensors share axes dimensions and cell values.
func (t *Dense) Equal(other *Dense) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(t.data, other.data)
}

// Bytes returns the flat backing array in species-major order, one byte per
// cell. The slice is the live backing store, callers must not modify it.
func (t *Dense) Bytes() []uint8 {
	return t.data
}
