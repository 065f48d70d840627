// Package volume reconstructs 3D scalar fields from flat column files and
// scans them for local extrema under the 6-neighbour stencil.
//
// Rows of a flat file enumerate voxels with x varying fastest, then y, then
// z, so voxel (x, y, z) lives at row x + nx*(y + ny*z). Every column of the
// file is an independent field with the same dimensions.
package volume

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch reports a row count that does not equal nx*ny*nz,
// or dimensions that are not positive.
var ErrDimensionMismatch = errors.New("volume dimension mismatch")

// Volume is an nx*ny*nz scalar field.
type Volume struct {
	nx, ny, nz int
	data       []float64
}

// New wraps data as an nx*ny*nz volume. data is not copied.
func New(nx, ny, nz int, data []float64) (*Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%dx%d must be positive", ErrDimensionMismatch, nx, ny, nz)
	}
	if want := nx * ny * nz; len(data) != want {
		return nil, fmt.Errorf("%w: expected %d rows, but got %d", ErrDimensionMismatch, want, len(data))
	}
	return &Volume{nx: nx, ny: ny, nz: nz, data: data}, nil
}

// Dims returns the volume dimensions.
func (v *Volume) Dims() (nx, ny, nz int) { return v.nx, v.ny, v.nz }

// Len is the number of voxels.
func (v *Volume) Len() int { return len(v.data) }

// Index returns the flat position of voxel (x, y, z).
func (v *Volume) Index(x, y, z int) int { return x + v.nx*(y+v.ny*z) }

// At returns the value of voxel (x, y, z). It panics when the coordinates
// are out of range, like a slice index.
func (v *Volume) At(x, y, z int) float64 {
	if x < 0 || x >= v.nx || y < 0 || y >= v.ny || z < 0 || z >= v.nz {
		panic(fmt.Sprintf("volume: index (%d, %d, %d) out of range %dx%dx%d", x, y, z, v.nx, v.ny, v.nz))
	}
	return v.data[v.Index(x, y, z)]
}
