package volume

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"
)

// Report is the extrema summary of one volume.
type Report struct {
	Minima int
	Maxima int
	Min    float64
	Max    float64
}

// ScanOptions tunes Scan.
type ScanOptions struct {
	// IncludeBoundary also tests boundary voxels, comparing only against
	// the neighbours that exist. A voxel with no neighbours counts as both
	// a minimum and a maximum. The default tests interior voxels only.
	IncludeBoundary bool
}

// Scan counts strict local minima and maxima over the interior voxels of v
// and finds the global bounds over all voxels.
func Scan(v *Volume) Report {
	return ScanWith(v, ScanOptions{})
}

// ScanWith is Scan with options.
func ScanWith(v *Volume, opts ScanOptions) Report {
	r := Report{
		Min: floats.Min(v.data),
		Max: floats.Max(v.data),
	}
	if opts.IncludeBoundary {
		r.Minima, r.Maxima = countAll(v)
	} else {
		r.Minima, r.Maxima = countInterior(v)
	}
	return r
}

func countInterior(v *Volume) (minima, maxima int) {
	d := v.data
	sy, sz := v.nx, v.nx*v.ny
	for z := 1; z < v.nz-1; z++ {
		for y := 1; y < v.ny-1; y++ {
			for x := 1; x < v.nx-1; x++ {
				i := v.Index(x, y, z)
				c := d[i]
				n0, n1, n2, n3, n4, n5 := d[i-1], d[i+1], d[i-sy], d[i+sy], d[i-sz], d[i+sz]
				if c < n0 && c < n1 && c < n2 && c < n3 && c < n4 && c < n5 {
					minima++
				}
				if c > n0 && c > n1 && c > n2 && c > n3 && c > n4 && c > n5 {
					maxima++
				}
			}
		}
	}
	return minima, maxima
}

var faceOffsets = [6][3]int{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}}

func countAll(v *Volume) (minima, maxima int) {
	for z := 0; z < v.nz; z++ {
		for y := 0; y < v.ny; y++ {
			for x := 0; x < v.nx; x++ {
				c := v.data[v.Index(x, y, z)]
				isMin, isMax := true, true
				for _, o := range faceOffsets {
					px, py, pz := x+o[0], y+o[1], z+o[2]
					if px < 0 || px >= v.nx || py < 0 || py >= v.ny || pz < 0 || pz >= v.nz {
						continue
					}
					n := v.data[v.Index(px, py, pz)]
					if !(c < n) {
						isMin = false
					}
					if !(c > n) {
						isMax = false
					}
				}
				if isMin {
					minima++
				}
				if isMax {
					maxima++
				}
			}
		}
	}
	return minima, maxima
}

// ScanColumns scans every column of cols as an nx*ny*nz volume. The row
// count is checked before any column is scanned, so a mismatch returns no
// reports at all.
func ScanColumns(cols *Columns, nx, ny, nz int) ([]Report, error) {
	return ScanColumnsWith(cols, nx, ny, nz, ScanOptions{})
}

// ScanColumnsWith is ScanColumns with options.
func ScanColumnsWith(cols *Columns, nx, ny, nz int, opts ScanOptions) ([]Report, error) {
	vols := make([]*Volume, cols.NumColumns())
	for i := range vols {
		v, err := New(nx, ny, nz, cols.Column(i))
		if err != nil {
			return nil, err
		}
		vols[i] = v
	}
	if len(vols) == 0 {
		if _, err := New(nx, ny, nz, nil); err != nil {
			return nil, err
		}
	}
	reports := make([]Report, len(vols))
	for i, v := range vols {
		reports[i] = ScanWith(v, opts)
	}
	return reports, nil
}

// VerifyFile loads the flat file at path and scans every column.
func VerifyFile(path string, nx, ny, nz int, opts ScanOptions) ([]Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cols, err := ReadColumns(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reports, err := ScanColumnsWith(cols, nx, ny, nz, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reports, nil
}
