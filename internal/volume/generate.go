package volume

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
)

// GeneratedName is the conventional file name for a generated volume file.
func GeneratedName(nx, ny, nz, m int) string {
	return fmt.Sprintf("data_%d_%d_%d_%d.txt", nx, ny, nz, m)
}

// Generate writes nx*ny*nz rows of m values drawn uniformly from [-50, 50),
// formatted with two decimals.
func Generate(w io.Writer, nx, ny, nz, m int, rng *rand.Rand) error {
	if nx <= 0 || ny <= 0 || nz <= 0 || m <= 0 {
		return fmt.Errorf("invalid generator shape %dx%dx%d with %d columns", nx, ny, nz, m)
	}
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 8*m)
	for n := nx * ny * nz; n > 0; n-- {
		buf = buf[:0]
		for c := 0; c < m; c++ {
			if c > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendFloat(buf, rng.Float64()*100-50, 'f', 2, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
