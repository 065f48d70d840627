package volume

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Columns holds a flat multi-column file split by column.
type Columns struct {
	cols [][]float64
	rows int
}

// ReadColumns parses whitespace-separated floats, one row per voxel. Blank
// lines and lines starting with '#' are skipped. Every row must have the
// same number of fields.
func ReadColumns(r io.Reader) (*Columns, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	c := &Columns{}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if c.cols == nil {
			c.cols = make([][]float64, len(fields))
		} else if len(fields) != len(c.cols) {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", lineNo, len(c.cols), len(fields))
		}
		for i, f := range fields {
			val, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", lineNo, i, err)
			}
			c.cols[i] = append(c.cols[i], val)
		}
		c.rows++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}
	return c, nil
}

// NewColumns builds Columns from in-memory data. All columns must have the
// same length.
func NewColumns(cols ...[]float64) (*Columns, error) {
	c := &Columns{cols: cols}
	for i, col := range cols {
		if i == 0 {
			c.rows = len(col)
			continue
		}
		if len(col) != c.rows {
			return nil, fmt.Errorf("column %d has %d rows, column 0 has %d", i, len(col), c.rows)
		}
	}
	return c, nil
}

// NumColumns is the number of fields per row.
func (c *Columns) NumColumns() int { return len(c.cols) }

// Rows is the number of data rows.
func (c *Columns) Rows() int { return c.rows }

// Column returns column i. The slice is shared with c.
func (c *Columns) Column(i int) []float64 { return c.cols[i] }
