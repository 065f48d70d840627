package resultsdb

import (
	"fmt"
	"time"

	"github.com/banshee-data/stencilbench/internal/volume"
)

// Verification is one extrema scan of a flat volume file.
type Verification struct {
	ID              int64
	Path            string
	NX, NY, NZ      int
	IncludeBoundary bool
	VerifiedAt      time.Time
	Reports         []volume.Report
}

// RecordVerification stores v and its per-volume reports. The assigned id
// is returned.
func (db *DB) RecordVerification(v Verification) (int64, error) {
	if v.VerifiedAt.IsZero() {
		v.VerifiedAt = db.clock.Now()
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO verifications (path, nx, ny, nz, include_boundary, verified_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.Path, v.NX, v.NY, v.NZ, v.IncludeBoundary, v.VerifiedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting verification of %s: %w", v.Path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for i, r := range v.Reports {
		if _, err := tx.Exec(`
			INSERT INTO verification_reports (verification_id, volume, minima, maxima, global_min, global_max)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, r.Minima, r.Maxima, r.Min, r.Max,
		); err != nil {
			return 0, fmt.Errorf("inserting report %d of %s: %w", i, v.Path, err)
		}
	}
	return id, tx.Commit()
}

// Verifications returns the scans recorded for path, oldest first.
func (db *DB) Verifications(path string) ([]Verification, error) {
	rows, err := db.Query(`
		SELECT verification_id, nx, ny, nz, include_boundary, verified_at
		FROM verifications WHERE path = ? ORDER BY verification_id`, path)
	if err != nil {
		return nil, err
	}
	var out []Verification
	index := map[int64]int{}
	for rows.Next() {
		v := Verification{Path: path}
		var at string
		if err := rows.Scan(&v.ID, &v.NX, &v.NY, &v.NZ, &v.IncludeBoundary, &at); err != nil {
			rows.Close()
			return nil, err
		}
		if v.VerifiedAt, err = time.Parse(timeLayout, at); err != nil {
			rows.Close()
			return nil, fmt.Errorf("verification %d verified_at: %w", v.ID, err)
		}
		index[v.ID] = len(out)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	reps, err := db.Query(`
		SELECT r.verification_id, r.minima, r.maxima, r.global_min, r.global_max
		FROM verification_reports r JOIN verifications v USING (verification_id)
		WHERE v.path = ? ORDER BY r.verification_id, r.volume`, path)
	if err != nil {
		return nil, err
	}
	defer reps.Close()
	for reps.Next() {
		var id int64
		var r volume.Report
		if err := reps.Scan(&id, &r.Minima, &r.Maxima, &r.Min, &r.Max); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			out[i].Reports = append(out[i].Reports, r)
		}
	}
	return out, reps.Err()
}
