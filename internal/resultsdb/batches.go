package resultsdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/stencilbench/internal/trials"
)

// Batch describes one aggregation run.
type Batch struct {
	ID         string
	CreatedAt  time.Time
	SourceDirs []string
	DestDir    string
	MetricLine int
	FilesOK    int
	Failed     int
}

// NewBatch returns a Batch with a fresh id, stamped with the database clock.
func (db *DB) NewBatch(sourceDirs []string, destDir string, metricLine int) Batch {
	return Batch{
		ID:         uuid.NewString(),
		CreatedAt:  db.clock.Now().UTC(),
		SourceDirs: sourceDirs,
		DestDir:    destDir,
		MetricLine: metricLine,
	}
}

// RecordBatch stores b and its summary records in one transaction.
func (db *DB) RecordBatch(b Batch, recs []trials.SummaryRecord) error {
	if b.ID == "" {
		return fmt.Errorf("batch id is required")
	}
	dirs, err := json.Marshal(b.SourceDirs)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO batches (batch_id, created_at, source_dirs, dest_dir, metric_line, files_ok, files_failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.CreatedAt.UTC().Format(timeLayout), string(dirs), b.DestDir, b.MetricLine, b.FilesOK, b.Failed,
	); err != nil {
		return fmt.Errorf("inserting batch %s: %w", b.ID, err)
	}

	for _, r := range recs {
		var core sql.NullString
		var procs sql.NullInt64
		if r.Identity.Recognized {
			core = sql.NullString{String: r.Identity.File.CoreConfig, Valid: true}
			procs = sql.NullInt64{Int64: int64(r.Identity.File.Processes), Valid: true}
		}
		if _, err := tx.Exec(`
			INSERT INTO summary_records (batch_id, path, version, core_config, processes, trials)
			VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, r.Identity.Path, r.Identity.Version, core, procs, r.Trials,
		); err != nil {
			return fmt.Errorf("inserting record %s: %w", r.Identity.Path, err)
		}
		for col, mean := range r.Mean {
			var rel float64
			if col < len(r.RelStdPct) {
				rel = r.RelStdPct[col]
			}
			if _, err := tx.Exec(`
				INSERT INTO summary_values (batch_id, path, col, mean, rel_std_pct)
				VALUES (?, ?, ?, ?, ?)`,
				b.ID, r.Identity.Path, col, mean, rel,
			); err != nil {
				return fmt.Errorf("inserting values for %s: %w", r.Identity.Path, err)
			}
		}
	}
	return tx.Commit()
}

// Batches lists the most recent batches first. limit <= 0 returns all.
func (db *DB) Batches(limit int) ([]Batch, error) {
	q := `SELECT batch_id, created_at, source_dirs, dest_dir, metric_line, files_ok, files_failed
		FROM batches ORDER BY created_at DESC, batch_id`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		var created, dirs string
		if err := rows.Scan(&b.ID, &created, &dirs, &b.DestDir, &b.MetricLine, &b.FilesOK, &b.Failed); err != nil {
			return nil, err
		}
		if b.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("batch %s created_at: %w", b.ID, err)
		}
		if err := json.Unmarshal([]byte(dirs), &b.SourceDirs); err != nil {
			return nil, fmt.Errorf("batch %s source_dirs: %w", b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BatchSummaries rebuilds the summary records of a batch, sorted with
// trials.SortRecords.
func (db *DB) BatchSummaries(batchID string) ([]trials.SummaryRecord, error) {
	var (
		order []string
		stats = map[string]*trials.Stats{}
	)

	rows, err := db.Query(`SELECT path, trials FROM summary_records WHERE batch_id = ? ORDER BY path`, batchID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var path string
		var n int
		if err := rows.Scan(&path, &n); err != nil {
			rows.Close()
			return nil, err
		}
		order = append(order, path)
		stats[path] = &trials.Stats{Trials: n}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	vals, err := db.Query(`SELECT path, mean, rel_std_pct FROM summary_values WHERE batch_id = ? ORDER BY path, col`, batchID)
	if err != nil {
		return nil, err
	}
	defer vals.Close()
	for vals.Next() {
		var path string
		var mean, rel float64
		if err := vals.Scan(&path, &mean, &rel); err != nil {
			return nil, err
		}
		st, ok := stats[path]
		if !ok {
			continue
		}
		st.Mean = append(st.Mean, mean)
		st.RelStdPct = append(st.RelStdPct, rel)
	}
	if err := vals.Err(); err != nil {
		return nil, err
	}

	recs := make([]trials.SummaryRecord, 0, len(order))
	for _, path := range order {
		recs = append(recs, trials.NewSummaryRecord(trials.IdentityFromPath(path), *stats[path]))
	}
	trials.SortRecords(recs)
	return recs, nil
}
