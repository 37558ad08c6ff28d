package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// #region log-run
// LogRun writes an entry to the analysis_runs table and returns its run ID.
func LogRun(db *sql.DB, entry RunEntry) (string, error) {
	if entry.RunID == "" {
		entry.RunID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO analysis_runs (run_id, operation, traject, strategy, params_json, outcome, detail, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Operation,
		nullIfEmpty(entry.Traject),
		nullIfEmpty(entry.Strategy),
		nullIfEmpty(entry.ParamsJSON),
		entry.Outcome,
		nullIfEmpty(entry.Detail),
		entry.Duration.Milliseconds(),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("log run: %w", err)
	}
	return entry.RunID, nil
}

// #endregion log-run

// #region list-runs
// ListRuns returns the most recent runs, newest first.
func ListRuns(db *sql.DB, limit int) ([]RunEntry, error) {
	rows, err := db.Query(
		`SELECT run_id, operation, traject, strategy, params_json, outcome, detail, duration_ms, created_at
		 FROM analysis_runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunEntry
	for rows.Next() {
		var e RunEntry
		var trajectName, strategy, params, detail sql.NullString
		var ms int64
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.Operation, &trajectName, &strategy, &params, &e.Outcome, &detail, &ms, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Traject = trajectName.String
		e.Strategy = strategy.String
		e.ParamsJSON = params.String
		e.Detail = detail.String
		e.Duration = time.Duration(ms) * time.Millisecond
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list-runs

// #region helpers
// EncodeParams serializes run parameters for RunEntry.ParamsJSON.
func EncodeParams(p RunParams) string {
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(b)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
