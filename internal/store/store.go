package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS trajects (
	traject_id    TEXT PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	lower_bound   REAL NOT NULL,
	signalling    REAL NOT NULL,
	damage        REAL NOT NULL,
	imported_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sections (
	traject_id    TEXT NOT NULL,
	position      INTEGER NOT NULL,
	name          TEXT NOT NULL,
	length        REAL NOT NULL,
	in_analysis   INTEGER NOT NULL,
	mechanisms    TEXT NOT NULL,
	PRIMARY KEY (traject_id, name),
	FOREIGN KEY (traject_id) REFERENCES trajects(traject_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS measures (
	traject_id    TEXT NOT NULL,
	section       TEXT NOT NULL,
	strategy      TEXT NOT NULL,
	name          TEXT NOT NULL,
	cost          REAL NOT NULL,
	parameters    TEXT,
	PRIMARY KEY (traject_id, section, strategy),
	FOREIGN KEY (traject_id) REFERENCES trajects(traject_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS series (
	traject_id    TEXT NOT NULL,
	section       TEXT NOT NULL,
	owner         TEXT NOT NULL,
	mechanism     TEXT NOT NULL,
	offsets       BLOB NOT NULL,
	betas         BLOB NOT NULL,
	PRIMARY KEY (traject_id, section, owner, mechanism),
	FOREIGN KEY (traject_id) REFERENCES trajects(traject_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS orders (
	traject_id    TEXT NOT NULL,
	strategy      TEXT NOT NULL,
	position      INTEGER NOT NULL,
	section       TEXT NOT NULL,
	PRIMARY KEY (traject_id, strategy, position),
	FOREIGN KEY (traject_id) REFERENCES trajects(traject_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS optimizer_steps (
	traject_id    TEXT NOT NULL,
	strategy      TEXT NOT NULL,
	position      INTEGER NOT NULL,
	number        INTEGER NOT NULL,
	section       TEXT NOT NULL,
	measure       TEXT NOT NULL,
	lcc           REAL NOT NULL,
	total_lcc     REAL NOT NULL,
	total_risk    REAL NOT NULL,
	PRIMARY KEY (traject_id, strategy, position),
	FOREIGN KEY (traject_id) REFERENCES trajects(traject_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS step_series (
	traject_id    TEXT NOT NULL,
	strategy      TEXT NOT NULL,
	position      INTEGER NOT NULL,
	mechanism     TEXT NOT NULL,
	offsets       BLOB NOT NULL,
	betas         BLOB NOT NULL,
	PRIMARY KEY (traject_id, strategy, position, mechanism),
	FOREIGN KEY (traject_id) REFERENCES trajects(traject_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS recorded_steps (
	traject_id      TEXT NOT NULL,
	strategy        TEXT NOT NULL,
	position        INTEGER NOT NULL,
	cumulative_cost REAL NOT NULL,
	pf              BLOB NOT NULL,
	PRIMARY KEY (traject_id, strategy, position),
	FOREIGN KEY (traject_id) REFERENCES trajects(traject_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS projects (
	position      INTEGER PRIMARY KEY,
	name          TEXT NOT NULL,
	start_year    INTEGER NOT NULL,
	end_year      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS project_sections (
	project       INTEGER NOT NULL,
	position      INTEGER NOT NULL,
	traject       TEXT NOT NULL,
	section       TEXT NOT NULL,
	PRIMARY KEY (project, position),
	FOREIGN KEY (project) REFERENCES projects(position) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id        TEXT PRIMARY KEY,
	operation     TEXT NOT NULL,
	traject       TEXT,
	strategy      TEXT,
	params_json   TEXT,
	outcome       TEXT NOT NULL,
	detail        TEXT,
	duration_ms   INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store persists imported trajects and programs in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// pragmas are per connection and :memory: databases are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion close

// #region list
// TrajectInfo summarises one stored traject.
type TrajectInfo struct {
	ID         string
	Name       string
	Sections   int
	ImportedAt time.Time
}

// ListTrajects returns the stored trajects by name.
func (s *Store) ListTrajects(ctx context.Context) ([]TrajectInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.traject_id, t.name, t.imported_at, COUNT(s.name)
		 FROM trajects t LEFT JOIN sections s ON s.traject_id = t.traject_id
		 GROUP BY t.traject_id ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("list trajects: %w", err)
	}
	defer rows.Close()

	var out []TrajectInfo
	for rows.Next() {
		var info TrajectInfo
		var importedStr string
		if err := rows.Scan(&info.ID, &info.Name, &importedStr, &info.Sections); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		info.ImportedAt, _ = time.Parse(time.RFC3339Nano, importedStr)
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteTraject removes a traject and everything stored under it.
func (s *Store) DeleteTraject(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trajects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete traject %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete traject %s: %w", name, ErrNotFound)
	}
	return nil
}

// ErrNotFound is returned when a named record does not exist.
var ErrNotFound = errors.New("not found")

func newID() string {
	return uuid.New().String()
}

// #endregion list

// #region float-encoding
func encodeFloats(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeFloats(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

func encodeInts(v []int) []byte {
	buf := make([]byte, len(v)*8)
	for i, n := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(int64(n)))
	}
	return buf
}

func decodeInts(b []byte) []int {
	v := make([]int, len(b)/8)
	for i := range v {
		v[i] = int(int64(binary.LittleEndian.Uint64(b[i*8:])))
	}
	return v
}

// #endregion float-encoding
