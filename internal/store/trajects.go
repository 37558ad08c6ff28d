package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/reliability"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

const initialOwner = "initial"

// #region save-traject
// SaveTraject validates t and stores it, replacing any traject of the same name.
// Returns the new traject ID.
func (s *Store) SaveTraject(ctx context.Context, t *traject.Traject) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("save traject: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := insertTraject(ctx, tx, t)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// SaveImport stores a batch of trajects and, when projects is non-nil, replaces the
// program projects, all in one transaction. Nothing is written if any part fails.
// Returns the traject IDs in input order.
func (s *Store) SaveImport(ctx context.Context, trajects []*traject.Traject, projects []traject.Project) ([]string, error) {
	for _, t := range trajects {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("save import: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(trajects))
	for _, t := range trajects {
		id, err := insertTraject(ctx, tx, t)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if projects != nil {
		if err := insertProjects(ctx, tx, projects); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}

// insertTraject replaces the traject of the same name inside tx.
func insertTraject(ctx context.Context, tx *sql.Tx, t *traject.Traject) (string, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM trajects WHERE name = ?`, t.Name); err != nil {
		return "", fmt.Errorf("replace traject %s: %w", t.Name, err)
	}

	id := newID()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO trajects (traject_id, name, lower_bound, signalling, damage, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, t.Name, t.Standard.LowerBound, t.Standard.Signalling, t.Damage,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert traject %s: %w", t.Name, err)
	}

	for pos, sec := range t.Sections {
		if err := insertSection(ctx, tx, id, pos, sec); err != nil {
			return "", err
		}
	}

	for strategy, order := range t.Orders {
		for pos, name := range order {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO orders (traject_id, strategy, position, section) VALUES (?, ?, ?, ?)`,
				id, string(strategy), pos, name,
			); err != nil {
				return "", fmt.Errorf("insert order %s: %w", strategy, err)
			}
		}
	}

	for strategy, steps := range t.Steps {
		for pos, st := range steps {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO optimizer_steps (traject_id, strategy, position, number, section, measure, lcc, total_lcc, total_risk)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, string(strategy), pos, st.Number, st.Section, st.Measure, st.LCC, st.TotalLCC, st.TotalRisk,
			); err != nil {
				return "", fmt.Errorf("insert step %d: %w", st.Number, err)
			}
			for m, ser := range st.Series {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO step_series (traject_id, strategy, position, mechanism, offsets, betas)
					 VALUES (?, ?, ?, ?, ?, ?)`,
					id, string(strategy), pos, string(m), encodeInts(ser.Offsets), encodeFloats(ser.Betas),
				); err != nil {
					return "", fmt.Errorf("insert step %d series %s: %w", st.Number, m, err)
				}
			}
		}
	}

	for strategy, recorded := range t.Recorded {
		for pos, rs := range recorded {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recorded_steps (traject_id, strategy, position, cumulative_cost, pf)
				 VALUES (?, ?, ?, ?, ?)`,
				id, string(strategy), pos, rs.CumulativeCost, encodeFloats(rs.Pf),
			); err != nil {
				return "", fmt.Errorf("insert recorded step %d: %w", pos, err)
			}
		}
	}
	return id, nil
}

func insertSection(ctx context.Context, tx *sql.Tx, id string, pos int, sec *traject.Section) error {
	mechJSON, err := json.Marshal(sec.Mechanisms)
	if err != nil {
		return fmt.Errorf("marshal mechanisms: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sections (traject_id, position, name, length, in_analysis, mechanisms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, pos, sec.Name, sec.Length, sec.InAnalysis, string(mechJSON),
	)
	if err != nil {
		return fmt.Errorf("insert section %s: %w", sec.Name, err)
	}

	insertSeries := func(owner string, m traject.MechanismKind, ser reliability.Series) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO series (traject_id, section, owner, mechanism, offsets, betas)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, sec.Name, owner, string(m), encodeInts(ser.Offsets), encodeFloats(ser.Betas),
		)
		if err != nil {
			return fmt.Errorf("insert series %s %s %s: %w", sec.Name, owner, m, err)
		}
		return nil
	}

	for m, ser := range sec.Initial {
		if err := insertSeries(initialOwner, m, ser); err != nil {
			return err
		}
	}
	for strategy, measure := range sec.Measures {
		if measure == nil {
			continue
		}
		var params interface{}
		if len(measure.Parameters) > 0 {
			b, err := json.Marshal(measure.Parameters)
			if err != nil {
				return fmt.Errorf("marshal parameters: %w", err)
			}
			params = string(b)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO measures (traject_id, section, strategy, name, cost, parameters)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, sec.Name, string(strategy), measure.Name, measure.Cost, params,
		); err != nil {
			return fmt.Errorf("insert measure %s %s: %w", sec.Name, strategy, err)
		}
		for m, ser := range measure.Series {
			if err := insertSeries(string(strategy), m, ser); err != nil {
				return err
			}
		}
	}
	return nil
}

// #endregion save-traject

// #region load-traject
// LoadTraject reads a traject by name. Unknown names return traject.ErrUnknownTraject.
func (s *Store) LoadTraject(ctx context.Context, name string) (*traject.Traject, error) {
	var id string
	t := &traject.Traject{
		Name:     name,
		Orders:   make(map[traject.Strategy][]string),
		Steps:    make(map[traject.Strategy][]traject.OptimizerStep),
		Recorded: make(map[traject.Strategy][]traject.RecordedStep),
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT traject_id, lower_bound, signalling, damage FROM trajects WHERE name = ?`, name,
	).Scan(&id, &t.Standard.LowerBound, &t.Standard.Signalling, &t.Damage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load traject: %w: %q", traject.ErrUnknownTraject, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load traject %s: %w", name, err)
	}

	// 1. Sections
	if err := s.loadSections(ctx, id, t); err != nil {
		return nil, fmt.Errorf("load traject %s: %w", name, err)
	}

	// 2. Measures and series
	if err := s.loadMeasures(ctx, id, t); err != nil {
		return nil, fmt.Errorf("load traject %s: %w", name, err)
	}
	if err := s.loadSeries(ctx, id, t); err != nil {
		return nil, fmt.Errorf("load traject %s: %w", name, err)
	}

	// 3. Orders, optimizer steps, recorded trace
	if err := s.loadOrders(ctx, id, t); err != nil {
		return nil, fmt.Errorf("load traject %s: %w", name, err)
	}
	if err := s.loadSteps(ctx, id, t); err != nil {
		return nil, fmt.Errorf("load traject %s: %w", name, err)
	}
	if err := s.loadRecorded(ctx, id, t); err != nil {
		return nil, fmt.Errorf("load traject %s: %w", name, err)
	}
	return t, nil
}

func (s *Store) loadSections(ctx context.Context, id string, t *traject.Traject) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, length, in_analysis, mechanisms FROM sections
		 WHERE traject_id = ? ORDER BY position`, id)
	if err != nil {
		return fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sec := &traject.Section{
			Initial:  make(map[traject.MechanismKind]reliability.Series),
			Measures: make(map[traject.Strategy]*traject.Measure),
		}
		var mechJSON string
		if err := rows.Scan(&sec.Name, &sec.Length, &sec.InAnalysis, &mechJSON); err != nil {
			return fmt.Errorf("scan section: %w", err)
		}
		if err := json.Unmarshal([]byte(mechJSON), &sec.Mechanisms); err != nil {
			return fmt.Errorf("unmarshal mechanisms of %s: %w", sec.Name, err)
		}
		t.Sections = append(t.Sections, sec)
	}
	return rows.Err()
}

func (s *Store) loadMeasures(ctx context.Context, id string, t *traject.Traject) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT section, strategy, name, cost, parameters FROM measures WHERE traject_id = ?`, id)
	if err != nil {
		return fmt.Errorf("query measures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var section, strategy string
		var params sql.NullString
		m := &traject.Measure{Series: make(map[traject.MechanismKind]reliability.Series)}
		if err := rows.Scan(&section, &strategy, &m.Name, &m.Cost, &params); err != nil {
			return fmt.Errorf("scan measure: %w", err)
		}
		if params.Valid {
			if err := json.Unmarshal([]byte(params.String), &m.Parameters); err != nil {
				return fmt.Errorf("unmarshal parameters of %s: %w", section, err)
			}
		}
		sec, ok := t.Section(section)
		if !ok {
			return fmt.Errorf("measure: %w: %q", traject.ErrUnknownSection, section)
		}
		sec.Measures[traject.Strategy(strategy)] = m
	}
	return rows.Err()
}

func (s *Store) loadSeries(ctx context.Context, id string, t *traject.Traject) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT section, owner, mechanism, offsets, betas FROM series WHERE traject_id = ?`, id)
	if err != nil {
		return fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var section, owner, mech string
		var offsets, betas []byte
		if err := rows.Scan(&section, &owner, &mech, &offsets, &betas); err != nil {
			return fmt.Errorf("scan series: %w", err)
		}
		sec, ok := t.Section(section)
		if !ok {
			return fmt.Errorf("series: %w: %q", traject.ErrUnknownSection, section)
		}
		ser := reliability.Series{Offsets: decodeInts(offsets), Betas: decodeFloats(betas)}
		m := traject.MechanismKind(mech)
		if owner == initialOwner {
			sec.Initial[m] = ser
			continue
		}
		measure := sec.Measure(traject.Strategy(owner))
		if measure == nil {
			return fmt.Errorf("series %s %s: no measure for %s", section, mech, owner)
		}
		measure.Series[m] = ser
	}
	return rows.Err()
}

func (s *Store) loadOrders(ctx context.Context, id string, t *traject.Traject) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strategy, section FROM orders WHERE traject_id = ? ORDER BY strategy, position`, id)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var strategy, section string
		if err := rows.Scan(&strategy, &section); err != nil {
			return fmt.Errorf("scan order: %w", err)
		}
		st := traject.Strategy(strategy)
		t.Orders[st] = append(t.Orders[st], section)
	}
	return rows.Err()
}

func (s *Store) loadSteps(ctx context.Context, id string, t *traject.Traject) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strategy, number, section, measure, lcc, total_lcc, total_risk
		 FROM optimizer_steps WHERE traject_id = ? ORDER BY strategy, position`, id)
	if err != nil {
		return fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var strategy string
		var st traject.OptimizerStep
		if err := rows.Scan(&strategy, &st.Number, &st.Section, &st.Measure, &st.LCC, &st.TotalLCC, &st.TotalRisk); err != nil {
			return fmt.Errorf("scan step: %w", err)
		}
		key := traject.Strategy(strategy)
		t.Steps[key] = append(t.Steps[key], st)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	series, err := s.db.QueryContext(ctx,
		`SELECT strategy, position, mechanism, offsets, betas FROM step_series WHERE traject_id = ?`, id)
	if err != nil {
		return fmt.Errorf("query step series: %w", err)
	}
	defer series.Close()

	for series.Next() {
		var strategy, mech string
		var pos int
		var offsets, betas []byte
		if err := series.Scan(&strategy, &pos, &mech, &offsets, &betas); err != nil {
			return fmt.Errorf("scan step series: %w", err)
		}
		steps := t.Steps[traject.Strategy(strategy)]
		if pos < 0 || pos >= len(steps) {
			return fmt.Errorf("step series %s: position %d out of range", strategy, pos)
		}
		if steps[pos].Series == nil {
			steps[pos].Series = make(map[traject.MechanismKind]reliability.Series)
		}
		steps[pos].Series[traject.MechanismKind(mech)] = reliability.Series{
			Offsets: decodeInts(offsets),
			Betas:   decodeFloats(betas),
		}
	}
	return series.Err()
}

func (s *Store) loadRecorded(ctx context.Context, id string, t *traject.Traject) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT strategy, cumulative_cost, pf FROM recorded_steps
		 WHERE traject_id = ? ORDER BY strategy, position`, id)
	if err != nil {
		return fmt.Errorf("query recorded: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var strategy string
		var rs traject.RecordedStep
		var pf []byte
		if err := rows.Scan(&strategy, &rs.CumulativeCost, &pf); err != nil {
			return fmt.Errorf("scan recorded: %w", err)
		}
		rs.Pf = decodeFloats(pf)
		key := traject.Strategy(strategy)
		t.Recorded[key] = append(t.Recorded[key], rs)
	}
	return rows.Err()
}

// #endregion load-traject
