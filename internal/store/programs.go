package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// #region save-projects
// SaveProjects replaces the stored program projects. Section references are not
// checked here; LoadProgram validates them against the stored trajects.
func (s *Store) SaveProjects(ctx context.Context, projects []traject.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertProjects(ctx, tx, projects); err != nil {
		return err
	}
	return tx.Commit()
}

func insertProjects(ctx context.Context, tx *sql.Tx, projects []traject.Project) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_sections`); err != nil {
		return fmt.Errorf("clear project sections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects`); err != nil {
		return fmt.Errorf("clear projects: %w", err)
	}

	for pos, p := range projects {
		if p.StartYear > p.EndYear {
			return fmt.Errorf("project %s: %w: start %d after end %d", p.Name, traject.ErrInvalidProject, p.StartYear, p.EndYear)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO projects (position, name, start_year, end_year) VALUES (?, ?, ?, ?)`,
			pos, p.Name, p.StartYear, p.EndYear,
		); err != nil {
			return fmt.Errorf("insert project %s: %w", p.Name, err)
		}
		for i, ref := range p.Sections {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO project_sections (project, position, traject, section) VALUES (?, ?, ?, ?)`,
				pos, i, ref.Traject, ref.Section,
			); err != nil {
				return fmt.Errorf("insert project %s section %s: %w", p.Name, ref.Section, err)
			}
		}
	}
	return nil
}

// #endregion save-projects

// #region load-program
// LoadProgram reads the stored projects together with every traject they reference.
func (s *Store) LoadProgram(ctx context.Context) (traject.Program, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.position, p.name, p.start_year, p.end_year, ps.traject, ps.section
		 FROM projects p LEFT JOIN project_sections ps ON ps.project = p.position
		 ORDER BY p.position, ps.position`)
	if err != nil {
		return traject.Program{}, fmt.Errorf("query projects: %w", err)
	}

	var projects []traject.Project
	last := -1
	for rows.Next() {
		var pos int
		var p traject.Project
		var trajectName, section *string
		if err := rows.Scan(&pos, &p.Name, &p.StartYear, &p.EndYear, &trajectName, &section); err != nil {
			rows.Close()
			return traject.Program{}, fmt.Errorf("scan project: %w", err)
		}
		if pos != last {
			projects = append(projects, p)
			last = pos
		}
		if trajectName != nil && section != nil {
			cur := &projects[len(projects)-1]
			cur.Sections = append(cur.Sections, traject.SectionRef{Traject: *trajectName, Section: *section})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return traject.Program{}, err
	}
	rows.Close()

	program := traject.Program{Projects: projects, Trajects: make(map[string]*traject.Traject)}
	for _, p := range projects {
		for _, ref := range p.Sections {
			if _, ok := program.Trajects[ref.Traject]; ok {
				continue
			}
			t, err := s.LoadTraject(ctx, ref.Traject)
			if err != nil {
				return traject.Program{}, fmt.Errorf("project %s: %w", p.Name, err)
			}
			program.Trajects[ref.Traject] = t
		}
	}
	if err := program.Validate(); err != nil {
		return traject.Program{}, err
	}
	return program, nil
}

// #endregion load-program
