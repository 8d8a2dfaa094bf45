// Package catalog stores exercise plans per ailment.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// #region schema
// The schema sticks to types and syntax shared by SQLite and PostgreSQL.
const schema = `
CREATE TABLE IF NOT EXISTS plans (
	id               TEXT PRIMARY KEY,
	ailment          TEXT NOT NULL UNIQUE,
	difficulty_level TEXT NOT NULL,
	duration_weeks   INTEGER NOT NULL,
	sort_order       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS plan_exercises (
	id           TEXT PRIMARY KEY,
	plan_id      TEXT NOT NULL REFERENCES plans(id),
	name         TEXT NOT NULL,
	description  TEXT NOT NULL,
	target_reps  INTEGER NOT NULL,
	sets         INTEGER NOT NULL,
	rest_seconds INTEGER NOT NULL,
	sort_order   INTEGER NOT NULL,
	UNIQUE (plan_id, name)
);
`

// #endregion schema

// #region store-struct
// Store manages exercise plans in SQLite or PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// #endregion store-struct

// #region constructor
// Open connects with driver "sqlite" or "postgres" and runs migrations.
func Open(driver, dsn string) (*Store, error) {
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("open catalog: unsupported driver %q", driver)
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if driver == "sqlite" {
		// one connection: SQLite has a single writer, and :memory: is per connection
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma fk: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
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

// #endregion close

// #region write
// Seed adds every plan, skipping plans and exercises that already exist. It
// returns the number of exercises inserted, so a second run returns 0.
func (s *Store) Seed(ctx context.Context, plans []Plan) (int, error) {
	total := 0
	for _, p := range plans {
		n, err := s.AddPlan(ctx, p)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// AddPlan inserts p if its ailment is new and appends any exercises the plan
// does not have yet. Existing rows are never modified.
func (s *Store) AddPlan(ctx context.Context, p Plan) (int, error) {
	key := normalize(p.Ailment)
	if key == "" {
		return 0, fmt.Errorf("add plan: empty ailment")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO plans (id, ailment, difficulty_level, duration_weeks, sort_order)
		 VALUES (?, ?, ?, ?, (SELECT COUNT(*) FROM plans))
		 ON CONFLICT (ailment) DO NOTHING`),
		uuid.New().String(), key, p.DifficultyLevel, p.DurationWeeks,
	)
	if err != nil {
		return 0, fmt.Errorf("insert plan %q: %w", key, err)
	}

	var planID string
	if err := tx.GetContext(ctx, &planID, tx.Rebind(`SELECT id FROM plans WHERE ailment = ?`), key); err != nil {
		return 0, fmt.Errorf("lookup plan %q: %w", key, err)
	}

	inserted := 0
	for _, e := range p.Exercises {
		res, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO plan_exercises (id, plan_id, name, description, target_reps, sets, rest_seconds, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COUNT(*) FROM plan_exercises WHERE plan_id = ?))
			 ON CONFLICT (plan_id, name) DO NOTHING`),
			uuid.New().String(), planID, e.Name, e.Description, e.TargetReps, e.Sets, e.RestSeconds, planID,
		)
		if err != nil {
			return 0, fmt.Errorf("insert exercise %q: %w", e.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// #endregion write

// #region read
// GetPlan looks up a plan by ailment, case-insensitively.
func (s *Store) GetPlan(ctx context.Context, ailment string) (Plan, error) {
	key := normalize(ailment)

	var row planRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		`SELECT id, ailment, difficulty_level, duration_weeks FROM plans WHERE ailment = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return Plan{}, fmt.Errorf("%w: %q", ErrPlanNotFound, key)
	}
	if err != nil {
		return Plan{}, fmt.Errorf("get plan %q: %w", key, err)
	}

	var rows []exerciseRow
	err = s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT name, description, target_reps, sets, rest_seconds
		 FROM plan_exercises WHERE plan_id = ? ORDER BY sort_order`), row.ID)
	if err != nil {
		return Plan{}, fmt.Errorf("get exercises %q: %w", key, err)
	}

	plan := Plan{
		Ailment:         row.Ailment,
		Exercises:       make([]Exercise, 0, len(rows)),
		DifficultyLevel: row.DifficultyLevel,
		DurationWeeks:   row.DurationWeeks,
	}
	for _, r := range rows {
		plan.Exercises = append(plan.Exercises, newExercise(r))
	}
	return plan, nil
}

// Ailments lists every ailment with a plan, in insertion order.
func (s *Store) Ailments(ctx context.Context) ([]string, error) {
	out := []string{}
	if err := s.db.SelectContext(ctx, &out, `SELECT ailment FROM plans ORDER BY sort_order`); err != nil {
		return nil, fmt.Errorf("list ailments: %w", err)
	}
	return out, nil
}

// #endregion read

func normalize(ailment string) string {
	return strings.ToLower(strings.TrimSpace(ailment))
}
