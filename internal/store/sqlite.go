// Package store is the embedded local cache: mirrored safety evaluations for
// offline history plus user-defined custom checklists. SQLite serializes
// writes itself; any number of readers may run concurrently.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"skysms.org/internal/checklist"
	"skysms.org/internal/safety"
)

// Store wraps the cache database.
type Store struct {
	db *sql.DB
}

var (
	_ safety.Cache          = (*Store)(nil)
	_ checklist.CustomStore = (*Store)(nil)
)

// Open creates or opens the cache database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// The cache is single-process; one writer connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenWith wraps an existing database handle. Used by tests.
func OpenWith(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// --- Safety evaluation cache ---

const evaluationColumns = `id, pilot_name, health_score, weather_score, aircraft_score,
	mission_score, risk_level, total_score, timestamp, mitigation_plan`

// UpsertEvaluation mirrors one backend record, replacing any previous copy
// with the same id.
func (s *Store) UpsertEvaluation(ctx context.Context, e safety.Evaluation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO safety_evaluations(`+evaluationColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			pilot_name=excluded.pilot_name,
			health_score=excluded.health_score,
			weather_score=excluded.weather_score,
			aircraft_score=excluded.aircraft_score,
			mission_score=excluded.mission_score,
			risk_level=excluded.risk_level,
			total_score=excluded.total_score,
			timestamp=excluded.timestamp,
			mitigation_plan=excluded.mitigation_plan
	`, e.ID, e.PilotName, e.HealthScore, e.WeatherScore, e.AircraftScore,
		e.MissionScore, string(e.RiskLevel), e.TotalScore, e.Timestamp, nullable(e.MitigationPlan))
	return err
}

// UpsertEvaluations mirrors a batch inside one transaction.
func (s *Store) UpsertEvaluations(ctx context.Context, evals []safety.Evaluation) error {
	if len(evals) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range evals {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO safety_evaluations(`+evaluationColumns+`)
			VALUES (?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT(id) DO UPDATE SET
				pilot_name=excluded.pilot_name,
				health_score=excluded.health_score,
				weather_score=excluded.weather_score,
				aircraft_score=excluded.aircraft_score,
				mission_score=excluded.mission_score,
				risk_level=excluded.risk_level,
				total_score=excluded.total_score,
				timestamp=excluded.timestamp,
				mitigation_plan=excluded.mitigation_plan
		`, e.ID, e.PilotName, e.HealthScore, e.WeatherScore, e.AircraftScore,
			e.MissionScore, string(e.RiskLevel), e.TotalScore, e.Timestamp, nullable(e.MitigationPlan)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// EvaluationsByPilot lists cached records for a pilot, newest first.
func (s *Store) EvaluationsByPilot(ctx context.Context, pilotName string) ([]safety.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+evaluationColumns+` FROM safety_evaluations
		WHERE pilot_name = ? ORDER BY timestamp DESC`, pilotName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvaluations(rows)
}

// AllEvaluations lists every cached record, newest first.
func (s *Store) AllEvaluations(ctx context.Context) ([]safety.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+evaluationColumns+` FROM safety_evaluations
		ORDER BY timestamp DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvaluations(rows)
}

// EvaluationByID fetches one cached record.
func (s *Store) EvaluationByID(ctx context.Context, id int64) (safety.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+evaluationColumns+` FROM safety_evaluations WHERE id = ?`, id)
	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return safety.Evaluation{}, safety.ErrNotFound
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (safety.Evaluation, error) {
	var e safety.Evaluation
	var risk string
	var plan sql.NullString
	err := row.Scan(&e.ID, &e.PilotName, &e.HealthScore, &e.WeatherScore,
		&e.AircraftScore, &e.MissionScore, &risk, &e.TotalScore, &e.Timestamp, &plan)
	if err != nil {
		return safety.Evaluation{}, err
	}
	e.RiskLevel = safety.RiskLevel(risk)
	e.MitigationPlan = plan.String
	return e, nil
}

func scanEvaluations(rows *sql.Rows) ([]safety.Evaluation, error) {
	var evals []safety.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// --- Custom checklists ---

// Items are stored as a JSON blob in a single column. Denormalized on
// purpose: the app never queries individual items.

// UpsertCustomChecklist saves or replaces a checklist.
func (s *Store) UpsertCustomChecklist(ctx context.Context, c checklist.CustomChecklist) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("store: encode checklist items: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO custom_checklists(id, title, items, created_at, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			items=excluded.items,
			updated_at=excluded.updated_at
	`, c.ID, c.Title, string(items), c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli())
	return err
}

// CustomChecklist fetches one checklist by id.
func (s *Store) CustomChecklist(ctx context.Context, id string) (checklist.CustomChecklist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, items, created_at, updated_at
		FROM custom_checklists WHERE id = ?`, id)
	c, err := scanCustomChecklist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return checklist.CustomChecklist{}, checklist.ErrChecklistNotFound
	}
	return c, err
}

// ListCustomChecklists returns all checklists, most recently updated first.
func (s *Store) ListCustomChecklists(ctx context.Context) ([]checklist.CustomChecklist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, items, created_at, updated_at
		FROM custom_checklists ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []checklist.CustomChecklist
	for rows.Next() {
		c, err := scanCustomChecklist(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, c)
	}
	return lists, rows.Err()
}

// DeleteCustomChecklist removes a checklist by id.
func (s *Store) DeleteCustomChecklist(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM custom_checklists WHERE id = ?`, id)
	return err
}

func scanCustomChecklist(row scanner) (checklist.CustomChecklist, error) {
	var c checklist.CustomChecklist
	var items string
	var created, updated int64
	if err := row.Scan(&c.ID, &c.Title, &items, &created, &updated); err != nil {
		return checklist.CustomChecklist{}, err
	}
	if err := json.Unmarshal([]byte(items), &c.Items); err != nil {
		return checklist.CustomChecklist{}, fmt.Errorf("store: decode checklist items: %w", err)
	}
	c.CreatedAt = time.UnixMilli(created)
	c.UpdatedAt = time.UnixMilli(updated)
	return c, nil
}
