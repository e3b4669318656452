package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skysms.org/internal/checklist"
	"skysms.org/internal/safety"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleEvaluation(id int64, pilot, ts string) safety.Evaluation {
	return safety.Evaluation{
		ID: id, PilotName: pilot, HealthScore: 4, WeatherScore: 5,
		AircraftScore: 3, MissionScore: 4, RiskLevel: safety.RiskLow,
		TotalScore: 16, Timestamp: ts, MitigationPlan: "base",
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening replays migrate against an up-to-date schema.
	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestUpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := sampleEvaluation(1, "Ana", "2026-08-01T08:00:00Z")
	require.NoError(t, s.UpsertEvaluation(ctx, e))

	e.RiskLevel = safety.RiskHigh
	e.TotalScore = 6
	require.NoError(t, s.UpsertEvaluation(ctx, e))

	got, err := s.EvaluationByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, safety.RiskHigh, got.RiskLevel)
	assert.Equal(t, 6, got.TotalScore)

	all, err := s.AllEvaluations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "upsert must not duplicate rows")
}

func TestEvaluationsByPilotOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.UpsertEvaluations(ctx, []safety.Evaluation{
		sampleEvaluation(1, "Ana", "2026-08-01T08:00:00Z"),
		sampleEvaluation(2, "Ana", "2026-08-03T08:00:00Z"),
		sampleEvaluation(3, "Bruno", "2026-08-02T08:00:00Z"),
	}))

	got, err := s.EvaluationsByPilot(ctx, "Ana")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 2, got[0].ID, "newest first")
	assert.EqualValues(t, 1, got[1].ID)

	all, err := s.AllEvaluations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.EqualValues(t, 2, all[0].ID)
}

func TestEvaluationByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.EvaluationByID(context.Background(), 42)
	assert.ErrorIs(t, err, safety.ErrNotFound)
}

func TestNullMitigationPlan(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := sampleEvaluation(1, "Ana", "2026-08-01T08:00:00Z")
	e.MitigationPlan = ""
	require.NoError(t, s.UpsertEvaluation(ctx, e))

	got, err := s.EvaluationByID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got.MitigationPlan)
}

func TestCustomChecklistRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := checklist.CustomChecklist{
		ID:    "cl-1",
		Title: "Hangar",
		Items: []checklist.CustomItem{
			{ID: "i1", Text: "Fechar portas", Checked: true},
			{ID: "i2", Text: "Cobrir pitot"},
		},
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.UpsertCustomChecklist(ctx, c))

	got, err := s.CustomChecklist(ctx, "cl-1")
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	require.Len(t, got.Items, 2)
	assert.True(t, got.Items[0].Checked)
	assert.Equal(t, c.UpdatedAt.UnixMilli(), got.UpdatedAt.UnixMilli())

	_, err = s.CustomChecklist(ctx, "missing")
	assert.ErrorIs(t, err, checklist.ErrChecklistNotFound)
}

func TestListCustomChecklistsOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	older := checklist.CustomChecklist{ID: "a", Title: "Old", Items: []checklist.CustomItem{},
		CreatedAt: time.UnixMilli(1000), UpdatedAt: time.UnixMilli(1000)}
	newer := checklist.CustomChecklist{ID: "b", Title: "New", Items: []checklist.CustomItem{},
		CreatedAt: time.UnixMilli(2000), UpdatedAt: time.UnixMilli(2000)}
	require.NoError(t, s.UpsertCustomChecklist(ctx, older))
	require.NoError(t, s.UpsertCustomChecklist(ctx, newer))

	lists, err := s.ListCustomChecklists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "b", lists[0].ID, "most recently updated first")

	require.NoError(t, s.DeleteCustomChecklist(ctx, "a"))
	lists, err = s.ListCustomChecklists(ctx)
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}

func TestUpsertPropagatesDatabaseErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO safety_evaluations").
		WillReturnError(sql.ErrConnDone)

	s := OpenWith(db)
	err = s.UpsertEvaluation(context.Background(), sampleEvaluation(1, "Ana", "2026-08-01T08:00:00Z"))
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
