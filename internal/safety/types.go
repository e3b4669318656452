// Package safety implements the risk evaluation model: submission of scored
// checklists and the read-through cached history.
package safety

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrPilotNameRequired = errors.New("safety: pilot name required")
	ErrNotFound          = errors.New("safety: evaluation not found")
)

// RiskLevel is the backend-assigned overall classification. The client never
// computes it; the thresholds live server-side.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ParseRiskLevel validates a wire value.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return RiskLevel(s), nil
	}
	return "", fmt.Errorf("safety: unknown risk level %q", s)
}

// DisplayName is the label shown to the user.
func (r RiskLevel) DisplayName() string {
	switch r {
	case RiskLow:
		return "Low Risk"
	case RiskMedium:
		return "Medium Risk"
	case RiskHigh:
		return "High Risk"
	}
	return string(r)
}

// Evaluation mirrors a backend evaluation record. Immutable once created;
// superseded only by a re-fetch. Timestamp stays the backend's string so the
// cached copy round-trips byte-for-byte.
type Evaluation struct {
	ID             int64
	PilotName      string
	HealthScore    int
	WeatherScore   int
	AircraftScore  int
	MissionScore   int
	RiskLevel      RiskLevel
	TotalScore     int
	Timestamp      string
	MitigationPlan string
}

// Cache is the persistence surface the local store provides for evaluation
// records. All writes are insert-or-replace by id.
type Cache interface {
	UpsertEvaluation(ctx context.Context, e Evaluation) error
	UpsertEvaluations(ctx context.Context, evals []Evaluation) error
	EvaluationsByPilot(ctx context.Context, pilotName string) ([]Evaluation, error)
	AllEvaluations(ctx context.Context) ([]Evaluation, error)
	EvaluationByID(ctx context.Context, id int64) (Evaluation, error)
}
