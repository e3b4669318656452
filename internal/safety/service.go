package safety

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"skysms.org/internal/api"
	"skysms.org/internal/checklist"
)

// Phase is the discriminant of the submission state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

// SubmitState is the tagged submission state. Evaluation is set only for
// PhaseSuccess, Message only for PhaseError.
type SubmitState struct {
	Phase      Phase
	Evaluation Evaluation
	Message    string
}

// Backend is the slice of the API client the safety flows need.
type Backend interface {
	SubmitEvaluation(ctx context.Context, req api.EvaluationRequest) (api.EvaluationResponse, error)
	History(ctx context.Context, pilotName string) ([]api.EvaluationResponse, error)
	Evaluation(ctx context.Context, id int64) (api.EvaluationResponse, error)
}

// Service packages checklist scores into evaluations and keeps the local
// cache mirrored. Cache failures degrade to cache misses and are never
// surfaced to callers; the network stays the source of truth.
type Service struct {
	backend Backend
	cache   Cache
	log     *zap.Logger

	mu    sync.Mutex
	state SubmitState
}

// NewService wires the evaluation flows.
func NewService(backend Backend, cache Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{backend: backend, cache: cache, log: log}
}

// State returns the current submission state.
func (s *Service) State() SubmitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset returns the machine to Idle.
func (s *Service) Reset() {
	s.setState(SubmitState{Phase: PhaseIdle})
}

func (s *Service) setState(st SubmitState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Submit computes the four category scores, builds the detailed mitigation
// plan and posts the evaluation. A blank pilot name blocks the submission
// before any request; the state machine is left untouched in that case.
func (s *Service) Submit(ctx context.Context, pilotName, basePlan string, cl *checklist.Checklist) (Evaluation, error) {
	if strings.TrimSpace(pilotName) == "" {
		return Evaluation{}, ErrPilotNameRequired
	}
	s.setState(SubmitState{Phase: PhaseLoading})

	scores := cl.Scores()
	req := api.EvaluationRequest{
		PilotName:      pilotName,
		HealthScore:    scores[checklist.CategoryHealth],
		WeatherScore:   scores[checklist.CategoryWeather],
		AircraftScore:  scores[checklist.CategoryAircraft],
		MissionScore:   scores[checklist.CategoryMission],
		MitigationPlan: cl.BuildMitigationPlan(basePlan),
	}

	resp, err := s.backend.SubmitEvaluation(ctx, req)
	if err != nil {
		s.setState(SubmitState{Phase: PhaseError, Message: userMessage(err)})
		return Evaluation{}, err
	}

	eval, err := evaluationFromDTO(resp)
	if err != nil {
		s.setState(SubmitState{Phase: PhaseError, Message: err.Error()})
		return Evaluation{}, err
	}

	if err := s.cache.UpsertEvaluation(ctx, eval); err != nil {
		// Cache write failures must not fail the submission.
		s.log.Warn("cache write failed", zap.Int64("id", eval.ID), zap.Error(err))
	}

	s.setState(SubmitState{Phase: PhaseSuccess, Evaluation: eval})
	return eval, nil
}

// Evaluation fetches one record, network first, falling back to the cache
// when the backend is unreachable.
func (s *Service) Evaluation(ctx context.Context, id int64) (Evaluation, error) {
	resp, err := s.backend.Evaluation(ctx, id)
	if err != nil {
		if cached, cerr := s.cache.EvaluationByID(ctx, id); cerr == nil {
			return cached, nil
		}
		return Evaluation{}, err
	}
	eval, err := evaluationFromDTO(resp)
	if err != nil {
		return Evaluation{}, err
	}
	if cerr := s.cache.UpsertEvaluation(ctx, eval); cerr != nil {
		s.log.Warn("cache write failed", zap.Int64("id", eval.ID), zap.Error(cerr))
	}
	return eval, nil
}

func evaluationFromDTO(r api.EvaluationResponse) (Evaluation, error) {
	risk, err := ParseRiskLevel(r.RiskLevel)
	if err != nil {
		return Evaluation{}, err
	}
	plan := ""
	if r.MitigationPlan != nil {
		plan = *r.MitigationPlan
	}
	return Evaluation{
		ID:             r.ID,
		PilotName:      r.PilotName,
		HealthScore:    r.HealthScore,
		WeatherScore:   r.WeatherScore,
		AircraftScore:  r.AircraftScore,
		MissionScore:   r.MissionScore,
		RiskLevel:      risk,
		TotalScore:     r.TotalScore,
		Timestamp:      r.Timestamp,
		MitigationPlan: plan,
	}, nil
}

func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
