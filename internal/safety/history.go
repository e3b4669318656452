package safety

import (
	"context"

	"go.uber.org/zap"
)

// Origin tags where a history emission came from.
type Origin int

const (
	OriginCache Origin = iota
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "cache"
}

// HistoryUpdate is one emission of the read-through history stream.
// Evaluations is the full list known at that point, newest first. An empty
// slice with OriginCache means the cache had nothing yet.
type HistoryUpdate struct {
	Evaluations []Evaluation
	Origin      Origin
}

// History streams the evaluation history for a pilot. The cached list is
// emitted first so the caller always has something to show, then a
// best-effort network refresh is merged into the cache by id and emitted.
// A network failure is swallowed; the cached emission stands. The channel
// is closed once delivery finishes or ctx is cancelled.
func (s *Service) History(ctx context.Context, pilotName string) <-chan HistoryUpdate {
	return s.stream(ctx, pilotName)
}

// AllEvaluations streams the unfiltered history with the same read-through
// contract as History.
func (s *Service) AllEvaluations(ctx context.Context) <-chan HistoryUpdate {
	return s.stream(ctx, "")
}

func (s *Service) stream(ctx context.Context, pilotName string) <-chan HistoryUpdate {
	ch := make(chan HistoryUpdate, 2)
	go func() {
		defer close(ch)

		cached, err := s.readCached(ctx, pilotName)
		if err != nil {
			// A broken cache is a cache miss, nothing more.
			s.log.Warn("history cache read failed", zap.Error(err))
			cached = nil
		}
		if cached == nil {
			cached = []Evaluation{}
		}
		if !deliver(ctx, ch, HistoryUpdate{Evaluations: cached, Origin: OriginCache}) {
			return
		}

		fetched, err := s.fetchRemote(ctx, pilotName)
		if err != nil {
			s.log.Debug("history refresh skipped", zap.Error(err))
			return
		}

		if err := s.cache.UpsertEvaluations(ctx, fetched); err != nil {
			s.log.Warn("history cache write failed", zap.Error(err))
		}

		merged, err := s.readCached(ctx, pilotName)
		if err != nil {
			// Fall back to the fetched list; it is at least current.
			merged = fetched
		}
		deliver(ctx, ch, HistoryUpdate{Evaluations: merged, Origin: OriginRemote})
	}()
	return ch
}

func (s *Service) readCached(ctx context.Context, pilotName string) ([]Evaluation, error) {
	if pilotName == "" {
		return s.cache.AllEvaluations(ctx)
	}
	return s.cache.EvaluationsByPilot(ctx, pilotName)
}

func (s *Service) fetchRemote(ctx context.Context, pilotName string) ([]Evaluation, error) {
	resp, err := s.backend.History(ctx, pilotName)
	if err != nil {
		return nil, err
	}
	evals := make([]Evaluation, 0, len(resp))
	for _, r := range resp {
		e, err := evaluationFromDTO(r)
		if err != nil {
			// One malformed record must not sink the whole refresh.
			s.log.Warn("skipping malformed history record", zap.Int64("id", r.ID), zap.Error(err))
			continue
		}
		evals = append(evals, e)
	}
	return evals, nil
}

func deliver(ctx context.Context, ch chan<- HistoryUpdate, u HistoryUpdate) bool {
	select {
	case ch <- u:
		return true
	case <-ctx.Done():
		return false
	}
}
