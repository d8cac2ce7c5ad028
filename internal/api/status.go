package api

import (
	"context"
	"sort"

	"loom/internal/checkpoint"
	"loom/internal/session"
)

// StatusService answers status queries from checkpointed session state.
type StatusService struct {
	store checkpoint.Store
}

// NewStatusService wraps a checkpoint store.
func NewStatusService(store checkpoint.Store) *StatusService {
	return &StatusService{store: store}
}

// Status reports the current state of one session. The progress percentage is
// the static milestone for the session's current stage.
func (s *StatusService) Status(ctx context.Context, sessionID string) (StatusReport, error) {
	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return StatusReport{}, err
	}
	return reportFromState(state), nil
}

// ListSessions reports every checkpointed session, newest first.
func (s *StatusService) ListSessions(ctx context.Context) ([]StatusReport, error) {
	states, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	reports := make([]StatusReport, 0, len(states))
	for _, state := range states {
		reports = append(reports, reportFromState(state))
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].UpdatedAt.After(reports[j].UpdatedAt)
	})
	return reports, nil
}

func reportFromState(state *session.State) StatusReport {
	return StatusReport{
		SessionID:      state.SessionID,
		LearnerID:      state.LearnerID,
		CurrentStage:   string(state.CurrentStage),
		StageLabel:     state.CurrentStage.Label(),
		Progress:       state.CurrentStage.Progress(),
		RetryCount:     state.RetryCount,
		ShouldContinue: state.ShouldContinue,
		Completed:      state.Completed(),
		NextAction:     state.NextAction,
		Errors:         state.ErrorStrings(),
		CreatedAt:      state.CreatedAt,
		UpdatedAt:      state.UpdatedAt,
	}
}
