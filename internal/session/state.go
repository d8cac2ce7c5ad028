package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"loom/internal/learning"
)

// StageError records a single failure observed during a run. Entries are
// append-only and never rewritten, so the full history survives retries.
type StageError struct {
	Stage      Stage     `json:"stage"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// State is the shared workflow record for one pipeline run.
//
// Control fields (CurrentStage, RetryCount, ShouldContinue, NextAction) are
// mutated only by the engine and router; stage generators never see them.
// RetryCount belongs to the active stage and resets to zero whenever the run
// enters a new stage.
type State struct {
	SessionID string                   `json:"session_id"`
	LearnerID string                   `json:"learner_id"`
	Profile   *learning.LearnerProfile `json:"profile,omitempty"`

	Analysis    *learning.ProfileAnalysis `json:"analysis,omitempty"`
	Plan        *learning.PathPlan        `json:"plan,omitempty"`
	Contents    []learning.ContentRecord  `json:"contents,omitempty"`
	Assessments []learning.AssessmentItem `json:"assessments,omitempty"`
	Package     *learning.Package         `json:"package,omitempty"`

	Messages []Message    `json:"messages"`
	Errors   []StageError `json:"errors"`

	CurrentStage   Stage  `json:"current_stage"`
	RetryCount     int    `json:"retry_count"`
	ShouldContinue bool   `json:"should_continue"`
	NextAction     string `json:"next_action,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New builds the initial state for a run: fresh session id, empty logs,
// current stage set to the first stage in the sequence.
func New(profile learning.LearnerProfile) *State {
	profile.Normalize()
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	return &State{
		SessionID:      uuid.NewString(),
		LearnerID:      profile.ID,
		Profile:        &profile,
		CurrentStage:   StageProfileAnalysis,
		ShouldContinue: true,
		NextAction:     "start_workflow",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AppendMessage adds an inter-stage message to the log. The log is
// append-only; entries are never reordered or rewritten.
func (s *State) AppendMessage(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	s.Messages = append(s.Messages, msg)
	s.touch()
}

// RecordError appends a failure description for the given stage.
func (s *State) RecordError(stage Stage, err error) {
	if err == nil {
		return
	}
	s.Errors = append(s.Errors, StageError{
		Stage:      stage,
		Message:    err.Error(),
		OccurredAt: time.Now().UTC(),
	})
	s.touch()
}

// Recordf appends a formatted failure description for the given stage.
func (s *State) Recordf(stage Stage, format string, args ...any) {
	s.Errors = append(s.Errors, StageError{
		Stage:      stage,
		Message:    fmt.Sprintf(format, args...),
		OccurredAt: time.Now().UTC(),
	})
	s.touch()
}

// LatestMessage returns the newest message of the given type, scanning the
// log newest-first (last-write-wins lookup).
func (s *State) LatestMessage(kind MessageType) (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Type == kind {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// HasOutput reports whether the required-output predicate for the given stage
// holds on the current state.
func (s *State) HasOutput(stage Stage) bool {
	switch stage {
	case StageProfileAnalysis:
		return s.Analysis != nil &&
			len(s.Analysis.Objectives) > 0 &&
			s.Analysis.RecommendedDifficulty >= 1 &&
			s.Analysis.RecommendedDifficulty <= 5
	case StagePathPlanning:
		return s.Plan != nil && len(s.Plan.Resources) > 0
	case StageContentGeneration:
		if s.Plan == nil || len(s.Plan.Resources) == 0 || len(s.Contents) == 0 {
			return false
		}
		covered := make(map[string]bool, len(s.Contents))
		for _, record := range s.Contents {
			covered[record.ResourceID] = true
		}
		for _, resource := range s.Plan.Resources {
			if !covered[resource.ID] {
				return false
			}
		}
		return true
	case StageAssessmentGeneration:
		if len(s.Contents) == 0 || len(s.Assessments) == 0 {
			return false
		}
		counts := make(map[string]int, len(s.Assessments))
		for _, item := range s.Assessments {
			counts[item.ResourceID]++
		}
		for _, record := range s.Contents {
			if counts[record.ResourceID] == 0 {
				return false
			}
		}
		return true
	case StageOrchestration:
		return s.Package != nil &&
			s.HasOutput(StageProfileAnalysis) &&
			s.HasOutput(StagePathPlanning) &&
			s.HasOutput(StageContentGeneration) &&
			s.HasOutput(StageAssessmentGeneration)
	default:
		return false
	}
}

// FirstMissingOutput walks the pipeline in order and returns the earliest
// stage before orchestration whose output predicate no longer holds.
func (s *State) FirstMissingOutput() (Stage, bool) {
	for _, stage := range stageOrder {
		if stage == StageOrchestration {
			break
		}
		if !s.HasOutput(stage) {
			return stage, true
		}
	}
	return "", false
}

// Terminal reports whether the run has stopped for good.
func (s *State) Terminal() bool {
	return !s.ShouldContinue
}

// Completed reports whether the run finished with a full learning package.
func (s *State) Completed() bool {
	return s.Terminal() && s.Package != nil && s.HasOutput(StageOrchestration)
}

// ErrorStrings flattens the error log for status payloads.
func (s *State) ErrorStrings() []string {
	if len(s.Errors) == 0 {
		return nil
	}
	out := make([]string, len(s.Errors))
	for i, e := range s.Errors {
		out[i] = fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return out
}

func (s *State) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Touch updates the modification timestamp. The engine calls it after control
// field transitions so checkpoints carry a fresh UpdatedAt.
func (s *State) Touch() {
	s.touch()
}
