package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loom/internal/checkpoint"
	"loom/internal/learning"
	"loom/internal/logging"
	"loom/internal/services"
	"loom/internal/session"
)

// Result summarizes a finished run. Run and Resume always return a Result,
// even when the run failed; Err carries the fatal error when one occurred.
type Result struct {
	SessionID  string
	Completed  bool
	FinalStage session.Stage
	Package    *learning.Package
	Errors     []string
	State      *session.State
	Err        error
}

// Engine executes the stage sequence for one session at a time. A single
// Engine is safe for concurrent runs because all per-run state lives in the
// session.State passed through the loop.
type Engine struct {
	nodes        map[session.Stage]node
	store        checkpoint.Store
	router       Router
	logger       *slog.Logger
	metrics      *Metrics
	maxReentries int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRetryCeiling overrides the per-stage retry bound.
func WithRetryCeiling(ceiling int) Option {
	return func(e *Engine) {
		if ceiling > 0 {
			e.router.RetryCeiling = ceiling
		}
	}
}

// WithMetrics attaches engine collectors.
func WithMetrics(metrics *Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// New builds an Engine around the given generators and checkpoint store.
func New(gens Generators, store checkpoint.Store, opts ...Option) (*Engine, error) {
	if err := gens.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("workflow: checkpoint store is required")
	}
	engine := &Engine{
		nodes: map[session.Stage]node{
			session.StageProfileAnalysis:      analysisNode{gen: gens.Analyzer},
			session.StagePathPlanning:         planningNode{gen: gens.Planner},
			session.StageContentGeneration:    contentNode{gen: gens.Content},
			session.StageAssessmentGeneration: assessmentNode{gen: gens.Assessment},
			session.StageOrchestration:        orchestrationNode{gen: gens.Orchestrator},
		},
		store:        store,
		router:       Router{RetryCeiling: DefaultRetryCeiling},
		logger:       logging.NewNop(),
		maxReentries: 1,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Run starts a fresh session for the profile and drives it to a terminal
// state.
func (e *Engine) Run(ctx context.Context, profile learning.LearnerProfile) Result {
	state := session.New(profile)
	return e.drive(ctx, state)
}

// Resume reloads a checkpointed session and continues it. A session that is
// already terminal is returned as-is.
func (e *Engine) Resume(ctx context.Context, sessionID string) Result {
	state, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return Result{
			SessionID: sessionID,
			Err:       services.Wrap(services.ErrPersistence, "", "load checkpoint", sessionID, err),
		}
	}
	if state.Terminal() {
		return e.result(state, nil)
	}
	// Checkpoints are external input: a hand-edited row or a snapshot written
	// by a different stage set can carry a stage name the engine cannot
	// dispatch. Reject it here instead of panicking inside the drive loop.
	stage, ok := session.ParseStage(string(state.CurrentStage))
	if !ok {
		return e.result(state, services.Wrap(services.ErrValidation, string(state.CurrentStage), "resume session", "unknown stage in checkpoint", nil))
	}
	state.CurrentStage = stage
	return e.drive(ctx, state)
}

func (e *Engine) drive(ctx context.Context, state *session.State) Result {
	ctx = services.WithSessionID(ctx, state.SessionID)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String(logging.FieldStage, string(state.CurrentStage)),
		logging.String("learner_id", state.LearnerID),
	)

	reentries := 0
	for state.ShouldContinue {
		// Cancellation is honored only between stages, so a stage execution
		// is never abandoned with half-written outputs.
		if err := ctx.Err(); err != nil {
			state.RecordError(state.CurrentStage, fmt.Errorf("cancelled: %w", err))
			e.stop(state, "cancelled")
			if saveErr := e.save(ctx, state); saveErr != nil {
				return e.result(state, saveErr)
			}
			logger.Warn("run cancelled", logging.String(logging.FieldStage, string(state.CurrentStage)))
			return e.result(state, nil)
		}

		stage := state.CurrentStage
		stageCtx := services.WithStage(ctx, string(stage))
		stageLogger := logging.WithContext(stageCtx, e.logger)

		if stage == session.StageOrchestration {
			if missing, ok := state.FirstMissingOutput(); ok {
				if reentries >= e.maxReentries {
					state.Recordf(stage, "upstream output for %s still missing after re-entry", missing)
					e.stop(state, "end_workflow")
					if err := e.save(ctx, state); err != nil {
						return e.result(state, err)
					}
					return e.result(state, nil)
				}
				reentries++
				state.Recordf(stage, "missing output for %s, re-entering pipeline", missing)
				state.CurrentStage = missing
				state.RetryCount = 0
				state.NextAction = "retry_" + string(missing)
				state.Touch()
				if err := e.save(ctx, state); err != nil {
					return e.result(state, err)
				}
				stageLogger.Warn("re-entering pipeline",
					logging.String(logging.FieldEventType, "global_reentry"),
					logging.String("missing_stage", string(missing)),
				)
				continue
			}
		}

		execStart := time.Now()
		execErr := e.nodes[stage].run(stageCtx, state)
		elapsed := time.Since(execStart)
		if execErr != nil {
			state.RecordError(stage, execErr)
			e.metrics.observeStage(stage, "error", elapsed.Seconds())
			stageLogger.Error("stage failed",
				logging.String(logging.FieldEventType, "stage_error"),
				logging.Int("retry_count", state.RetryCount),
				logging.Duration("stage_duration", elapsed),
				logging.Error(execErr),
			)
		} else {
			e.metrics.observeStage(stage, "ok", elapsed.Seconds())
			stageLogger.Info("stage executed",
				logging.String(logging.FieldEventType, "stage_complete"),
				logging.Duration("stage_duration", elapsed),
			)
		}

		// Checkpoint before routing: the stored snapshot always reflects the
		// latest execution, including its errors.
		if err := e.save(stageCtx, state); err != nil {
			return e.result(state, err)
		}

		verdict := e.router.Decide(state, execErr)
		switch verdict {
		case VerdictRetry:
			state.RetryCount++
			state.NextAction = "retry_" + string(stage)
			state.Touch()
			e.metrics.observeRetry(stage)
			stageLogger.Warn("retrying stage",
				logging.String(logging.FieldEventType, "stage_retry"),
				logging.Int("retry_count", state.RetryCount),
			)
		case VerdictEnd:
			e.stop(state, "end_workflow")
			stageLogger.Error("run failed",
				logging.String(logging.FieldEventType, "run_failed"),
				logging.Int("error_count", len(state.Errors)),
			)
		case VerdictContinue:
			next, ok := stage.Next()
			if ok {
				state.CurrentStage = next
				state.RetryCount = 0
				state.NextAction = "start_" + string(next)
				state.Touch()
			} else {
				e.stop(state, "workflow_complete")
				stageLogger.Info("run completed",
					logging.String(logging.FieldEventType, "run_complete"),
				)
			}
		}

		if err := e.save(stageCtx, state); err != nil {
			return e.result(state, err)
		}
	}

	result := e.result(state, nil)
	e.metrics.observeRunEnd(result.Completed)
	return result
}

func (e *Engine) stop(state *session.State, action string) {
	state.ShouldContinue = false
	state.NextAction = action
	state.Touch()
}

// save checkpoints the state. A persistence failure is fatal for the run:
// retrying stages without durable state risks duplicating side effects.
func (e *Engine) save(ctx context.Context, state *session.State) error {
	if err := e.store.Save(ctx, state); err != nil {
		wrapped := services.Wrap(services.ErrPersistence, string(state.CurrentStage), "save checkpoint", state.SessionID, err)
		state.RecordError(state.CurrentStage, wrapped)
		state.ShouldContinue = false
		state.NextAction = "end_workflow"
		logging.WithContext(ctx, e.logger).Error("checkpoint save failed",
			logging.String(logging.FieldEventType, "persistence_failure"),
			logging.Error(err),
		)
		return wrapped
	}
	return nil
}

func (e *Engine) result(state *session.State, fatal error) Result {
	return Result{
		SessionID:  state.SessionID,
		Completed:  state.Completed(),
		FinalStage: state.CurrentStage,
		Package:    state.Package,
		Errors:     state.ErrorStrings(),
		State:      state,
		Err:        fatal,
	}
}
