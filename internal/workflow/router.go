package workflow

import "loom/internal/session"

// Verdict is a routing decision for the stage that just executed.
type Verdict int

const (
	// VerdictContinue advances the run to the next stage.
	VerdictContinue Verdict = iota
	// VerdictRetry re-executes the current stage.
	VerdictRetry
	// VerdictEnd stops the run.
	VerdictEnd
)

func (v Verdict) String() string {
	switch v {
	case VerdictContinue:
		return "continue"
	case VerdictRetry:
		return "retry"
	case VerdictEnd:
		return "end"
	default:
		return "unknown"
	}
}

// DefaultRetryCeiling bounds per-stage retries when no override is configured.
const DefaultRetryCeiling = 3

// Router decides, after a stage execution, whether the run advances, retries,
// or ends. It reads the session state and the stage error; it never mutates
// either, so a decision can be replayed from a checkpoint.
type Router struct {
	// RetryCeiling is the number of retries allowed per stage before the run
	// is failed. Non-positive values fall back to DefaultRetryCeiling.
	RetryCeiling int
}

func (r Router) ceiling() int {
	if r.RetryCeiling > 0 {
		return r.RetryCeiling
	}
	return DefaultRetryCeiling
}

// Decide applies the routing rules in priority order:
//
//  1. the stage reported an error and retries remain: retry
//  2. the stage reported an error and the ceiling is reached: end
//  3. the stage's required output is present: continue
//  4. no error but the output is still missing: retry, bounded by the same
//     ceiling so a silently unproductive stage cannot loop forever
func (r Router) Decide(state *session.State, stageErr error) Verdict {
	ceiling := r.ceiling()
	if stageErr != nil {
		if state.RetryCount < ceiling {
			return VerdictRetry
		}
		return VerdictEnd
	}
	if state.HasOutput(state.CurrentStage) {
		return VerdictContinue
	}
	if state.RetryCount < ceiling {
		return VerdictRetry
	}
	return VerdictEnd
}
