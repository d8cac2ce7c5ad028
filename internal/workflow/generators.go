package workflow

import (
	"context"
	"errors"

	"loom/internal/learning"
)

// ProfileAnalyzer produces learning objectives and a difficulty recommendation
// from a learner profile.
type ProfileAnalyzer interface {
	AnalyzeProfile(ctx context.Context, profile learning.LearnerProfile) (*learning.ProfileAnalysis, error)
}

// PathPlanner turns a profile and its analysis into an ordered resource plan.
type PathPlanner interface {
	PlanPath(ctx context.Context, profile learning.LearnerProfile, analysis *learning.ProfileAnalysis) (*learning.PathPlan, error)
}

// ContentGenerator realizes one planned resource as learning content.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, profile learning.LearnerProfile, resource learning.Resource) (*learning.ContentRecord, error)
}

// AssessmentGenerator writes quiz questions for one content record.
type AssessmentGenerator interface {
	GenerateAssessments(ctx context.Context, profile learning.LearnerProfile, content learning.ContentRecord) ([]learning.AssessmentItem, error)
}

// Orchestrator assembles the final learning package once all upstream
// outputs are present. It sees only the outputs, never engine bookkeeping.
type Orchestrator interface {
	AssemblePackage(ctx context.Context, inputs learning.PackageInputs) (*learning.Package, error)
}

// Generators bundles the five stage generators the engine dispatches to.
type Generators struct {
	Analyzer     ProfileAnalyzer
	Planner      PathPlanner
	Content      ContentGenerator
	Assessment   AssessmentGenerator
	Orchestrator Orchestrator
}

// Validate reports the first missing generator.
func (g Generators) Validate() error {
	switch {
	case g.Analyzer == nil:
		return errors.New("workflow: profile analyzer is required")
	case g.Planner == nil:
		return errors.New("workflow: path planner is required")
	case g.Content == nil:
		return errors.New("workflow: content generator is required")
	case g.Assessment == nil:
		return errors.New("workflow: assessment generator is required")
	case g.Orchestrator == nil:
		return errors.New("workflow: orchestrator is required")
	}
	return nil
}
