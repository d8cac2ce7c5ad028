package staticgen

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"loom/internal/learning"
)

const (
	milestoneRequiredScore   = 70
	milestoneAttemptsAllowed = 3
)

// Orchestrator assembles the final learning package from the collected stage
// outputs. Assembly is deterministic, so the same type serves both generator
// suites.
type Orchestrator struct{}

// AssemblePackage validates the upstream outputs and builds the deliverable
// package with per-resource progress milestones.
func (Orchestrator) AssemblePackage(_ context.Context, inputs learning.PackageInputs) (*learning.Package, error) {
	if inputs.Analysis == nil {
		return nil, errors.New("profile analysis missing")
	}
	if inputs.Plan == nil || len(inputs.Plan.Resources) == 0 {
		return nil, errors.New("path plan missing")
	}
	if len(inputs.Contents) == 0 {
		return nil, errors.New("generated content missing")
	}
	if len(inputs.Assessments) == 0 {
		return nil, errors.New("assessments missing")
	}

	milestones := make([]learning.ProgressMilestone, 0, len(inputs.Plan.Resources))
	for _, resource := range inputs.Plan.Resources {
		milestones = append(milestones, learning.ProgressMilestone{
			ResourceID:      resource.ID,
			Title:           resource.Title,
			RequiredScore:   milestoneRequiredScore,
			AttemptsAllowed: milestoneAttemptsAllowed,
		})
	}

	packageID := inputs.Plan.PathID
	if packageID == "" {
		packageID = uuid.NewString()
	}

	pkg := &learning.Package{
		PackageID:   packageID,
		LearnerID:   inputs.LearnerID,
		CreatedAt:   time.Now().UTC(),
		Objectives:  inputs.Analysis.Objectives,
		Resources:   inputs.Plan.Resources,
		Contents:    inputs.Contents,
		Assessments: inputs.Assessments,
		Milestones:  milestones,
		Difficulty:  inputs.Analysis.RecommendedDifficulty,
	}
	if inputs.Profile != nil {
		pkg.LearningStyle = inputs.Profile.LearningStyle
	}
	return pkg, nil
}
