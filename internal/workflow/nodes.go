package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loom/internal/learning"
	"loom/internal/session"
)

// node executes one stage against the shared state. Implementations write
// their stage's outputs and append one completion message on success; on
// failure they leave the state's outputs untouched. Control fields belong to
// the engine.
type node interface {
	stage() session.Stage
	run(ctx context.Context, state *session.State) error
}

type analysisNode struct {
	gen ProfileAnalyzer
}

func (analysisNode) stage() session.Stage { return session.StageProfileAnalysis }

func (n analysisNode) run(ctx context.Context, state *session.State) error {
	if state.Profile == nil {
		return errors.New("learner profile missing from session")
	}
	analysis, err := n.gen.AnalyzeProfile(ctx, *state.Profile)
	if err != nil {
		return fmt.Errorf("analyze profile: %w", err)
	}
	if analysis == nil || len(analysis.Objectives) == 0 {
		return errors.New("analyzer returned no learning objectives")
	}
	state.Analysis = analysis
	state.AppendMessage(session.Message{
		Sender:   string(session.StageProfileAnalysis),
		Receiver: string(session.StagePathPlanning),
		Type:     session.MessageProfileAnalysisComplete,
		Analysis: analysis,
	})
	return nil
}

type planningNode struct {
	gen PathPlanner
}

func (planningNode) stage() session.Stage { return session.StagePathPlanning }

func (n planningNode) run(ctx context.Context, state *session.State) error {
	if state.Profile == nil || state.Analysis == nil {
		return errors.New("profile analysis missing from session")
	}
	plan, err := n.gen.PlanPath(ctx, *state.Profile, state.Analysis)
	if err != nil {
		return fmt.Errorf("plan path: %w", err)
	}
	if plan == nil || len(plan.Resources) == 0 {
		return errors.New("planner returned an empty resource list")
	}
	state.Plan = plan
	state.AppendMessage(session.Message{
		Sender:   string(session.StagePathPlanning),
		Receiver: string(session.StageContentGeneration),
		Type:     session.MessagePathPlanComplete,
		Plan:     plan,
	})
	return nil
}

type contentNode struct {
	gen ContentGenerator
}

func (contentNode) stage() session.Stage { return session.StageContentGeneration }

// run generates content only for resources not yet covered, so a retry after
// a mid-batch failure does not redo finished work. Newly generated records are
// committed to the state only when the whole batch succeeds.
func (n contentNode) run(ctx context.Context, state *session.State) error {
	if state.Profile == nil || state.Plan == nil {
		return errors.New("path plan missing from session")
	}
	covered := make(map[string]bool, len(state.Contents))
	for _, record := range state.Contents {
		covered[record.ResourceID] = true
	}

	var generated []learning.ContentRecord
	for _, resource := range state.Plan.Resources {
		if covered[resource.ID] {
			continue
		}
		record, err := n.gen.GenerateContent(ctx, *state.Profile, resource)
		if err != nil {
			return fmt.Errorf("generate content for %s: %w", resource.ID, err)
		}
		if record == nil || record.Body == "" {
			return fmt.Errorf("empty content for resource %s", resource.ID)
		}
		if record.ResourceID == "" {
			record.ResourceID = resource.ID
		}
		generated = append(generated, *record)
	}

	state.Contents = append(state.Contents, generated...)
	ids := make([]string, 0, len(state.Contents))
	for _, record := range state.Contents {
		ids = append(ids, record.ResourceID)
	}
	state.AppendMessage(session.Message{
		Sender:   string(session.StageContentGeneration),
		Receiver: string(session.StageAssessmentGeneration),
		Type:     session.MessageContentComplete,
		Content: &session.ContentSummary{
			GeneratedCount: len(state.Contents),
			ResourceIDs:    ids,
		},
	})
	return nil
}

type assessmentNode struct {
	gen AssessmentGenerator
}

func (assessmentNode) stage() session.Stage { return session.StageAssessmentGeneration }

func (n assessmentNode) run(ctx context.Context, state *session.State) error {
	if state.Profile == nil || len(state.Contents) == 0 {
		return errors.New("generated content missing from session")
	}
	counts := make(map[string]int, len(state.Assessments))
	for _, item := range state.Assessments {
		counts[item.ResourceID]++
	}

	var generated []learning.AssessmentItem
	for _, record := range state.Contents {
		if counts[record.ResourceID] > 0 {
			continue
		}
		items, err := n.gen.GenerateAssessments(ctx, *state.Profile, record)
		if err != nil {
			return fmt.Errorf("generate assessments for %s: %w", record.ResourceID, err)
		}
		if len(items) == 0 {
			return fmt.Errorf("no assessment questions for resource %s", record.ResourceID)
		}
		for i := range items {
			if items[i].ResourceID == "" {
				items[i].ResourceID = record.ResourceID
			}
		}
		generated = append(generated, items...)
	}

	state.Assessments = append(state.Assessments, generated...)
	state.AppendMessage(session.Message{
		Sender:   string(session.StageAssessmentGeneration),
		Receiver: string(session.StageOrchestration),
		Type:     session.MessageAssessmentComplete,
		Assessment: &session.AssessmentSummary{
			QuestionCount: len(state.Assessments),
		},
	})
	return nil
}

type orchestrationNode struct {
	gen Orchestrator
}

func (orchestrationNode) stage() session.Stage { return session.StageOrchestration }

func (n orchestrationNode) run(ctx context.Context, state *session.State) error {
	pkg, err := n.gen.AssemblePackage(ctx, learning.PackageInputs{
		LearnerID:   state.LearnerID,
		Profile:     state.Profile,
		Analysis:    state.Analysis,
		Plan:        state.Plan,
		Contents:    state.Contents,
		Assessments: state.Assessments,
	})
	if err != nil {
		return fmt.Errorf("assemble package: %w", err)
	}
	if pkg == nil {
		return errors.New("orchestrator returned no package")
	}
	state.Package = pkg
	state.AppendMessage(session.Message{
		Sender:   string(session.StageOrchestration),
		Receiver: "learner",
		Type:     session.MessageWorkflowComplete,
		Completion: &session.CompletionSummary{
			PackageID:        pkg.PackageID,
			TotalResources:   len(pkg.Resources),
			TotalAssessments: len(pkg.Assessments),
			CompletedAt:      time.Now().UTC(),
		},
	})
	return nil
}
