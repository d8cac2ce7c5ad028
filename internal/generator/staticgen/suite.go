package staticgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"loom/internal/learning"
)

// Suite implements every stage generator with deterministic templates.
type Suite struct {
	Orchestrator
}

// New returns a ready-to-use deterministic generator suite.
func New() *Suite {
	return &Suite{}
}

// AnalyzeProfile derives objectives and a difficulty recommendation directly
// from the profile fields.
func (*Suite) AnalyzeProfile(_ context.Context, profile learning.LearnerProfile) (*learning.ProfileAnalysis, error) {
	subject := profile.Subject
	if subject == "" {
		subject = "the subject"
	}

	objectives := []string{
		fmt.Sprintf("Understand the fundamentals of %s", subject),
		fmt.Sprintf("Apply core %s concepts to practical problems", subject),
		fmt.Sprintf("Build confidence through progressive %s exercises", subject),
	}

	focus := append([]string(nil), profile.WeakAreas...)
	if len(focus) == 0 {
		focus = []string{"fundamentals", "practical application"}
	}
	for _, area := range profile.WeakAreas {
		objectives = append(objectives, fmt.Sprintf("Strengthen understanding of %s", area))
	}

	difficulty := profile.KnowledgeLevel
	if difficulty < 1 {
		difficulty = 1
	}
	if difficulty > 5 {
		difficulty = 5
	}

	return &learning.ProfileAnalysis{
		Objectives:            objectives,
		RecommendedDifficulty: difficulty,
		FocusAreas:            focus,
		Strategy:              strategyForStyle(profile.LearningStyle, subject),
		EstimatedTimeline:     fmt.Sprintf("%d weeks", 2+len(focus)),
	}, nil
}

func strategyForStyle(style, subject string) string {
	switch style {
	case "auditory":
		return fmt.Sprintf("Work through %s with narrated walkthroughs and discussion prompts, summarizing each unit aloud.", subject)
	case "reading":
		return fmt.Sprintf("Study %s through structured reading with written summaries after each unit.", subject)
	case "kinesthetic":
		return fmt.Sprintf("Learn %s by building small projects and completing hands-on exercises in every unit.", subject)
	default:
		return fmt.Sprintf("Progress through %s with diagrams and worked examples, reviewing visual summaries between units.", subject)
	}
}

// PlanPath lays out a fixed five-resource progression: introduction, core
// units over the focus areas, practice, and a final assessment.
func (*Suite) PlanPath(_ context.Context, profile learning.LearnerProfile, analysis *learning.ProfileAnalysis) (*learning.PathPlan, error) {
	subject := profile.Subject
	if subject == "" {
		subject = "the subject"
	}
	difficulty := analysis.RecommendedDifficulty

	focus := analysis.FocusAreas
	if len(focus) == 0 {
		focus = []string{"core concepts", "applied techniques"}
	}
	if len(focus) > 3 {
		focus = focus[:3]
	}

	resources := []learning.Resource{{
		ID:              "res-intro",
		Title:           fmt.Sprintf("Introduction to %s", subject),
		Type:            "lesson",
		Topic:           subject,
		Difficulty:      difficulty,
		DurationMinutes: 20,
		Objectives:      firstN(analysis.Objectives, 2),
		Description:     fmt.Sprintf("Orientation to %s: terminology, scope, and what the path covers.", subject),
	}}
	for i, area := range focus {
		resources = append(resources, learning.Resource{
			ID:              fmt.Sprintf("res-core-%d", i+1),
			Title:           fmt.Sprintf("%s: %s", subject, titleCase(area)),
			Type:            "tutorial",
			Topic:           area,
			Difficulty:      difficulty,
			DurationMinutes: 30,
			Objectives:      firstN(analysis.Objectives, 2),
			Description:     fmt.Sprintf("Guided tutorial on %s within %s.", area, subject),
		})
	}
	resources = append(resources, learning.Resource{
		ID:              "res-practice",
		Title:           fmt.Sprintf("%s Practice Session", subject),
		Type:            "practice",
		Topic:           subject,
		Difficulty:      difficulty,
		DurationMinutes: 40,
		Objectives:      analysis.Objectives,
		Description:     fmt.Sprintf("Cumulative exercises covering the %s units so far.", subject),
	})

	plan := &learning.PathPlan{
		PathID:        uuid.NewString(),
		Name:          fmt.Sprintf("%s Learning Path for %s", subject, profile.Name),
		TotalDuration: analysis.EstimatedTimeline,
		Resources:     resources,
		Milestones: []learning.Milestone{
			{Name: "Fundamentals checkpoint", AfterResource: resources[len(focus)].ID, AssessmentType: "quiz"},
			{Name: "Path completion review", AfterResource: "res-practice", AssessmentType: "quiz"},
		},
	}
	return plan, nil
}

// GenerateContent renders templated lesson content for one planned resource.
func (*Suite) GenerateContent(_ context.Context, profile learning.LearnerProfile, resource learning.Resource) (*learning.ContentRecord, error) {
	var body strings.Builder
	fmt.Fprintf(&body, "# %s\n\n", resource.Title)
	fmt.Fprintf(&body, "## Overview\n\nThis %s covers %s at difficulty level %d of 5. ", resource.Type, resource.Topic, resource.Difficulty)
	fmt.Fprintf(&body, "It is written for a %s learner and takes about %d minutes.\n\n", profile.LearningStyle, resource.DurationMinutes)
	body.WriteString("## Key Ideas\n\n")
	for i, objective := range resource.Objectives {
		fmt.Fprintf(&body, "%d. %s\n", i+1, objective)
	}
	if len(resource.Objectives) == 0 {
		fmt.Fprintf(&body, "1. Understand the essentials of %s\n", resource.Topic)
	}
	fmt.Fprintf(&body, "\n## Worked Example\n\nA step-by-step walkthrough applying %s in a realistic setting, ", resource.Topic)
	body.WriteString(styleAdaptation(profile.LearningStyle))
	fmt.Fprintf(&body, "\n\n## Try It Yourself\n\nReproduce the example, then vary one input and predict the outcome before checking it. ")
	fmt.Fprintf(&body, "Note anything about %s that surprised you for review.\n", resource.Topic)

	return &learning.ContentRecord{
		ResourceID:  resource.ID,
		Title:       resource.Title,
		Type:        resource.Type,
		Body:        body.String(),
		Summary:     fmt.Sprintf("A %s on %s covering its core ideas with a worked example and practice task.", resource.Type, resource.Topic),
		Objectives:  resource.Objectives,
		KeyConcepts: []string{resource.Topic, "worked examples", "self-check practice"},
		Difficulty:  resource.Difficulty,
		GeneratedBy: "staticgen",
	}, nil
}

func styleAdaptation(style string) string {
	switch style {
	case "auditory":
		return "narrated so each step can be read aloud and discussed."
	case "reading":
		return "presented as annotated text with definitions inline."
	case "kinesthetic":
		return "broken into actions you perform yourself at each step."
	default:
		return "illustrated with a diagram at each step."
	}
}

// GenerateAssessments writes three questions per content record, one each at
// the knowledge, comprehension, and application levels.
func (*Suite) GenerateAssessments(_ context.Context, _ learning.LearnerProfile, content learning.ContentRecord) ([]learning.AssessmentItem, error) {
	topic := content.Title
	kinds := []struct {
		questionType string
		question     string
		correct      string
		wrong        [3]string
	}{
		{
			questionType: "knowledge",
			question:     fmt.Sprintf("Which statement best describes the main focus of %q?", topic),
			correct:      fmt.Sprintf("It develops the core ideas covered in %s", topic),
			wrong:        [3]string{"It is unrelated to the learning path", "It only repeats the introduction", "It covers an advanced elective topic"},
		},
		{
			questionType: "comprehension",
			question:     fmt.Sprintf("Why does %q include a worked example?", topic),
			correct:      "To show the concepts applied step by step before independent practice",
			wrong:        [3]string{"To replace the need for practice", "To make the unit longer", "To test memorization only"},
		},
		{
			questionType: "application",
			question:     fmt.Sprintf("After finishing %q, what is the recommended next step?", topic),
			correct:      "Reproduce the example, vary an input, and predict the outcome",
			wrong:        [3]string{"Skip ahead to the final assessment", "Reread the overview only", "Wait for the next path to be generated"},
		},
	}

	items := make([]learning.AssessmentItem, 0, len(kinds))
	for i, kind := range kinds {
		items = append(items, learning.AssessmentItem{
			ID:            fmt.Sprintf("%s-q%d", content.ResourceID, i+1),
			ResourceID:    content.ResourceID,
			Question:      kind.question,
			Options:       []string{kind.correct, kind.wrong[0], kind.wrong[1], kind.wrong[2]},
			CorrectAnswer: kind.correct,
			Explanation:   "This follows directly from the structure of the unit.",
			Topic:         topic,
			Difficulty:    content.Difficulty,
			QuestionType:  kind.questionType,
		})
	}
	return items, nil
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}

func titleCase(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
