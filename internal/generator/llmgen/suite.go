package llmgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"loom/internal/generator/staticgen"
	"loom/internal/learning"
	"loom/internal/logging"
	"loom/internal/services/llm"
)

const systemPrompt = "You are a learning-path generator. Respond with valid JSON only, no prose and no code fences."

// Suite implements the stage generators against a chat-completion client.
type Suite struct {
	staticgen.Orchestrator

	client *llm.Client
	logger *slog.Logger
}

// Option customizes a Suite.
type Option func(*Suite)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Suite) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds an LLM-backed generator suite.
func New(client *llm.Client, opts ...Option) (*Suite, error) {
	if client == nil {
		return nil, errors.New("llmgen: client is required")
	}
	suite := &Suite{client: client, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(suite)
	}
	return suite, nil
}

// AnalyzeProfile asks the model for objectives, focus areas, and a difficulty
// recommendation tailored to the profile.
func (s *Suite) AnalyzeProfile(ctx context.Context, profile learning.LearnerProfile) (*learning.ProfileAnalysis, error) {
	var prompt strings.Builder
	prompt.WriteString("Analyze this learner profile and provide detailed recommendations.\n\nProfile:\n")
	fmt.Fprintf(&prompt, "- Name: %s\n", profile.Name)
	fmt.Fprintf(&prompt, "- Learning Style: %s\n", profile.LearningStyle)
	fmt.Fprintf(&prompt, "- Subject: %s\n", profile.Subject)
	fmt.Fprintf(&prompt, "- Knowledge Level: %d/5\n", profile.KnowledgeLevel)
	fmt.Fprintf(&prompt, "- Weak Areas: %s\n", joinOrNone(profile.WeakAreas))
	prompt.WriteString(`
Respond in this JSON format:
{
  "learning_objectives": ["objective1", "objective2", "objective3"],
  "recommended_difficulty": 1,
  "focus_areas": ["area1", "area2"],
  "learning_strategy": "detailed strategy description",
  "estimated_timeline": "timeline in weeks"
}

Base the recommendations on the learning style, current knowledge level, identified weak areas, and subject-specific requirements.`)

	content, err := s.client.CompleteJSON(ctx, systemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("profile analysis completion: %w", err)
	}
	var analysis learning.ProfileAnalysis
	if err := llm.DecodeJSON(content, &analysis); err != nil {
		return nil, fmt.Errorf("decode profile analysis: %w", err)
	}
	if len(analysis.Objectives) == 0 {
		return nil, errors.New("profile analysis has no learning objectives")
	}
	if analysis.RecommendedDifficulty < 1 {
		analysis.RecommendedDifficulty = 1
	}
	if analysis.RecommendedDifficulty > 5 {
		analysis.RecommendedDifficulty = 5
	}
	s.logger.Debug("profile analysis generated",
		logging.Int("objectives", len(analysis.Objectives)),
		logging.Int("difficulty", analysis.RecommendedDifficulty),
	)
	return &analysis, nil
}

// PlanPath asks the model for a progressive resource plan built on the
// analysis.
func (s *Suite) PlanPath(ctx context.Context, profile learning.LearnerProfile, analysis *learning.ProfileAnalysis) (*learning.PathPlan, error) {
	var prompt strings.Builder
	prompt.WriteString("Create a comprehensive learning path based on this analysis.\n\nLearner Profile:\n")
	fmt.Fprintf(&prompt, "- Subject: %s\n", profile.Subject)
	fmt.Fprintf(&prompt, "- Learning Style: %s\n", profile.LearningStyle)
	fmt.Fprintf(&prompt, "- Knowledge Level: %d/5\n", profile.KnowledgeLevel)
	fmt.Fprintf(&prompt, "- Weak Areas: %s\n", joinOrNone(profile.WeakAreas))
	prompt.WriteString("\nAnalysis Results:\n")
	fmt.Fprintf(&prompt, "- Learning Objectives: %s\n", joinOrNone(analysis.Objectives))
	fmt.Fprintf(&prompt, "- Focus Areas: %s\n", joinOrNone(analysis.FocusAreas))
	fmt.Fprintf(&prompt, "- Recommended Difficulty: %d\n", analysis.RecommendedDifficulty)
	fmt.Fprintf(&prompt, "- Learning Strategy: %s\n", analysis.Strategy)
	prompt.WriteString(`
Create a learning path with 5-7 progressive learning resources in this JSON format:
{
  "path_name": "descriptive name",
  "total_duration": "estimated weeks",
  "resources": [
    {
      "id": "unique_id",
      "title": "resource title",
      "type": "lesson|tutorial|practice|assessment",
      "topic": "specific topic",
      "difficulty": 1,
      "duration_minutes": 30,
      "learning_objectives": ["obj1", "obj2"],
      "description": "detailed description"
    }
  ],
  "milestones": [
    {
      "milestone": "milestone name",
      "after_resource": "resource_id",
      "assessment_type": "quiz|project|discussion"
    }
  ]
}`)

	content, err := s.client.CompleteJSON(ctx, systemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("path planning completion: %w", err)
	}
	var plan learning.PathPlan
	if err := llm.DecodeJSON(content, &plan); err != nil {
		return nil, fmt.Errorf("decode path plan: %w", err)
	}
	if len(plan.Resources) == 0 {
		return nil, errors.New("path plan has no resources")
	}
	if plan.PathID == "" {
		plan.PathID = uuid.NewString()
	}
	for i := range plan.Resources {
		if plan.Resources[i].ID == "" {
			plan.Resources[i].ID = fmt.Sprintf("res-%d", i+1)
		}
	}
	s.logger.Debug("path plan generated",
		logging.String("path_id", plan.PathID),
		logging.Int("resources", len(plan.Resources)),
	)
	return &plan, nil
}

// GenerateContent asks the model to realize one planned resource as full
// learning content.
func (s *Suite) GenerateContent(ctx context.Context, profile learning.LearnerProfile, resource learning.Resource) (*learning.ContentRecord, error) {
	var prompt strings.Builder
	prompt.WriteString("Create comprehensive educational content for this learning resource.\n\nTask Details:\n")
	fmt.Fprintf(&prompt, "- Title: %s\n", resource.Title)
	fmt.Fprintf(&prompt, "- Topic: %s\n", resource.Topic)
	fmt.Fprintf(&prompt, "- Content Type: %s\n", resource.Type)
	fmt.Fprintf(&prompt, "- Learning Style: %s\n", profile.LearningStyle)
	fmt.Fprintf(&prompt, "- Difficulty Level: %d/5\n", resource.Difficulty)
	fmt.Fprintf(&prompt, "- Duration: %d minutes\n", resource.DurationMinutes)
	fmt.Fprintf(&prompt, "- Objectives: %s\n", joinOrNone(resource.Objectives))
	fmt.Fprintf(&prompt, `
Generate content in this JSON format:
{
  "title": "%s",
  "type": "%s",
  "content": "comprehensive educational content (800-1200 words)",
  "summary": "concise summary (2-3 sentences)",
  "learning_objectives": ["obj1", "obj2"],
  "key_concepts": ["concept1", "concept2", "concept3"],
  "difficulty_level": %d
}

Make the content practical, progressive, and specifically optimized for %s learners.`,
		resource.Title, resource.Type, resource.Difficulty, profile.LearningStyle)

	content, err := s.client.CompleteJSON(ctx, systemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("content completion for %s: %w", resource.ID, err)
	}
	var record learning.ContentRecord
	if err := llm.DecodeJSON(content, &record); err != nil {
		return nil, fmt.Errorf("decode content for %s: %w", resource.ID, err)
	}
	if strings.TrimSpace(record.Body) == "" {
		return nil, fmt.Errorf("content for %s is empty", resource.ID)
	}
	record.ResourceID = resource.ID
	if record.Title == "" {
		record.Title = resource.Title
	}
	if record.Type == "" {
		record.Type = resource.Type
	}
	record.GeneratedBy = "llmgen"
	return &record, nil
}

// GenerateAssessments asks the model for quiz questions on one content record.
func (s *Suite) GenerateAssessments(ctx context.Context, _ learning.LearnerProfile, content learning.ContentRecord) ([]learning.AssessmentItem, error) {
	var prompt strings.Builder
	prompt.WriteString("Create 3-5 quiz questions based on this learning content.\n\nContent:\n")
	fmt.Fprintf(&prompt, "- Title: %s\n", content.Title)
	fmt.Fprintf(&prompt, "- Key Concepts: %s\n", joinOrNone(content.KeyConcepts))
	fmt.Fprintf(&prompt, "- Difficulty: %d/5\n", content.Difficulty)
	fmt.Fprintf(&prompt, "- Learning Objectives: %s\n", joinOrNone(content.Objectives))
	fmt.Fprintf(&prompt, "\nContent Summary: %s\n", content.Summary)
	fmt.Fprintf(&prompt, `
Generate questions in this JSON format:
[
  {
    "id": "unique_id",
    "question": "clear, specific question",
    "options": ["correct answer", "wrong option 1", "wrong option 2", "wrong option 3"],
    "correct_answer": "correct answer",
    "explanation": "why this answer is correct",
    "topic": "%s",
    "difficulty_level": %d,
    "question_type": "knowledge|comprehension|application|analysis"
  }
]

Use clear, unambiguous questions with plausible distractors, a mix of question types, and alignment with the learning objectives.`,
		content.Title, content.Difficulty)

	payload, err := s.client.CompleteJSON(ctx, systemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("assessment completion for %s: %w", content.ResourceID, err)
	}
	var items []learning.AssessmentItem
	if err := llm.DecodeJSON(payload, &items); err != nil {
		return nil, fmt.Errorf("decode assessments for %s: %w", content.ResourceID, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no assessment questions for %s", content.ResourceID)
	}
	for i := range items {
		items[i].ResourceID = content.ResourceID
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("%s-q%d", content.ResourceID, i+1)
		}
		if len(items[i].Options) == 0 || items[i].CorrectAnswer == "" {
			return nil, fmt.Errorf("assessment %s for %s is missing options or answer", items[i].ID, content.ResourceID)
		}
	}
	return items, nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none specified"
	}
	return strings.Join(values, ", ")
}
