package learning

import (
	"strings"
	"time"
)

// LearnerProfile describes the learner a pipeline run produces content for.
type LearnerProfile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Subject        string   `json:"subject"`
	LearningStyle  string   `json:"learning_style"`
	KnowledgeLevel int      `json:"knowledge_level"`
	WeakAreas      []string `json:"weak_areas,omitempty"`
}

// Normalize trims free-form fields and clamps the knowledge level into 1..5.
func (p *LearnerProfile) Normalize() {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Subject = strings.TrimSpace(p.Subject)
	p.LearningStyle = strings.ToLower(strings.TrimSpace(p.LearningStyle))
	if p.LearningStyle == "" {
		p.LearningStyle = "visual"
	}
	if p.KnowledgeLevel < 1 {
		p.KnowledgeLevel = 1
	}
	if p.KnowledgeLevel > 5 {
		p.KnowledgeLevel = 5
	}
}

// ProfileAnalysis is the profile-analysis stage output: what the learner
// should work toward and how hard the material should be.
type ProfileAnalysis struct {
	Objectives            []string `json:"learning_objectives"`
	RecommendedDifficulty int      `json:"recommended_difficulty"`
	FocusAreas            []string `json:"focus_areas,omitempty"`
	Strategy              string   `json:"learning_strategy,omitempty"`
	EstimatedTimeline     string   `json:"estimated_timeline,omitempty"`
}

// Resource is a single planned unit of the learning path.
type Resource struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Type            string   `json:"type"` // lesson, tutorial, practice, assessment
	Topic           string   `json:"topic"`
	Difficulty      int      `json:"difficulty"`
	DurationMinutes int      `json:"duration_minutes"`
	Objectives      []string `json:"learning_objectives,omitempty"`
	Description     string   `json:"description,omitempty"`
}

// Milestone marks an assessment point placed after a resource.
type Milestone struct {
	Name           string `json:"milestone"`
	AfterResource  string `json:"after_resource"`
	AssessmentType string `json:"assessment_type"`
}

// PathPlan is the path-planning stage output: an ordered resource list plus
// assessment milestones.
type PathPlan struct {
	PathID        string      `json:"path_id"`
	Name          string      `json:"path_name"`
	TotalDuration string      `json:"total_duration,omitempty"`
	Resources     []Resource  `json:"resources"`
	Milestones    []Milestone `json:"milestones,omitempty"`
}

// ContentRecord is one generated piece of learning content, keyed back to the
// planned resource it realizes.
type ContentRecord struct {
	ResourceID  string   `json:"resource_id"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Body        string   `json:"content"`
	Summary     string   `json:"summary,omitempty"`
	Objectives  []string `json:"learning_objectives,omitempty"`
	KeyConcepts []string `json:"key_concepts,omitempty"`
	Difficulty  int      `json:"difficulty_level"`
	GeneratedBy string   `json:"generated_by,omitempty"`
}

// AssessmentItem is a single quiz question tied to a content record.
type AssessmentItem struct {
	ID            string   `json:"id"`
	ResourceID    string   `json:"resource_id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
	Topic         string   `json:"topic,omitempty"`
	Difficulty    int      `json:"difficulty_level"`
	QuestionType  string   `json:"question_type,omitempty"` // knowledge, comprehension, application, analysis
}

// ProgressMilestone is a per-resource tracking entry in the delivered package.
type ProgressMilestone struct {
	ResourceID      string `json:"resource_id"`
	Title           string `json:"title"`
	RequiredScore   int    `json:"required_score"`
	AttemptsAllowed int    `json:"attempts_allowed"`
}

// Package is the final orchestration output delivered to the caller and
// persisted by the library store.
type Package struct {
	PackageID   string              `json:"package_id"`
	LearnerID   string              `json:"learner_id"`
	CreatedAt   time.Time           `json:"created_at"`
	Objectives  []string            `json:"learning_objectives"`
	Resources   []Resource          `json:"resources"`
	Contents    []ContentRecord     `json:"contents"`
	Assessments []AssessmentItem    `json:"assessments"`
	Milestones  []ProgressMilestone `json:"progress_milestones"`

	LearningStyle string `json:"learning_style"`
	Difficulty    int    `json:"difficulty_level"`
}

// PackageInputs bundles the upstream stage outputs package assembly works
// from. Orchestrators receive this view rather than the full workflow record,
// so they cannot touch run-control bookkeeping.
type PackageInputs struct {
	LearnerID   string
	Profile     *LearnerProfile
	Analysis    *ProfileAnalysis
	Plan        *PathPlan
	Contents    []ContentRecord
	Assessments []AssessmentItem
}
