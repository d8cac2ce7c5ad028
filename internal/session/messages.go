package session

import (
	"time"

	"loom/internal/learning"
)

// MessageType tags the payload carried by an inter-stage message.
type MessageType string

const (
	MessageProfileAnalysisComplete MessageType = "profile_analysis_complete"
	MessagePathPlanComplete        MessageType = "path_plan_complete"
	MessageContentComplete         MessageType = "content_generation_complete"
	MessageAssessmentComplete      MessageType = "assessment_generation_complete"
	MessageWorkflowComplete        MessageType = "workflow_complete"
)

// Message is one entry in the append-only inter-stage log. Exactly one payload
// field is populated, matching Type.
type Message struct {
	Sender    string      `json:"sender"`
	Receiver  string      `json:"receiver"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`

	Analysis   *learning.ProfileAnalysis `json:"analysis,omitempty"`
	Plan       *learning.PathPlan        `json:"plan,omitempty"`
	Content    *ContentSummary           `json:"content,omitempty"`
	Assessment *AssessmentSummary        `json:"assessment,omitempty"`
	Completion *CompletionSummary        `json:"completion,omitempty"`
}

// ContentSummary condenses the content-generation result for downstream stages.
type ContentSummary struct {
	GeneratedCount int      `json:"generated_count"`
	ResourceIDs    []string `json:"resource_ids,omitempty"`
}

// AssessmentSummary condenses the assessment-generation result.
type AssessmentSummary struct {
	QuestionCount int `json:"question_count"`
}

// CompletionSummary is the final message appended when orchestration succeeds.
type CompletionSummary struct {
	PackageID        string    `json:"package_id"`
	TotalResources   int       `json:"total_resources"`
	TotalAssessments int       `json:"total_assessments"`
	CompletedAt      time.Time `json:"completed_at"`
}
