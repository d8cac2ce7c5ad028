package session

import "strings"

// Stage identifies one named unit of work in the fixed pipeline sequence.
type Stage string

const (
	StageProfileAnalysis      Stage = "profile_analysis"
	StagePathPlanning         Stage = "path_planning"
	StageContentGeneration    Stage = "content_generation"
	StageAssessmentGeneration Stage = "assessment_generation"
	StageOrchestration        Stage = "orchestration"
)

var stageOrder = []Stage{
	StageProfileAnalysis,
	StagePathPlanning,
	StageContentGeneration,
	StageAssessmentGeneration,
	StageOrchestration,
}

// Progress percentages reported to status queries. Purely informational; the
// engine never consults these.
var stageProgress = map[Stage]int{
	StageProfileAnalysis:      20,
	StagePathPlanning:         40,
	StageContentGeneration:    70,
	StageAssessmentGeneration: 90,
	StageOrchestration:        100,
}

// Stages returns the ordered pipeline sequence.
func Stages() []Stage {
	cp := make([]Stage, len(stageOrder))
	copy(cp, stageOrder)
	return cp
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	for _, stage := range stageOrder {
		if stage == normalized {
			return stage, true
		}
	}
	return "", false
}

// Next returns the stage following s in pipeline order. The second return is
// false when s is the final stage or unknown.
func (s Stage) Next() (Stage, bool) {
	for i, stage := range stageOrder {
		if stage == s && i+1 < len(stageOrder) {
			return stageOrder[i+1], true
		}
	}
	return "", false
}

// Progress returns the static completion percentage associated with s.
func (s Stage) Progress() int {
	return stageProgress[s]
}

// Label returns a human-readable form of the stage name.
func (s Stage) Label() string {
	parts := strings.Split(string(s), "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
