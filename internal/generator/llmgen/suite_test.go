package llmgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"loom/internal/learning"
	"loom/internal/services/llm"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		var payload struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Errorf("unexpected message layout: %+v", payload.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		response := map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"content": content},
				"finish_reason": "stop",
			}},
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func newTestSuite(t *testing.T, server *httptest.Server) *Suite {
	t.Helper()
	client := llm.NewClient(llm.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	}, llm.WithRetryMaxAttempts(1))
	suite, err := New(client)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return suite
}

func testProfile() learning.LearnerProfile {
	return learning.LearnerProfile{
		Name:           "Ada",
		Subject:        "Go programming",
		LearningStyle:  "visual",
		KnowledgeLevel: 6, // out of range on purpose
	}
}

func TestAnalyzeProfileDecodesAndClamps(t *testing.T) {
	server := completionServer(t, `{
        "learning_objectives": ["Understand goroutines", "Use channels"],
        "recommended_difficulty": 9,
        "focus_areas": ["concurrency"],
        "learning_strategy": "diagram-first walkthroughs",
        "estimated_timeline": "4 weeks"
    }`)
	defer server.Close()

	analysis, err := newTestSuite(t, server).AnalyzeProfile(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("AnalyzeProfile failed: %v", err)
	}
	if len(analysis.Objectives) != 2 {
		t.Errorf("objectives = %v, want 2 entries", analysis.Objectives)
	}
	if analysis.RecommendedDifficulty != 5 {
		t.Errorf("RecommendedDifficulty = %d, want clamped 5", analysis.RecommendedDifficulty)
	}
}

func TestAnalyzeProfileRejectsEmptyObjectives(t *testing.T) {
	server := completionServer(t, `{"learning_objectives": [], "recommended_difficulty": 2}`)
	defer server.Close()

	if _, err := newTestSuite(t, server).AnalyzeProfile(context.Background(), testProfile()); err == nil {
		t.Fatal("AnalyzeProfile accepted a completion without objectives")
	}
}

func TestAnalyzeProfileStripsCodeFences(t *testing.T) {
	server := completionServer(t, "```json\n{\"learning_objectives\": [\"x\"], \"recommended_difficulty\": 3}\n```")
	defer server.Close()

	analysis, err := newTestSuite(t, server).AnalyzeProfile(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("AnalyzeProfile failed on fenced JSON: %v", err)
	}
	if analysis.RecommendedDifficulty != 3 {
		t.Errorf("RecommendedDifficulty = %d, want 3", analysis.RecommendedDifficulty)
	}
}

func TestPlanPathFillsMissingIDs(t *testing.T) {
	server := completionServer(t, `{
        "path_name": "Go Path",
        "resources": [
            {"title": "Intro", "type": "lesson", "topic": "basics", "difficulty": 2, "duration_minutes": 20},
            {"id": "custom", "title": "Channels", "type": "tutorial", "topic": "concurrency", "difficulty": 3, "duration_minutes": 30}
        ]
    }`)
	defer server.Close()

	suite := newTestSuite(t, server)
	plan, err := suite.PlanPath(context.Background(), testProfile(), &learning.ProfileAnalysis{
		Objectives:            []string{"x"},
		RecommendedDifficulty: 2,
	})
	if err != nil {
		t.Fatalf("PlanPath failed: %v", err)
	}
	if plan.PathID == "" {
		t.Error("missing path id not filled")
	}
	if plan.Resources[0].ID == "" {
		t.Error("missing resource id not filled")
	}
	if plan.Resources[1].ID != "custom" {
		t.Errorf("resource id overwritten: %q", plan.Resources[1].ID)
	}
}

func TestPlanPathRejectsEmptyResourceList(t *testing.T) {
	server := completionServer(t, `{"path_name": "empty", "resources": []}`)
	defer server.Close()

	suite := newTestSuite(t, server)
	if _, err := suite.PlanPath(context.Background(), testProfile(), &learning.ProfileAnalysis{Objectives: []string{"x"}}); err == nil {
		t.Fatal("PlanPath accepted an empty resource list")
	}
}

func TestGenerateContentBindsResource(t *testing.T) {
	server := completionServer(t, `{
        "title": "",
        "content": "Long-form lesson body.",
        "summary": "Short summary.",
        "key_concepts": ["goroutines"],
        "difficulty_level": 2
    }`)
	defer server.Close()

	resource := learning.Resource{ID: "res-1", Title: "Goroutines", Type: "lesson", Topic: "concurrency", Difficulty: 2}
	record, err := newTestSuite(t, server).GenerateContent(context.Background(), testProfile(), resource)
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if record.ResourceID != "res-1" {
		t.Errorf("ResourceID = %q, want res-1", record.ResourceID)
	}
	if record.Title != "Goroutines" {
		t.Errorf("empty title not backfilled: %q", record.Title)
	}
	if record.GeneratedBy != "llmgen" {
		t.Errorf("GeneratedBy = %q", record.GeneratedBy)
	}
}

func TestGenerateContentRejectsEmptyBody(t *testing.T) {
	server := completionServer(t, `{"title": "x", "content": "   "}`)
	defer server.Close()

	resource := learning.Resource{ID: "res-1", Title: "Goroutines", Type: "lesson"}
	if _, err := newTestSuite(t, server).GenerateContent(context.Background(), testProfile(), resource); err == nil {
		t.Fatal("GenerateContent accepted empty content body")
	}
}

func TestGenerateAssessmentsValidatesItems(t *testing.T) {
	server := completionServer(t, `[
        {"question": "Q1?", "options": ["a", "b", "c", "d"], "correct_answer": "a", "question_type": "knowledge"},
        {"id": "keep-me", "question": "Q2?", "options": ["a", "b"], "correct_answer": "b", "question_type": "application"}
    ]`)
	defer server.Close()

	content := learning.ContentRecord{ResourceID: "res-1", Title: "Goroutines", Body: "body", Difficulty: 2}
	items, err := newTestSuite(t, server).GenerateAssessments(context.Background(), testProfile(), content)
	if err != nil {
		t.Fatalf("GenerateAssessments failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("item count = %d, want 2", len(items))
	}
	if items[0].ID == "" || items[0].ResourceID != "res-1" {
		t.Errorf("item[0] not normalized: %+v", items[0])
	}
	if items[1].ID != "keep-me" {
		t.Errorf("item[1].ID = %q, want keep-me", items[1].ID)
	}
}

func TestGenerateAssessmentsRejectsMalformedPayload(t *testing.T) {
	server := completionServer(t, `not json at all`)
	defer server.Close()

	content := learning.ContentRecord{ResourceID: "res-1", Title: "Goroutines", Body: "body"}
	if _, err := newTestSuite(t, server).GenerateAssessments(context.Background(), testProfile(), content); err == nil {
		t.Fatal("GenerateAssessments accepted a malformed completion")
	}
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New accepted nil client")
	}
}
