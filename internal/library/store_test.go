package library_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"loom/internal/learning"
	"loom/internal/library"
)

func openStore(t *testing.T) *library.Store {
	t.Helper()
	store, err := library.Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestProfileRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	profile := &learning.LearnerProfile{
		ID:             "learner-1",
		Name:           "Ada",
		Subject:        "Go programming",
		LearningStyle:  "visual",
		KnowledgeLevel: 2,
		WeakAreas:      []string{"concurrency"},
	}
	if err := store.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	loaded, err := store.GetProfile(ctx, "learner-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if loaded.Name != "Ada" || loaded.Subject != "Go programming" {
		t.Errorf("loaded profile mismatch: %+v", loaded)
	}
	if len(loaded.WeakAreas) != 1 || loaded.WeakAreas[0] != "concurrency" {
		t.Errorf("weak areas not preserved: %v", loaded.WeakAreas)
	}
}

func TestProfileUpsert(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	profile := &learning.LearnerProfile{ID: "learner-1", Name: "Ada", Subject: "Go"}
	if err := store.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("first SaveProfile failed: %v", err)
	}
	profile.KnowledgeLevel = 4
	if err := store.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("second SaveProfile failed: %v", err)
	}

	loaded, err := store.GetProfile(ctx, "learner-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if loaded.KnowledgeLevel != 4 {
		t.Errorf("KnowledgeLevel = %d, want 4", loaded.KnowledgeLevel)
	}

	profiles, err := store.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}
	if len(profiles) != 1 {
		t.Errorf("profile count = %d, want 1 after upsert", len(profiles))
	}
}

func TestGetProfileNotFound(t *testing.T) {
	store := openStore(t)
	if _, err := store.GetProfile(context.Background(), "nope"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveProfileRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.SaveProfile(context.Background(), &learning.LearnerProfile{Name: "Ada"}); err == nil {
		t.Fatal("SaveProfile accepted a profile without an id")
	}
}

func testPackage(id, learnerID string) *learning.Package {
	return &learning.Package{
		PackageID:  id,
		LearnerID:  learnerID,
		CreatedAt:  time.Now().UTC(),
		Objectives: []string{"Understand goroutines"},
		Resources:  []learning.Resource{{ID: "res-1", Title: "Intro", Type: "lesson"}},
		Contents:   []learning.ContentRecord{{ResourceID: "res-1", Title: "Intro", Body: "body"}},
		Assessments: []learning.AssessmentItem{{
			ID: "res-1-q1", ResourceID: "res-1", Question: "?",
			Options: []string{"a", "b"}, CorrectAnswer: "a",
		}},
		Milestones: []learning.ProgressMilestone{{ResourceID: "res-1", Title: "Intro", RequiredScore: 70, AttemptsAllowed: 3}},
	}
}

func TestPackageRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.SavePackage(ctx, testPackage("pkg-1", "learner-1")); err != nil {
		t.Fatalf("SavePackage failed: %v", err)
	}

	loaded, err := store.GetPackage(ctx, "pkg-1")
	if err != nil {
		t.Fatalf("GetPackage failed: %v", err)
	}
	if loaded.LearnerID != "learner-1" {
		t.Errorf("LearnerID = %q, want learner-1", loaded.LearnerID)
	}
	if len(loaded.Milestones) != 1 || loaded.Milestones[0].RequiredScore != 70 {
		t.Errorf("milestones not preserved: %+v", loaded.Milestones)
	}
}

func TestListPackagesFiltersByLearner(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, pkg := range []*learning.Package{
		testPackage("pkg-1", "learner-1"),
		testPackage("pkg-2", "learner-1"),
		testPackage("pkg-3", "learner-2"),
	} {
		if err := store.SavePackage(ctx, pkg); err != nil {
			t.Fatalf("SavePackage %s failed: %v", pkg.PackageID, err)
		}
	}

	all, err := store.ListPackages(ctx, "")
	if err != nil {
		t.Fatalf("ListPackages failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all package count = %d, want 3", len(all))
	}

	mine, err := store.ListPackages(ctx, "learner-1")
	if err != nil {
		t.Fatalf("ListPackages filtered failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("learner-1 package count = %d, want 2", len(mine))
	}

	if _, err := store.GetPackage(ctx, "pkg-404"); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("missing package err = %v, want ErrNotFound", err)
	}
}
