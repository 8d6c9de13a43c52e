package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/meshscreen/internal/pipeline"
)

func testResult() *pipeline.Result {
	return &pipeline.Result{
		RunID: "run-123",
		Assets: []pipeline.Asset{
			{ID: "good", Source: "models/a/good.glb", Status: pipeline.StatusExported},
			{
				ID:      "bad",
				Source:  "models/a/bad.glb",
				Status:  pipeline.StatusInvalid,
				Reasons: []string{"mesh has no faces"},
			},
		},
		Elapsed: 1500 * time.Millisecond,
	}
}

func TestSaveAndReadRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "screening.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	if err := s.SaveRun(time.Now(), testResult()); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	outcomes, err := s.RunOutcomes("run-123")
	if err != nil {
		t.Fatalf("failed to read outcomes: %v", err)
	}

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	// Ordered by asset id.
	if outcomes[0].AssetID != "bad" || outcomes[1].AssetID != "good" {
		t.Errorf("unexpected order: %s, %s", outcomes[0].AssetID, outcomes[1].AssetID)
	}
	if outcomes[0].Status != "invalid" {
		t.Errorf("expected status invalid, got %s", outcomes[0].Status)
	}
	if len(outcomes[0].Reasons) != 1 || outcomes[0].Reasons[0] != "mesh has no faces" {
		t.Errorf("unexpected reasons %v", outcomes[0].Reasons)
	}
	if outcomes[1].Status != "exported" {
		t.Errorf("expected status exported, got %s", outcomes[1].Status)
	}
	if len(outcomes[1].Reasons) != 0 {
		t.Errorf("expected no reasons for exported asset, got %v", outcomes[1].Reasons)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "screening.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.SaveRun(time.Now(), testResult()); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	s.Close()

	// Reopening re-runs migrations against the existing schema.
	s2, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s2.Close()

	outcomes, err := s2.RunOutcomes("run-123")
	if err != nil {
		t.Fatalf("failed to read outcomes after reopen: %v", err)
	}
	if len(outcomes) != 2 {
		t.Errorf("expected 2 outcomes after reopen, got %d", len(outcomes))
	}
}

func TestDuplicateRunIDRejected(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "screening.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	if err := s.SaveRun(time.Now(), testResult()); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	if err := s.SaveRun(time.Now(), testResult()); err == nil {
		t.Error("expected error saving the same run id twice")
	}
}
