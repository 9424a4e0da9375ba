package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/merhi-odg/consumer-credit-xgboost-demo/internal/scoring"
)

func TestNew(t *testing.T) {
	tempDir := t.TempDir()

	store, err := New(tempDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if store.db == nil {
		t.Error("Store database is nil")
	}

	dbPath := filepath.Join(tempDir, "creditmon.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestNew_InvalidPath(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "does", "not", "exist")); err == nil {
		t.Error("Expected error for invalid path, got nil")
	}
}

func TestRecordRunAndRuns(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	scored := []scoring.Scored{
		{ID: "a1", Probability: 0.82, Prediction: 1},
		{ID: "a2", Probability: 0.31, Prediction: 0},
	}
	if err := store.RecordRun("batch-2026-08", scored); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.RecordRun("batch-2026-08", scored); err != nil {
		t.Fatalf("RecordRun (repeat): %v", err)
	}
	if err := store.RecordRun("other-batch", scored[:1]); err != nil {
		t.Fatalf("RecordRun (other): %v", err)
	}

	runs, err := store.Runs("batch-2026-08")
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if len(runs[0].Records) != 2 || runs[0].Records[0].ID != "a1" {
		t.Errorf("run payload wrong: %+v", runs[0])
	}
	if runs[0].BatchID != "batch-2026-08" {
		t.Errorf("BatchID = %q", runs[0].BatchID)
	}

	none, err := store.Runs("missing")
	if err != nil {
		t.Fatalf("Runs(missing): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no runs for unknown batch, got %d", len(none))
	}
}
