package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/grantdoc/internal/models"
	"github.com/good-yellow-bee/grantdoc/internal/storage"
)

func TestReadSubmission(t *testing.T) {
	body := `{"_id":"abc","unique_id":"TIET-7","status":"submitted","project-title":"Solar"}`

	sub, err := readSubmission("-", strings.NewReader(body))
	if err != nil {
		t.Fatalf("read from stdin: %v", err)
	}
	if sub.UniqueID != "TIET-7" {
		t.Errorf("unique id = %q", sub.UniqueID)
	}

	path := filepath.Join(t.TempDir(), "app.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	sub, err = readSubmission(path, nil)
	if err != nil {
		t.Fatalf("read from file: %v", err)
	}
	if !sub.IsSubmitted() {
		t.Error("expected submitted status")
	}

	if _, err := readSubmission("-", strings.NewReader("{")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := readSubmission(filepath.Join(t.TempDir(), "none.json"), nil); err == nil {
		t.Error("expected open error")
	}
}

func TestFilterStatus(t *testing.T) {
	subs := []*models.Submission{
		{UniqueID: "a", Status: "Submitted"},
		{UniqueID: "b", Status: "draft"},
		{UniqueID: "c", Status: "submitted"},
	}

	if got := filterStatus(subs, ""); len(got) != 3 {
		t.Fatalf("empty status should keep all, got %d", len(got))
	}
	got := filterStatus(subs, "SUBMITTED")
	if len(got) != 2 || got[0].UniqueID != "a" || got[1].UniqueID != "c" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if subs[1].UniqueID != "b" {
		t.Fatal("input slice was modified")
	}
}

func TestPrintSubmissions(t *testing.T) {
	var buf bytes.Buffer
	if err := printSubmissions(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No submissions found.") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	subs := []*models.Submission{{UniqueID: "TIET-7", Status: "submitted"}}
	if err := printSubmissions(&buf, subs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "TIET-7") || !strings.Contains(out, "Total: 1 submission(s)") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestShorten(t *testing.T) {
	if got := shorten("short", 10); got != "short" {
		t.Errorf("shorten = %q", got)
	}
	if got := shorten("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("shorten = %q", got)
	}
}

func TestPruneLoop(t *testing.T) {
	store, err := openAudit(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open audit: %v", err)
	}
	defer store.Close()
	repo := store.Generations()

	ctx := context.Background()
	old := &models.GenerationRecord{
		ID: "old", UniqueID: "a", Source: models.SourceCLI, Format: "pdf",
		Status: models.GenerationSuccess, CreatedAt: time.Now().Add(-48 * time.Hour).UTC(),
	}
	fresh := &models.GenerationRecord{
		ID: "fresh", UniqueID: "b", Source: models.SourceCLI, Format: "pdf",
		Status: models.GenerationSuccess, CreatedAt: time.Now().UTC(),
	}
	for _, rec := range []*models.GenerationRecord{old, fresh} {
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		pruneLoop(loopCtx, repo, 24*time.Hour, time.Hour, zap.NewNop())
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := repo.GetByID(ctx, "old")
		if err == storage.ErrNotFound {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("old record was not pruned")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if _, err := repo.GetByID(ctx, "fresh"); err != nil {
		t.Fatalf("fresh record should remain: %v", err)
	}
}
