package batch_test

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phrasecut/internal/align"
	"phrasecut/internal/batch"
	"phrasecut/internal/config"
	"phrasecut/internal/manifest"
	"phrasecut/internal/media"
	"phrasecut/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.AudioDir = filepath.Join(base, "audio")
	cfg.Paths.AlignmentDir = filepath.Join(base, "alignments")
	cfg.Paths.ClipsDir = filepath.Join(base, "clips")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ManifestPath = filepath.Join(base, "manifest.db")
	cfg.Batch.Workers = 2
	for _, dir := range []string{cfg.Paths.AudioDir, cfg.Paths.AlignmentDir, cfg.Paths.ClipsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return &cfg
}

func mustOpenStore(t *testing.T, cfg *config.Config) *manifest.Store {
	t.Helper()
	store, err := manifest.Open(cfg.Paths.ManifestPath)
	if err != nil {
		t.Fatalf("Open manifest: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func writeTestWAV(t *testing.T, cfg *config.Config, recording string, seconds float64) {
	t.Helper()
	const rate = 16000
	samples := make([]int, int(seconds*rate))
	for i := range samples {
		samples[i] = 1000
	}
	path := filepath.Join(cfg.Paths.AudioDir, recording+".wav")
	if err := media.WriteWAV(path, samples, rate, 1, 16); err != nil {
		t.Fatalf("write test wav: %v", err)
	}
}

func writeList(t *testing.T, rows ...string) string {
	t.Helper()
	content := "file,phrase,translation,occurrence\n" + strings.Join(rows, "\n") + "\n"
	path := filepath.Join(t.TempDir(), "phrases.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write phrase list: %v", err)
	}
	return path
}

type stubProvider struct {
	words map[string][]align.Word
}

func (p stubProvider) Load(_ context.Context, recording string) ([]align.Word, error) {
	words, ok := p.words[recording]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "align", "load", recording, nil)
	}
	return words, nil
}

func lessonWords() []align.Word {
	return []align.Word{
		{Text: "Bonjour", Start: 0.2, End: 0.5},
		{Text: "je", Start: 0.6, End: 0.7},
		{Text: "voudrais", Start: 0.8, End: 1.2},
		{Text: "un", Start: 1.3, End: 1.4},
		{Text: "café", Start: 1.5, End: 1.9},
		{Text: "merci", Start: 2.1, End: 2.5},
	}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-6
}

func TestRunResolvesAndExtracts(t *testing.T) {
	cfg := testConfig(t)
	store := mustOpenStore(t, cfg)
	writeTestWAV(t, cfg, "lesson01", 3)

	orch := batch.New(cfg, store, nil)
	orch.WithProvider(stubProvider{words: map[string][]align.Word{"lesson01": lessonWords()}})

	listPath := writeList(t, "lesson01,je voudrais un café,I would like a coffee,")
	summary, err := orch.Run(context.Background(), listPath)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 1 || summary.Resolved != 1 {
		t.Fatalf("summary = %+v, want 1 resolved of 1", summary)
	}

	entries, err := store.EntriesByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("EntriesByRun: %v", err)
	}
	entry := entries[0]
	if entry.Status != manifest.StatusResolved {
		t.Fatalf("status = %q, want resolved (%s)", entry.Status, entry.ErrorMessage)
	}
	if entry.Method != "exact" {
		t.Errorf("method = %q, want exact", entry.Method)
	}
	if !approx(entry.ClipStart, 0.52) || !approx(entry.ClipEnd, 1.98) {
		t.Errorf("span = [%v, %v], want [0.52, 1.98]", entry.ClipStart, entry.ClipEnd)
	}
	if entry.Translation != "I would like a coffee" {
		t.Errorf("translation = %q", entry.Translation)
	}

	wantClip := filepath.Join(cfg.Paths.ClipsDir, "lesson01", "je_voudrais_un_cafe.wav")
	if entry.ClipPath != wantClip {
		t.Errorf("clip path = %q, want %q", entry.ClipPath, wantClip)
	}
	clip, err := media.LoadWAV("clip", entry.ClipPath)
	if err != nil {
		t.Fatalf("load clip: %v", err)
	}
	if got, want := clip.Duration, 1.98-0.52; math.Abs(got-want) > 0.01 {
		t.Errorf("clip duration = %v, want ~%v", got, want)
	}
}

func TestRunIsolatesCorruptAlignment(t *testing.T) {
	cfg := testConfig(t)
	store := mustOpenStore(t, cfg)
	writeTestWAV(t, cfg, "lesson01", 3)
	writeTestWAV(t, cfg, "lesson02", 3)

	overlapping := []align.Word{
		{Text: "bonjour", Start: 0.5, End: 1.0},
		{Text: "merci", Start: 0.8, End: 1.2},
	}
	orch := batch.New(cfg, store, nil)
	orch.WithProvider(stubProvider{words: map[string][]align.Word{
		"lesson01": lessonWords(),
		"lesson02": overlapping,
	}})

	listPath := writeList(t,
		"lesson01,merci,thanks,",
		"lesson02,bonjour,hello,",
		"lesson02,merci,thanks,",
	)
	summary, err := orch.Run(context.Background(), listPath)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Resolved != 1 || summary.Failed != 2 {
		t.Fatalf("summary = %+v, want 1 resolved and 2 failed", summary)
	}

	entries, err := store.EntriesByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("EntriesByRun: %v", err)
	}
	for _, entry := range entries {
		switch entry.Recording {
		case "lesson01":
			if entry.Status != manifest.StatusResolved {
				t.Errorf("lesson01 status = %q, want resolved", entry.Status)
			}
		case "lesson02":
			if entry.Status != manifest.StatusFailed {
				t.Errorf("lesson02 status = %q, want failed", entry.Status)
			}
			if entry.FailureReason != "alignment_corrupt" {
				t.Errorf("lesson02 reason = %q, want alignment_corrupt", entry.FailureReason)
			}
		}
	}
}

func TestRunAmbiguityAndHints(t *testing.T) {
	cfg := testConfig(t)
	store := mustOpenStore(t, cfg)
	writeTestWAV(t, cfg, "lesson03", 3)

	words := []align.Word{
		{Text: "bonjour", Start: 0.2, End: 0.5},
		{Text: "merci", Start: 1.0, End: 1.5},
		{Text: "bonjour", Start: 2.0, End: 2.3},
	}
	orch := batch.New(cfg, store, nil)
	orch.WithProvider(stubProvider{words: map[string][]align.Word{"lesson03": words}})

	listPath := writeList(t,
		"lesson03,bonjour,hello,",
		"lesson03,bonjour,hello,2",
		"lesson03,bonjour,hello,3",
	)
	summary, err := orch.Run(context.Background(), listPath)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Ambiguous != 1 || summary.Resolved != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	entries, err := store.EntriesByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("EntriesByRun: %v", err)
	}

	unhinted := entries[0]
	if unhinted.Status != manifest.StatusAmbiguous {
		t.Fatalf("unhinted status = %q, want ambiguous", unhinted.Status)
	}
	var candidates []manifest.Candidate
	if err := json.Unmarshal([]byte(unhinted.CandidatesJSON), &candidates); err != nil {
		t.Fatalf("unmarshal candidates: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if unhinted.ClipPath != "" {
		t.Errorf("ambiguous entry has clip path %q", unhinted.ClipPath)
	}

	hinted := entries[1]
	if hinted.Status != manifest.StatusResolved {
		t.Fatalf("hinted status = %q (%s), want resolved", hinted.Status, hinted.ErrorMessage)
	}
	if !approx(hinted.ClipStart, 1.92) || !approx(hinted.ClipEnd, 2.38) {
		t.Errorf("hinted span = [%v, %v], want [1.92, 2.38]", hinted.ClipStart, hinted.ClipEnd)
	}

	outOfRange := entries[2]
	if outOfRange.Status != manifest.StatusFailed {
		t.Fatalf("out-of-range status = %q, want failed", outOfRange.Status)
	}
	if outOfRange.FailureReason != "occurrence_out_of_range" {
		t.Errorf("out-of-range reason = %q", outOfRange.FailureReason)
	}
}

func TestRunRecordsNotFoundAndInvalidRows(t *testing.T) {
	cfg := testConfig(t)
	store := mustOpenStore(t, cfg)
	writeTestWAV(t, cfg, "lesson01", 3)

	orch := batch.New(cfg, store, nil)
	orch.WithProvider(stubProvider{words: map[string][]align.Word{"lesson01": lessonWords()}})

	listPath := writeList(t,
		"lesson01,xyzzy,nothing,",
		"lesson01,,missing phrase,",
	)
	summary, err := orch.Run(context.Background(), listPath)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.NotFound != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 not_found and 1 failed", summary)
	}

	entries, err := store.EntriesByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("EntriesByRun: %v", err)
	}
	for _, entry := range entries {
		if entry.Status == manifest.StatusFailed && entry.FailureReason != "invalid_request" {
			t.Errorf("failed reason = %q, want invalid_request", entry.FailureReason)
		}
	}
}

func TestRunMissingAudioFailsGroup(t *testing.T) {
	cfg := testConfig(t)
	store := mustOpenStore(t, cfg)

	orch := batch.New(cfg, store, nil)
	orch.WithProvider(stubProvider{words: map[string][]align.Word{"lesson01": lessonWords()}})

	listPath := writeList(t, "lesson01,merci,thanks,")
	summary, err := orch.Run(context.Background(), listPath)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 failed", summary)
	}
	entries, err := store.EntriesByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("EntriesByRun: %v", err)
	}
	if entries[0].FailureReason != "not_found" {
		t.Errorf("reason = %q, want not_found", entries[0].FailureReason)
	}
}

func TestRunCancelledLeavesPending(t *testing.T) {
	cfg := testConfig(t)
	cfg.Batch.Workers = 1
	store := mustOpenStore(t, cfg)
	writeTestWAV(t, cfg, "lesson01", 3)

	orch := batch.New(cfg, store, nil)
	orch.WithProvider(stubProvider{words: map[string][]align.Word{"lesson01": lessonWords()}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	listPath := writeList(t,
		"lesson01,merci,thanks,",
		"lesson01,bonjour,hello,",
	)
	summary, err := orch.Run(ctx, listPath)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Pending != 2 {
		t.Fatalf("summary = %+v, want 2 pending after cancellation", summary)
	}
}

// cancellingProvider cancels the run as its first group starts loading, so
// the group is already in flight when cancellation lands.
type cancellingProvider struct {
	inner  stubProvider
	cancel context.CancelFunc
}

func (p cancellingProvider) Load(ctx context.Context, recording string) ([]align.Word, error) {
	p.cancel()
	return p.inner.Load(ctx, recording)
}

func TestRunCancelledMidGroupStillRecordsOutcome(t *testing.T) {
	cfg := testConfig(t)
	cfg.Batch.Workers = 1
	store := mustOpenStore(t, cfg)
	writeTestWAV(t, cfg, "lesson01", 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := batch.New(cfg, store, nil)
	orch.WithProvider(cancellingProvider{
		inner:  stubProvider{words: map[string][]align.Word{"lesson01": lessonWords()}},
		cancel: cancel,
	})

	summary, err := orch.Run(ctx, writeList(t, "lesson01,merci,thanks,"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Resolved != 1 {
		t.Fatalf("summary = %+v, want the in-flight group's outcome recorded", summary)
	}

	entries, err := store.EntriesByRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("EntriesByRun: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != manifest.StatusResolved {
		t.Fatalf("entries = %+v, want one resolved entry", entries)
	}
}

func TestRunUnreadableListFailsFast(t *testing.T) {
	cfg := testConfig(t)
	store := mustOpenStore(t, cfg)

	orch := batch.New(cfg, store, nil)
	if _, err := orch.Run(context.Background(), filepath.Join(cfg.Paths.AudioDir, "absent.csv")); err == nil {
		t.Fatal("expected error for unreadable phrase list")
	}
}
