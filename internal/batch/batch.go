package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"phrasecut/internal/align"
	"phrasecut/internal/config"
	"phrasecut/internal/extract"
	"phrasecut/internal/logging"
	"phrasecut/internal/manifest"
	"phrasecut/internal/match"
	"phrasecut/internal/media"
	"phrasecut/internal/phraselist"
	"phrasecut/internal/resolve"
	"phrasecut/internal/services"
	"phrasecut/internal/textnorm"
)

// Orchestrator drives a batch run: it groups phrase requests by recording,
// fans the groups out over a worker pool, and records every outcome in the
// manifest store. Failures stay scoped to their recording; one corrupt
// alignment never takes down sibling groups.
type Orchestrator struct {
	cfg      *config.Config
	store    *manifest.Store
	provider align.Provider
	decoder  *media.Decoder
	logger   *slog.Logger
	foldMode textnorm.FoldMode
}

// New builds an orchestrator wired to the configured alignment directory and
// the ffmpeg decode front door.
func New(cfg *config.Config, store *manifest.Store, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	fold := textnorm.FoldNone
	if cfg.Normalizer.FoldDiacritics {
		fold = textnorm.FoldDiacritics
	}
	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		provider: align.DirProvider{Dir: cfg.Paths.AlignmentDir},
		decoder:  &media.Decoder{FFmpegBinary: "ffmpeg"},
		logger:   logging.NewComponentLogger(logger, "batch"),
		foldMode: fold,
	}
}

// WithProvider replaces the alignment provider (for testing).
func (o *Orchestrator) WithProvider(p align.Provider) {
	if p != nil {
		o.provider = p
	}
}

// WithDecoder replaces the audio decoder (for testing).
func (o *Orchestrator) WithDecoder(d *media.Decoder) {
	if d != nil {
		o.decoder = d
	}
}

// group is the unit of work handed to a worker: every request targeting one
// recording, resolved against a single alignment load and audio decode.
type group struct {
	recording string
	entries   []*manifest.Entry
}

// Run executes one batch over a phrase list and returns the run summary.
// Cancellation is cooperative at group granularity: in-flight recordings
// finish, unstarted ones are skipped and their entries stay pending.
func (o *Orchestrator) Run(ctx context.Context, listPath string) (manifest.Summary, error) {
	requests, invalid, err := phraselist.ReadFile(listPath)
	if err != nil {
		return manifest.Summary{}, err
	}

	runID := manifest.NewRunID()
	// Manifest writes outlive cancellation: a cancelled run still records
	// every enqueued request and every outcome a finishing group produced.
	storeCtx := context.WithoutCancel(ctx)
	o.logger.InfoContext(ctx, "batch started", logging.Args(
		logging.String(logging.FieldRunID, runID),
		logging.Int("requests", len(requests)),
		logging.Int("invalid_rows", len(invalid)),
	)...)

	for _, row := range invalid {
		entry := &manifest.Entry{
			Recording:     row.Recording,
			Phrase:        row.Phrase,
			Line:          row.Line,
			Status:        manifest.StatusFailed,
			FailureReason: "invalid_request",
			ErrorMessage:  row.Reason,
		}
		if _, err := o.store.Add(storeCtx, runID, entry); err != nil {
			return manifest.Summary{}, fmt.Errorf("record invalid row: %w", err)
		}
	}

	groups := make(map[string]*group)
	var order []*group
	for _, req := range requests {
		entry, err := o.store.Add(storeCtx, runID, &manifest.Entry{
			Recording:   req.Recording,
			Phrase:      req.Phrase,
			Translation: req.Translation,
			Occurrence:  req.Occurrence,
			Line:        req.Line,
		})
		if err != nil {
			return manifest.Summary{}, fmt.Errorf("enqueue request: %w", err)
		}
		g := groups[req.Recording]
		if g == nil {
			g = &group{recording: req.Recording}
			groups[req.Recording] = g
			order = append(order, g)
		}
		g.entries = append(g.entries, entry)
	}

	if len(order) > 0 {
		workers := o.cfg.Batch.Workers
		if workers < 1 {
			workers = 1
		}
		if workers > len(order) {
			workers = len(order)
		}

		jobs := make(chan *group)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for g := range jobs {
					if ctx.Err() != nil {
						o.logger.WarnContext(ctx, "run cancelled, recording left pending",
							logging.Args(logging.String(logging.FieldRecording, g.recording))...)
						continue
					}
					o.processGroup(ctx, g)
				}
			}()
		}
		for _, g := range order {
			jobs <- g
		}
		close(jobs)
		wg.Wait()
	}

	summary, err := o.store.Summarize(storeCtx, runID)
	if err != nil {
		return manifest.Summary{}, err
	}
	o.logger.InfoContext(ctx, "batch finished", logging.Args(
		logging.String(logging.FieldRunID, runID),
		logging.Int("total", summary.Total),
		logging.Int("resolved", summary.Resolved),
		logging.Int("ambiguous", summary.Ambiguous),
		logging.Int("not_found", summary.NotFound),
		logging.Int("failed", summary.Failed),
		logging.Int("suspicious", summary.Suspicious),
	)...)
	return summary, nil
}

func (o *Orchestrator) processGroup(ctx context.Context, g *group) {
	logger := o.logger.With(logging.String(logging.FieldRecording, g.recording))

	words, err := o.provider.Load(ctx, g.recording)
	if err != nil {
		o.failGroup(ctx, logger, g, err)
		return
	}
	idx, err := align.NewIndex(g.recording, words, o.foldMode)
	if err != nil {
		o.failGroup(ctx, logger, g, err)
		return
	}
	audioPath, err := FindAudio(o.cfg.Paths.AudioDir, g.recording)
	if err != nil {
		o.failGroup(ctx, logger, g, err)
		return
	}
	rec, err := o.decoder.Decode(ctx, g.recording, audioPath)
	if err != nil {
		o.failGroup(ctx, logger, g, err)
		return
	}

	matchOpts := match.Options{
		FuzzyEnabled:           o.cfg.Matcher.FuzzyEnabled,
		SubstitutionsPerTokens: o.cfg.Matcher.SubstitutionsPerTokens,
		ScaleWithLength:        o.cfg.Matcher.ScaleWithLength,
	}
	resolveOpts := resolve.Options{PaddingSeconds: float64(o.cfg.Resolver.PaddingMS) / 1000}

	type extraction struct {
		entry *manifest.Entry
		span  resolve.Span
		name  string
	}
	var pendingClips []extraction
	names := make(map[string]int)

	for _, entry := range g.entries {
		entry.Status = manifest.StatusMatching
		o.update(ctx, logger, entry)

		tokens := textnorm.Normalize(entry.Phrase, o.foldMode)
		if len(tokens) == 0 {
			entry.SetFailed("invalid_request", "phrase has no matchable tokens")
			o.update(ctx, logger, entry)
			continue
		}

		candidates := match.Match(tokens, idx, matchOpts)
		result, err := resolve.Resolve(candidates, entry.Occurrence, idx, rec.Duration, resolveOpts)
		if err != nil {
			entry.SetFailed(services.ReasonCode(err), services.FailureReason(err))
			o.update(ctx, logger, entry)
			continue
		}

		switch result.Kind {
		case resolve.KindNotFound:
			entry.SetNotFound()
			o.update(ctx, logger, entry)
		case resolve.KindAmbiguous:
			encoded, err := encodeCandidates(result.Candidates)
			if err != nil {
				entry.SetFailed("error", "encode candidates: "+err.Error())
			} else {
				entry.SetAmbiguous(encoded)
			}
			o.update(ctx, logger, entry)
		case resolve.KindResolved:
			pendingClips = append(pendingClips, extraction{
				entry: entry,
				span:  result.Span,
				name:  clipFileName(entry.Phrase, names),
			})
		}
	}

	if len(pendingClips) == 0 {
		return
	}
	clipDir := filepath.Join(o.cfg.Paths.ClipsDir, g.recording)
	if err := os.MkdirAll(clipDir, 0o755); err != nil {
		for _, job := range pendingClips {
			job.entry.SetFailed("clip_write", "create clip directory: "+err.Error())
			o.update(ctx, logger, job.entry)
		}
		return
	}

	var clipWG sync.WaitGroup
	for _, job := range pendingClips {
		clipWG.Add(1)
		go func(entry *manifest.Entry, span resolve.Span, path string) {
			defer clipWG.Done()
			o.extractClip(ctx, logger, rec, entry, span, path)
		}(job.entry, job.span, filepath.Join(clipDir, job.name))
	}
	clipWG.Wait()
}

func (o *Orchestrator) extractClip(ctx context.Context, logger *slog.Logger, rec *media.Recording, entry *manifest.Entry, span resolve.Span, path string) {
	opts := extract.Options{
		FadeSeconds: float64(o.cfg.Extractor.FadeMS) / 1000,
		MinDuration: float64(o.cfg.Extractor.MinClipMS) / 1000,
		MaxDuration: float64(o.cfg.Extractor.MaxClipMS) / 1000,
	}
	clip, err := extract.Extract(rec, span, opts)
	if err != nil {
		entry.SetFailed(services.ReasonCode(err), services.FailureReason(err))
		o.update(ctx, logger, entry)
		return
	}
	if err := media.WriteWAV(path, clip.Samples, clip.SampleRate, clip.Channels, clip.BitDepth); err != nil {
		entry.SetFailed("clip_write", err.Error())
		o.update(ctx, logger, entry)
		return
	}

	entry.SetResolved(string(span.Method), span.Start, span.End, path)
	if clip.Suspicious {
		entry.Suspicious = true
		entry.SuspiciousNote = clip.Flag
	}
	o.update(ctx, logger, entry)

	logger.InfoContext(ctx, "clip written", logging.Args(
		logging.String(logging.FieldPhrase, entry.Phrase),
		logging.String(logging.FieldMethod, string(span.Method)),
		logging.Float64("start", span.Start),
		logging.Float64("end", span.End),
		logging.Bool("suspicious", clip.Suspicious),
	)...)
}

func (o *Orchestrator) failGroup(ctx context.Context, logger *slog.Logger, g *group, err error) {
	logger.ErrorContext(ctx, "recording failed", logging.Args(logging.Error(err))...)
	reason := services.ReasonCode(err)
	message := services.FailureReason(err)
	for _, entry := range g.entries {
		entry.SetFailed(reason, message)
		o.update(ctx, logger, entry)
	}
}

func (o *Orchestrator) update(ctx context.Context, logger *slog.Logger, entry *manifest.Entry) {
	if err := o.store.Update(context.WithoutCancel(ctx), entry); err != nil {
		logger.ErrorContext(ctx, "manifest update failed", logging.Args(
			logging.Error(err),
			logging.String(logging.FieldPhrase, entry.Phrase),
		)...)
	}
}

var audioExtensions = []string{".wav", ".mp3", ".m4a", ".flac", ".ogg"}

// FindAudio locates the source file for a recording reference, which may be
// a bare stem or include an extension.
func FindAudio(dir, recording string) (string, error) {
	if filepath.Ext(recording) != "" {
		path := filepath.Join(dir, recording)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	for _, ext := range audioExtensions {
		path := filepath.Join(dir, recording+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", services.Wrap(services.ErrNotFound, "batch", "locate audio", recording, nil)
}

// clipFileName derives a unique filesystem name for a phrase's clip within
// one recording directory.
func clipFileName(phrase string, names map[string]int) string {
	base := textnorm.ClipName(phrase)
	names[base]++
	if count := names[base]; count > 1 {
		return fmt.Sprintf("%s_%d.wav", base, count)
	}
	return base + ".wav"
}

func encodeCandidates(candidates []match.Candidate) (string, error) {
	out := make([]manifest.Candidate, len(candidates))
	for i, c := range candidates {
		method := string(resolve.MethodFuzzy)
		if c.Exact {
			method = string(resolve.MethodExact)
		}
		out[i] = manifest.Candidate{Start: c.Start, End: c.End, Score: c.Score, Method: method}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
