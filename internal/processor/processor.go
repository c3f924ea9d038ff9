package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/minutes/internal/extractor"
	"github.com/MikeSquared-Agency/minutes/internal/gdocs"
	"github.com/MikeSquared-Agency/minutes/internal/hermes"
	"github.com/MikeSquared-Agency/minutes/internal/matcher"
	"github.com/MikeSquared-Agency/minutes/internal/store"
	"github.com/MikeSquared-Agency/minutes/internal/transcript"
	"golang.org/x/sync/errgroup"
)

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mocks/mock_source.go -package=mocks github.com/MikeSquared-Agency/minutes/internal/processor DocumentSource

// DocumentSource lists meeting-notes documents and fetches their bodies.
type DocumentSource interface {
	ListDocuments(ctx context.Context, q gdocs.Query) ([]extractor.DocumentHandle, error)
	FetchContent(ctx context.Context, documentID string) ([]extractor.Paragraph, error)
}

// Repository is the ledger and transcript persistence used by a run.
type Repository interface {
	HasProcessed(ctx context.Context, fileID string) (bool, error)
	SaveTranscript(ctx context.Context, rec transcript.Record, ref *transcript.BackReference) (store.ProcessedNote, error)
}

// Resolver picks the entity a participant list is associated with.
type Resolver interface {
	Resolve(ctx context.Context, emails []string) (matcher.Match, string, bool, error)
}

type Publisher interface {
	Publish(subject string, data any) error
}

// Notifier receives the outcome of every batch that stored or failed something.
type Notifier interface {
	PostDigest(ctx context.Context, results []FileResult) error
}

// Status is the terminal state of one document within a run.
type Status string

const (
	StatusStored  Status = "stored"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// FileResult is the per-document outcome of a run.
type FileResult struct {
	Document     extractor.DocumentHandle `json:"document"`
	Status       Status                   `json:"status"`
	Transcript   *extractor.Transcript    `json:"transcript,omitempty"`
	TranscriptID string                   `json:"transcript_id,omitempty"`
	EntityType   string                   `json:"entity_type,omitempty"`
	EntityID     string                   `json:"entity_id,omitempty"`
	MatchedEmail string                   `json:"matched_email,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

// RunRequest narrows a run to one meeting. An empty MeetingURL scans everything.
type RunRequest struct {
	MeetingURL string `json:"meeting_url,omitempty"`
}

type Options struct {
	FolderID        string
	NameFilter      string
	Concurrency     int
	DocumentTimeout time.Duration
}

// RunStats summarises the most recent run.
type RunStats struct {
	Runs      int       `json:"runs"`
	LastRunAt time.Time `json:"last_run_at,omitempty"`
	Listed    int       `json:"listed"`
	Stored    int       `json:"stored"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	LastError string    `json:"last_error,omitempty"`
}

// Processor turns meeting-notes documents into stored transcript records.
type Processor struct {
	source   DocumentSource
	repo     Repository
	resolver Resolver
	hermes   Publisher
	notifier Notifier
	opts     Options
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	stats RunStats
}

// New builds a Processor. hermes and notifier may be nil.
func New(source DocumentSource, repo Repository, resolver Resolver, h Publisher, n Notifier, opts Options, logger *slog.Logger) *Processor {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.DocumentTimeout <= 0 {
		opts.DocumentTimeout = 60 * time.Second
	}
	return &Processor{
		source:   source,
		repo:     repo,
		resolver: resolver,
		hermes:   h,
		notifier: n,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Run lists candidate documents and processes each one. Only a listing
// failure aborts the run; every other failure is reported in its FileResult.
// Results are returned in listing order.
func (p *Processor) Run(ctx context.Context, req RunRequest) ([]FileResult, error) {
	q := gdocs.Query{
		FolderID:     p.opts.FolderID,
		NameContains: p.opts.NameFilter,
		FullText:     MeetingCode(req.MeetingURL),
	}

	docs, err := p.source.ListDocuments(ctx, q)
	if err != nil {
		p.record(nil, err)
		return nil, fmt.Errorf("list documents: %w", err)
	}

	p.logger.Info("processing batch", "documents", len(docs), "meeting_code", q.FullText)

	results := make([]FileResult, len(docs))
	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			dctx, cancel := context.WithTimeout(ctx, p.opts.DocumentTimeout)
			defer cancel()
			results[i] = p.processDocument(dctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	stats := p.record(results, nil)
	p.logger.Info("batch complete",
		"documents", len(results),
		"stored", stats.Stored,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)

	if stats.Stored+stats.Failed > 0 && p.notifier != nil {
		if err := p.notifier.PostDigest(ctx, results); err != nil {
			p.logger.Error("failed to post digest", "error", err)
		}
	}
	return results, nil
}

func (p *Processor) processDocument(ctx context.Context, doc extractor.DocumentHandle) FileResult {
	res := FileResult{Document: doc}
	log := p.logger.With("file_id", doc.ID, "name", doc.Name)

	done, err := p.repo.HasProcessed(ctx, doc.ID)
	if err != nil {
		return fail(log, res, fmt.Errorf("check ledger: %w", err))
	}
	if done {
		log.Debug("document already processed")
		res.Status = StatusSkipped
		return res
	}

	paragraphs, err := p.source.FetchContent(ctx, doc.ID)
	if err != nil {
		marker := extractor.Failed()
		res.Transcript = &marker
		return fail(log, res, fmt.Errorf("fetch content: %w", err))
	}

	t := extractor.Extract(paragraphs)
	res.Transcript = &t

	match, email, ok, err := p.resolver.Resolve(ctx, t.Participants)
	if err != nil {
		return fail(log, res, fmt.Errorf("resolve entity: %w", err))
	}
	var matched *matcher.Match
	if ok {
		matched = &match
		res.EntityType = string(match.Type)
		res.EntityID = match.ID
		res.MatchedEmail = email
	}

	rec, ref := transcript.Build(doc, t, matched, p.now().UTC())
	if _, err := p.repo.SaveTranscript(ctx, rec, ref); err != nil {
		if errors.Is(err, store.ErrAlreadyProcessed) {
			log.Info("document claimed by a concurrent run")
			return FileResult{Document: doc, Status: StatusSkipped}
		}
		return fail(log, res, fmt.Errorf("save transcript: %w", err))
	}

	res.Status = StatusStored
	res.TranscriptID = rec.ID.String()
	log.Info("transcript stored",
		"transcript_id", res.TranscriptID,
		"entity_type", res.EntityType,
		"entity_id", res.EntityID,
		"participants", len(rec.Participants),
	)

	if p.hermes != nil {
		if err := p.hermes.Publish(hermes.SubjectTranscriptStored, hermes.TranscriptStoredEvent{
			TranscriptID: res.TranscriptID,
			SourceID:     rec.SourceID,
			Title:        rec.Title,
			EntityType:   rec.EntityType,
			EntityID:     rec.EntityID,
			Participants: rec.Participants,
		}); err != nil {
			log.Error("failed to publish transcript stored", "error", err)
		}
	}
	return res
}

func fail(log *slog.Logger, res FileResult, err error) FileResult {
	log.Error("document processing failed", "error", err)
	res.Status = StatusFailed
	res.Error = err.Error()
	return res
}

func (p *Processor) record(results []FileResult, runErr error) RunStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := RunStats{Runs: p.stats.Runs + 1, LastRunAt: p.now().UTC(), Listed: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusStored:
			s.Stored++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	if runErr != nil {
		s.LastError = runErr.Error()
	}
	p.stats = s
	return s
}

// Stats returns a snapshot of the most recent run.
func (p *Processor) Stats() RunStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
