package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"cascs/internal"
	"cascs/internal/config"
	"cascs/internal/storage"
)

// AttachmentFetcher is the transport boundary: it yields the publication's
// spreadsheet attachments in page order. source.Client implements it.
type AttachmentFetcher interface {
	FetchAttachments(ctx context.Context, pageURL string) ([]internal.Attachment, error)
}

// FetchService runs the full pipeline: download, extract, reconcile, write,
// log. Output files are only opened once the whole merge has completed, so
// a failed run leaves the previous outputs untouched.
type FetchService struct {
	cfg     config.Config
	fetcher AttachmentFetcher
	db      *storage.DB
}

func NewFetchService(cfg config.Config, fetcher AttachmentFetcher, db *storage.DB) *FetchService {
	return &FetchService{cfg: cfg, fetcher: fetcher, db: db}
}

type FetchOptions struct {
	URL         string
	Prefix      string
	AliasFile   string
	InputPath   string
	OutputPaths []string
}

func (s *FetchService) Run(ctx context.Context, opts FetchOptions) (internal.RunSummary, error) {
	start := time.Now()

	if opts.URL == "" {
		opts.URL = s.cfg.SourceURL
	}
	if opts.Prefix == "" {
		opts.Prefix = s.cfg.OrgIDPrefix
	}
	if opts.AliasFile == "" {
		opts.AliasFile = s.cfg.AliasFile
	}
	if len(opts.OutputPaths) == 0 {
		return internal.RunSummary{}, fmt.Errorf("no output paths given")
	}
	if err := ValidateOutputPaths(opts.OutputPaths); err != nil {
		return internal.RunSummary{}, err
	}

	aliases, err := LoadAliases(opts.AliasFile)
	if err != nil {
		return internal.RunSummary{}, fmt.Errorf("load aliases %s: %w", opts.AliasFile, err)
	}
	resolver := NewResolver(opts.Prefix, aliases)

	existing, err := LoadRegistry(opts.InputPath)
	if err != nil {
		return internal.RunSummary{}, err
	}

	attachments, err := s.fetcher.FetchAttachments(ctx, opts.URL)
	if err != nil {
		return internal.RunSummary{}, err
	}

	fetched := []internal.Record{}
	for _, att := range attachments {
		rows, err := ParseRows(att.URL, att.Body)
		if err != nil {
			return internal.RunSummary{}, fmt.Errorf("parse attachment %s: %w", att.URL, err)
		}
		fetched = append(fetched, ExtractRecords(rows)...)
	}

	merged := Merge(existing, fetched, resolver)

	for _, path := range opts.OutputPaths {
		if err := WriteRegistry(path, merged); err != nil {
			return internal.RunSummary{}, fmt.Errorf("write %s: %w", path, err)
		}
	}

	summary := internal.RunSummary{
		TraceID:     traceID(),
		URL:         opts.URL,
		Attachments: len(attachments),
		Fetched:     len(fetched),
		Merged:      len(merged),
		DurationMs:  time.Since(start).Milliseconds(),
	}
	for _, rec := range merged {
		if !rec.Active {
			summary.Removed++
			continue
		}
		if _, ok := existing[rec.ID]; !ok {
			summary.Added++
		}
	}

	if s.db != nil {
		// Best-effort: the outputs are already written, and a completed
		// fetch must not fail because the local history db is unavailable.
		_ = s.db.InsertRun(summary)
		_ = s.db.SetMetadata("last_run_at", time.Now().UTC().Format(time.RFC3339))
		_ = s.db.SetMetadata("last_count", fmt.Sprintf("%d", summary.Merged))
	}

	return summary, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
