// Package pipeline drives one extraction job from queued to a terminal state:
// per-file text recognition, structuring, progress reporting, and result
// persistence.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/Sourabsb/tbi-hackathon/constants"
	"github.com/Sourabsb/tbi-hackathon/internal/common"
	"github.com/Sourabsb/tbi-hackathon/internal/docx"
	"github.com/Sourabsb/tbi-hackathon/internal/job"
	"github.com/Sourabsb/tbi-hackathon/internal/llm"
	"github.com/Sourabsb/tbi-hackathon/internal/metrics"
	"github.com/Sourabsb/tbi-hackathon/internal/record"
	"github.com/Sourabsb/tbi-hackathon/internal/store"
)

// TextRecognizer recognizes printed text in an uploaded image or PDF.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, data []byte, filename string) (string, error)
}

// ExtractSubmitter hands recognized text to the structuring pool and waits
// for the records.
type ExtractSubmitter interface {
	Submit(ctx context.Context, req llm.ExtractRequest) ([]record.Record, error)
}

// FileInput is one uploaded file, already read into memory by the transport.
type FileInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Pipeline owns the background processing of upload jobs.
type Pipeline struct {
	store       store.Store
	recognizer  TextRecognizer
	extractor   ExtractSubmitter
	logger      *slog.Logger
	docxEnabled bool
}

func New(st store.Store, rec TextRecognizer, ext ExtractSubmitter, docxEnabled bool, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:       st,
		recognizer:  rec,
		extractor:   ext,
		logger:      logger,
		docxEnabled: docxEnabled,
	}
}

// Run processes every file of the job and moves it to a terminal state. It is
// meant to run in its own goroutine; all failures end up in the persisted
// status document rather than in a return value.
func (p *Pipeline) Run(ctx context.Context, doc *job.Document, files []FileInput) {
	start := time.Now()
	log := p.logger.With("job_id", doc.JobID, "total_files", len(files))
	log.Info("pipeline.start")

	if err := p.setStatus(ctx, doc, constants.JobStatusProcessing, 10, "Initializing OCR client..."); err != nil {
		log.Error("pipeline.status_save_failed", "error", err)
	}

	var table []record.Record
	var skipped *multierror.Error
	total := len(files)

	for i, f := range files {
		progress := 10 + (i*80)/total
		if err := p.setStatus(ctx, doc, constants.JobStatusProcessing, progress,
			fmt.Sprintf("Processing %s...", f.Filename)); err != nil {
			log.Error("pipeline.status_save_failed", "error", err)
		}

		recs, err := p.processFile(ctx, f)
		if err != nil {
			if kind := common.ClassifyFailure(err); kind != common.FailureInternal {
				p.fail(ctx, doc, kind, err)
				return
			}
			log.Warn("pipeline.file_skipped", "filename", f.Filename, "error", err)
			metrics.FilesSkipped.Inc()
			skipped = multierror.Append(skipped, fmt.Errorf("%s: %w", f.Filename, err))
			continue
		}
		metrics.FilesProcessed.Inc()
		table = append(table, recs...)
	}

	if skipped != nil {
		log.Warn("pipeline.files_skipped_summary", "count", skipped.Len(), "errors", skipped.Error())
	}

	if len(table) > 0 {
		if err := p.store.SaveResult(ctx, doc.JobID, table); err != nil {
			p.fail(ctx, doc, common.FailureInternal, err)
			return
		}
		doc.Results = &job.ResultPayload{Table: table}
		msg := fmt.Sprintf("Successfully processed %d rows from %d files", len(table), total)
		if err := p.setStatus(ctx, doc, constants.JobStatusCompleted, 100, msg); err != nil {
			log.Error("pipeline.status_save_failed", "error", err)
		}
		metrics.RecordsExtracted.Add(float64(len(table)))
	} else {
		msg := fmt.Sprintf("Processed %d files but no structured data found", total)
		if err := p.setStatus(ctx, doc, constants.JobStatusCompleted, 100, msg); err != nil {
			log.Error("pipeline.status_save_failed", "error", err)
		}
	}

	metrics.JobsCompleted.Inc()
	log.Info("pipeline.done", "records", len(table), "elapsed_ms", time.Since(start).Milliseconds())
}

// processFile turns one file into structured records. Empty recognized text
// yields no records and no error.
func (p *Pipeline) processFile(ctx context.Context, f FileInput) ([]record.Record, error) {
	var text string
	if constants.IsDOCX(f.ContentType, f.Filename) {
		if !p.docxEnabled {
			p.logger.Info("pipeline.docx_disabled", "filename", f.Filename)
			return nil, nil
		}
		var err error
		text, err = docx.ExtractText(f.Data)
		if err != nil {
			return nil, fmt.Errorf("docx extraction: %w", err)
		}
	} else {
		var err error
		text, err = p.recognizer.RecognizeText(ctx, f.Data, f.Filename)
		if err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(text) == "" {
		p.logger.Info("pipeline.no_text", "filename", f.Filename)
		return nil, nil
	}
	return p.extractor.Submit(ctx, llm.ExtractRequest{Text: text, Filename: f.Filename})
}

// fail moves the job to the failed terminal state with a user-facing message
// derived from the failure kind.
func (p *Pipeline) fail(ctx context.Context, doc *job.Document, kind common.FailureKind, cause error) {
	var msg string
	switch kind {
	case common.FailureEndpointConfig:
		msg = "OCR endpoint configuration error. Please update OCR_ENDPOINT in .env file."
	case common.FailureAuth:
		msg = "OCR API key authentication failed. Please check OCR_API_KEY in .env file."
	case common.FailureLLMAuth:
		msg = "Gemini API key authentication failed. Please check GEMINI_API_KEY in .env file."
	default:
		msg = fmt.Sprintf("Processing error: %v", cause)
	}

	p.logger.Error("pipeline.failed", "job_id", doc.JobID, "kind", kind.String(), "error", cause)
	if err := p.setStatus(ctx, doc, constants.JobStatusFailed, 0, msg); err != nil {
		p.logger.Error("pipeline.status_save_failed", "job_id", doc.JobID, "error", err)
	}
	metrics.JobsFailed.Inc()
}

// setStatus applies a legal transition and persists the document. Illegal
// transitions are rejected so a terminal state can never be overwritten.
func (p *Pipeline) setStatus(ctx context.Context, doc *job.Document, to constants.JobStatus, progress int, msg string) error {
	if !job.CanTransition(doc.Status, to) {
		return fmt.Errorf("illegal status transition %s -> %s", doc.Status, to)
	}
	doc.Status = to
	doc.Progress = progress
	doc.Message = msg
	return p.store.SaveStatus(ctx, doc)
}
