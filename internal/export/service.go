// Package export renders completed job results as downloadable JSON, CSV, or
// XLSX documents.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Sourabsb/tbi-hackathon/constants"
	"github.com/Sourabsb/tbi-hackathon/internal/common"
	"github.com/Sourabsb/tbi-hackathon/internal/job"
	"github.com/Sourabsb/tbi-hackathon/internal/record"
	"github.com/Sourabsb/tbi-hackathon/internal/store"
)

// Document is a rendered export ready to be written to the response.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	// Attachment is false for the edited-data JSON reply, which is returned
	// inline rather than as a download.
	Attachment bool
}

// Service renders stored or caller-supplied event sets into export formats.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// Export renders the job's result set in the requested format. A non-empty
// override replaces the stored records, letting callers export edited data
// without persisting it.
func (s *Service) Export(ctx context.Context, jobID, format string, override []record.Record) (*Document, error) {
	start := time.Now()

	doc, err := s.store.LoadStatus(ctx, jobID)
	if err != nil || doc.Status != constants.JobStatusCompleted {
		return nil, common.NewAppError("JOB_NOT_COMPLETED", "Job not found or not completed", common.ErrNotFound)
	}

	res, err := s.store.LoadResult(ctx, jobID)
	if err != nil {
		return nil, common.NewAppError("RESULTS_MISSING", "Results file not found", common.ErrNotFound)
	}

	events := res.Table
	edited := len(override) > 0
	if edited {
		events = override
	}

	var out *Document
	switch strings.ToLower(format) {
	case "json":
		out, err = renderJSON(jobID, events, edited)
	case "csv":
		out, err = renderCSV(jobID, events)
	case "xlsx":
		out, err = renderXLSX(jobID, events)
	default:
		return nil, common.NewAppError("BAD_FORMAT",
			"Unsupported export format. Use 'json' or 'csv'", common.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("export.ok",
		"job_id", jobID,
		"format", strings.ToLower(format),
		"rows", len(events),
		"edited", edited,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func renderJSON(jobID string, events []record.Record, edited bool) (*Document, error) {
	b, err := json.Marshal(job.ResultPayload{Table: events})
	if err != nil {
		return nil, fmt.Errorf("marshal export json: %w", err)
	}
	return &Document{
		Filename:    fmt.Sprintf("extracted_data_%s.json", jobID),
		ContentType: "application/json",
		Data:        b,
		Attachment:  !edited,
	}, nil
}

func renderCSV(jobID string, events []record.Record) (*Document, error) {
	if len(events) == 0 {
		return nil, common.NewAppError("NO_EVENTS", "No events found for this job.", common.ErrNotFound)
	}
	var buf bytes.Buffer
	if err := store.WriteCSV(&buf, events, record.ProfileCanonical); err != nil {
		return nil, fmt.Errorf("render export csv: %w", err)
	}
	return &Document{
		Filename:    fmt.Sprintf("extracted_data_%s.csv", jobID),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
		Attachment:  true,
	}, nil
}

func renderXLSX(jobID string, events []record.Record) (*Document, error) {
	if len(events) == 0 {
		return nil, common.NewAppError("NO_EVENTS", "No events found for this job.", common.ErrNotFound)
	}

	f := excelize.NewFile()
	const sheet = "Events"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range record.ProfileCanonical.Header() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, ev := range events {
		for col, v := range ev.Values(record.ProfileCanonical) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	// Widen the text-heavy columns.
	_ = f.SetColWidth(sheet, "A", "A", 32) // event
	_ = f.SetColWidth(sheet, "B", "D", 18) // day, start, end
	_ = f.SetColWidth(sheet, "F", "F", 24) // ship/cargo
	_ = f.SetColWidth(sheet, "H", "H", 48) // description
	_ = f.SetColWidth(sheet, "I", "I", 28) // filename

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return &Document{
		Filename:    fmt.Sprintf("extracted_data_%s.xlsx", jobID),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
		Attachment:  true,
	}, nil
}
