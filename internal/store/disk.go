package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Sourabsb/tbi-hackathon/internal/common"
	"github.com/Sourabsb/tbi-hackathon/internal/job"
	"github.com/Sourabsb/tbi-hackathon/internal/record"
)

// DiskStore persists one status document per job under <dataDir>/jobs and, on
// success, one result document plus its tabular rendering under
// <dataDir>/results. Paths are stable and human-inspectable.
type DiskStore struct {
	jobsDir    string
	resultsDir string
	logger     *slog.Logger
}

func NewDiskStore(dataDir string, logger *slog.Logger) (*DiskStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DiskStore{
		jobsDir:    filepath.Join(dataDir, "jobs"),
		resultsDir: filepath.Join(dataDir, "results"),
		logger:     logger,
	}
	for _, dir := range []string{s.jobsDir, s.resultsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return s, nil
}

// JobsDir exposes the status-document directory for cache invalidation watchers.
func (s *DiskStore) JobsDir() string { return s.jobsDir }

func (s *DiskStore) statusPath(jobID string) string {
	return filepath.Join(s.jobsDir, jobID+".json")
}

func (s *DiskStore) resultPath(jobID string) string {
	return filepath.Join(s.resultsDir, jobID+".json")
}

func (s *DiskStore) csvPath(jobID string) string {
	return filepath.Join(s.resultsDir, jobID+".csv")
}

func (s *DiskStore) SaveStatus(_ context.Context, doc *job.Document) error {
	// Creation time is immutable: keep the stamp from the first save.
	if existing, err := s.readStatus(doc.JobID); err == nil {
		doc.CreatedAt = existing.CreatedAt
	} else if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.Filenames == nil {
		doc.Filenames = []string{}
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status %s: %w", doc.JobID, err)
	}
	if err := os.WriteFile(s.statusPath(doc.JobID), b, 0o644); err != nil {
		return fmt.Errorf("write status %s: %w", doc.JobID, err)
	}
	s.logger.Debug("store.status.saved",
		"job_id", doc.JobID, "status", doc.Status, "progress", doc.Progress)
	return nil
}

func (s *DiskStore) LoadStatus(_ context.Context, jobID string) (*job.Document, error) {
	doc, err := s.readStatus(jobID)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.ErrNotFound
		}
		// Corrupt documents read as not-found, but leave a trace.
		s.logger.Warn("store.status.unreadable", "job_id", jobID, "error", err)
		return nil, common.ErrNotFound
	}
	return doc, nil
}

func (s *DiskStore) readStatus(jobID string) (*job.Document, error) {
	b, err := os.ReadFile(s.statusPath(jobID))
	if err != nil {
		return nil, err
	}
	var doc job.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode status %s: %w", jobID, err)
	}
	return &doc, nil
}

func (s *DiskStore) ListStatuses(_ context.Context) ([]*job.Document, error) {
	entries, err := os.ReadDir(s.jobsDir)
	if err != nil {
		return nil, fmt.Errorf("list jobs dir: %w", err)
	}

	docs := make([]*job.Document, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		doc, err := s.readStatus(id)
		if err != nil {
			s.logger.Warn("store.list.skip_unreadable", "file", e.Name(), "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (s *DiskStore) SaveResult(_ context.Context, jobID string, table []record.Record) error {
	payload := job.ResultPayload{Table: table}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result %s: %w", jobID, err)
	}
	if err := os.WriteFile(s.resultPath(jobID), b, 0o644); err != nil {
		return fmt.Errorf("write result %s: %w", jobID, err)
	}

	// Derive the tabular rendering eagerly so reads never recompute it.
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table, record.ProfileCanonical); err != nil {
		return fmt.Errorf("render csv %s: %w", jobID, err)
	}
	if err := os.WriteFile(s.csvPath(jobID), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write csv %s: %w", jobID, err)
	}

	s.logger.Info("store.result.saved", "job_id", jobID, "rows", len(table))
	return nil
}

func (s *DiskStore) LoadResult(_ context.Context, jobID string) (*job.ResultPayload, error) {
	b, err := os.ReadFile(s.resultPath(jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("read result %s: %w", jobID, err)
	}
	var payload job.ResultPayload
	if err := json.Unmarshal(b, &payload); err != nil {
		s.logger.Warn("store.result.unreadable", "job_id", jobID, "error", err)
		return nil, common.ErrNotFound
	}
	return &payload, nil
}

func (s *DiskStore) RepairResultCSV(_ context.Context, jobID string, table []record.Record) error {
	path := s.csvPath(jobID)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read csv %s: %w", jobID, err)
	}

	// A tabular file that opens with a structured-data delimiter was written
	// by the old persistence path; rebuild it from the structured form.
	if !bytes.HasPrefix(bytes.TrimSpace(b), []byte("{")) {
		return nil
	}
	s.logger.Warn("store.csv.repairing", "job_id", jobID)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table, record.ProfileLegacy); err != nil {
		return fmt.Errorf("render csv %s: %w", jobID, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write csv %s: %w", jobID, err)
	}
	return nil
}
