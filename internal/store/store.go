// Package store provides durable, file-addressed persistence for per-job
// status and result documents. The on-disk documents are the source of truth;
// any in-memory layer is purely a cache.
package store

import (
	"context"

	"github.com/Sourabsb/tbi-hackathon/internal/job"
	"github.com/Sourabsb/tbi-hackathon/internal/record"
)

// Store is the single authoritative persistence abstraction for jobs.
type Store interface {
	// SaveStatus overwrites the full status document. The creation timestamp
	// is stamped once on first save and preserved on every later save.
	SaveStatus(ctx context.Context, doc *job.Document) error

	// LoadStatus returns common.ErrNotFound for unknown ids. Corrupt
	// documents are logged and reported as not found.
	LoadStatus(ctx context.Context, jobID string) (*job.Document, error)

	// ListStatuses returns all readable status documents, newest first.
	// Unreadable documents are skipped, never fatal.
	ListStatuses(ctx context.Context) ([]*job.Document, error)

	// SaveResult persists the structured result set and eagerly derives the
	// tabular rendering with canonical field names.
	SaveResult(ctx context.Context, jobID string, table []record.Record) error

	// LoadResult returns common.ErrNotFound when no result document exists.
	LoadResult(ctx context.Context, jobID string) (*job.ResultPayload, error)

	// RepairResultCSV regenerates the tabular file from the structured form
	// when it actually contains structured content (a legacy persistence bug
	// wrote JSON under the .csv extension). Idempotent and safe on every read.
	RepairResultCSV(ctx context.Context, jobID string, table []record.Record) error
}
