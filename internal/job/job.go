// Package job owns job identity, the persisted status-document schema, and
// the state machine governing queued → processing → completed|failed.
package job

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Sourabsb/tbi-hackathon/constants"
	"github.com/Sourabsb/tbi-hackathon/internal/common"
	"github.com/Sourabsb/tbi-hackathon/internal/record"
)

// ResultPayload is the structured result attached to a completed job.
type ResultPayload struct {
	Table []record.Record `json:"table"`
}

// Document is the per-job status document persisted by the result store.
type Document struct {
	JobID      string              `json:"job_id"`
	Status     constants.JobStatus `json:"status"`
	Progress   int                 `json:"progress"`
	Message    string              `json:"message"`
	CreatedAt  time.Time           `json:"created_at"`
	TotalFiles int                 `json:"total_files"`
	Filenames  []string            `json:"filenames"`
	Results    *ResultPayload      `json:"results,omitempty"`
}

// FirstFilename returns the first submitted filename, for listing summaries.
func (d *Document) FirstFilename() string {
	if len(d.Filenames) == 0 {
		return ""
	}
	return d.Filenames[0]
}

// NewID generates an opaque job identifier. IDs are never reused.
func NewID() string {
	return uuid.New().String()
}

// CanTransition reports whether a status change is legal. Terminal states are
// never left.
func CanTransition(from, to constants.JobStatus) bool {
	if from == to {
		return !from.Terminal()
	}
	switch from {
	case constants.JobStatusQueued:
		return to == constants.JobStatusProcessing || to == constants.JobStatusFailed
	case constants.JobStatusProcessing:
		return to == constants.JobStatusCompleted || to == constants.JobStatusFailed
	default:
		return false
	}
}

// FileMeta describes one uploaded file for submission validation.
type FileMeta struct {
	Filename    string
	ContentType string
	Size        int64
}

// ValidateSubmission applies the upload rules before any job is created.
// Every violation is an ErrInvalidInput so the transport can map it to a
// bad-request response.
func ValidateSubmission(files []FileMeta) error {
	if len(files) == 0 {
		return common.NewAppError("EMPTY_UPLOAD", "No files provided", common.ErrInvalidInput)
	}
	if len(files) > constants.MaxFilesPerUpload {
		return common.NewAppError("TOO_MANY_FILES",
			fmt.Sprintf("Maximum %d files allowed", constants.MaxFilesPerUpload), common.ErrInvalidInput)
	}
	for _, f := range files {
		if !constants.IsAllowedContentType(f.ContentType) {
			return common.NewAppError("UNSUPPORTED_TYPE",
				fmt.Sprintf("Unsupported file type: %s", f.ContentType), common.ErrInvalidInput)
		}
		if f.Size > constants.MaxFileSizeBytes {
			return common.NewAppError("FILE_TOO_LARGE",
				fmt.Sprintf("File too large: %s. Max size is 10MB per file.", f.Filename), common.ErrInvalidInput)
		}
	}
	return nil
}
