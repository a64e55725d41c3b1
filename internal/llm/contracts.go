package llm

import (
	"context"

	"github.com/Sourabsb/tbi-hackathon/internal/record"
)

// ExtractRequest carries one file's extracted text to the structuring provider.
type ExtractRequest struct {
	Text     string
	Filename string
}

// RecordExtractor is the interface the pipeline depends on.
type RecordExtractor interface {
	ExtractRecords(ctx context.Context, req ExtractRequest) ([]record.Record, error)
}
