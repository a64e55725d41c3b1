package job

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sourabsb/tbi-hackathon/constants"
	"github.com/Sourabsb/tbi-hackathon/internal/common"
)

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate job id %s", id)
		seen[id] = struct{}{}
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(constants.JobStatusQueued, constants.JobStatusProcessing))
	assert.True(t, CanTransition(constants.JobStatusQueued, constants.JobStatusFailed))
	assert.True(t, CanTransition(constants.JobStatusProcessing, constants.JobStatusCompleted))
	assert.True(t, CanTransition(constants.JobStatusProcessing, constants.JobStatusFailed))
	assert.True(t, CanTransition(constants.JobStatusProcessing, constants.JobStatusProcessing), "progress updates re-save processing")

	assert.False(t, CanTransition(constants.JobStatusQueued, constants.JobStatusCompleted))
	assert.False(t, CanTransition(constants.JobStatusCompleted, constants.JobStatusProcessing))
	assert.False(t, CanTransition(constants.JobStatusCompleted, constants.JobStatusFailed))
	assert.False(t, CanTransition(constants.JobStatusFailed, constants.JobStatusProcessing))
	assert.False(t, CanTransition(constants.JobStatusFailed, constants.JobStatusCompleted))
	assert.False(t, CanTransition(constants.JobStatusCompleted, constants.JobStatusCompleted))
}

func okFiles(n int) []FileMeta {
	files := make([]FileMeta, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, FileMeta{
			Filename:    fmt.Sprintf("sof_%d.png", i),
			ContentType: "image/png",
			Size:        1024,
		})
	}
	return files
}

func TestValidateSubmission(t *testing.T) {
	assert.NoError(t, ValidateSubmission(okFiles(1)))
	assert.NoError(t, ValidateSubmission(okFiles(10)), "exactly ten files is accepted")

	err := ValidateSubmission(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	err = ValidateSubmission(okFiles(11))
	require.Error(t, err, "eleven files rejected before job creation")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}

func TestValidateSubmissionTypes(t *testing.T) {
	ok := []string{"image/jpeg", "image/png", "image/jpg", "image/tiff", "application/pdf", constants.DOCXContentType}
	for _, ct := range ok {
		files := okFiles(1)
		files[0].ContentType = ct
		assert.NoError(t, ValidateSubmission(files), ct)
	}

	files := okFiles(1)
	files[0].ContentType = "text/html"
	err := ValidateSubmission(files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unsupported file type")
}

func TestValidateSubmissionSize(t *testing.T) {
	files := okFiles(1)
	files[0].Size = constants.MaxFileSizeBytes
	assert.NoError(t, ValidateSubmission(files), "exactly 10MiB passes")

	files[0].Size = constants.MaxFileSizeBytes + 1
	err := ValidateSubmission(files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File too large")
}
