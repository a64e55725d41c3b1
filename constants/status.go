package constants

// JobStatus is the canonical status for persisted job documents.
type JobStatus string

// Stable values (these exact strings go over the wire and into job files).
const (
	JobStatusQueued     JobStatus = "queued"     // accepted, pipeline not started
	JobStatusProcessing JobStatus = "processing" // pipeline running
	JobStatusCompleted  JobStatus = "completed"  // terminal success (records may be empty)
	JobStatusFailed     JobStatus = "failed"     // terminal failure
)

// Terminal reports whether s permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
