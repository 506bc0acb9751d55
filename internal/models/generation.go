package models

import "time"

// GenerationSource identifies how a submission reached the generator.
type GenerationSource string

const (
	SourceFetch  GenerationSource = "fetch"
	SourceUpload GenerationSource = "upload"
	SourceCLI    GenerationSource = "cli"
)

// GenerationStatus is the outcome of a generation attempt.
type GenerationStatus string

const (
	GenerationSuccess GenerationStatus = "success"
	GenerationFailed  GenerationStatus = "failed"
)

// GenerationRecord is the audit entry written for every generation attempt.
// It never holds submission content.
type GenerationRecord struct {
	ID           string           `json:"id"`
	SubmissionID string           `json:"submission_id"`
	UniqueID     string           `json:"unique_id"`
	Source       GenerationSource `json:"source"`
	Format       string           `json:"format"`
	Status       GenerationStatus `json:"status"`
	FileName     string           `json:"file_name,omitempty"`
	Bytes        int64            `json:"bytes"`
	DurationMS   int64            `json:"duration_ms"`
	Error        string           `json:"error,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}
