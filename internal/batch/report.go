package batch

import (
	"time"
)

// Item statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Report describes a batch run.
type Report struct {
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	DurationMS int64         `json:"duration_ms"`
	Items      []*ItemResult `json:"items"`
	Summary    *Summary      `json:"summary"`
	Errors     []string      `json:"errors,omitempty"`
}

// ItemResult is the outcome for one submission.
type ItemResult struct {
	UniqueID   string `json:"unique_id"`
	Status     string `json:"status"`
	Path       string `json:"path,omitempty"`
	Bytes      int64  `json:"bytes"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Summary aggregates item outcomes.
type Summary struct {
	Total      int     `json:"total"`
	Succeeded  int     `json:"succeeded"`
	Failed     int     `json:"failed"`
	Skipped    int     `json:"skipped"`
	TotalBytes int64   `json:"total_bytes"`
	DocsPerSec float64 `json:"docs_per_sec"`
}

// Aggregate combines item results into a Summary.
func Aggregate(items []*ItemResult, duration time.Duration) *Summary {
	s := &Summary{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case StatusSucceeded:
			s.Succeeded++
			s.TotalBytes += it.Bytes
		case StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	if duration.Seconds() > 0 {
		s.DocsPerSec = float64(s.Succeeded) / duration.Seconds()
	}
	return s
}

// OK reports whether every item succeeded.
func (r *Report) OK() bool {
	return r.Summary != nil && r.Summary.Succeeded == r.Summary.Total
}
