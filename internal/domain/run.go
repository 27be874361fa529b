package domain

import "time"

// RunStats holds statistics about one pipeline run.
type RunStats struct {
	Date         string
	Found        int
	WithReadme   int
	Summarized   int
	Placeholders int
	Returning    int
	Errors       int
	Duration     time.Duration
}
