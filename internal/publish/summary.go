package publish

import (
	"fmt"
	"time"

	"assetsync/internal/staging"
)

// Outcome is the result of processing one staged file.
type Outcome struct {
	File     staging.StagedFile
	UID      string
	Format   string
	Keys     []string
	Metadata string
	Err      error
}

// Published reports whether the file was fully published.
func (o Outcome) Published() bool { return o.Err == nil }

// Summary describes a publish run.
type Summary struct {
	Relocated int
	Processed int
	Total     int
	Outcomes  []Outcome
	Cleanup   staging.CleanupResult
	Duration  time.Duration
}

// Failed counts files that did not publish.
func (s Summary) Failed() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// FailedUIDs lists the uids of files that did not publish, in processing order.
func (s Summary) FailedUIDs() []string {
	var out []string
	for _, o := range s.Outcomes {
		if o.Err != nil {
			out = append(out, o.UID)
		}
	}
	return out
}

// String renders the human-readable summary line.
func (s Summary) String() string {
	if s.Total == 0 {
		return "No valid files to process."
	}
	return fmt.Sprintf("Successfully processed and uploaded %d out of %d files.", s.Processed, s.Total)
}
