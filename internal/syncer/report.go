package syncer

import (
	"time"

	"lqcli/internal/services"
)

// Outcome is the terminal state of one feed item.
type Outcome int

const (
	// ItemSkipped means the title already exists in the catalog.
	ItemSkipped Outcome = iota + 1
	// ItemLinked means an audio link was resolved and handed off.
	ItemLinked
	// ItemFailed means the item could not be processed.
	ItemFailed
)

func (o Outcome) String() string {
	switch o {
	case ItemSkipped:
		return "skipped"
	case ItemLinked:
		return "linked"
	case ItemFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ItemReport describes what happened to one item.
type ItemReport struct {
	Title     string
	HasTitle  bool
	Outcome   Outcome
	AudioLink string
	// Err explains ItemFailed outcomes.
	Err error
	// HandoffErr is set when a linked item failed during download, transcription
	// or publishing. The item keeps its ItemLinked outcome.
	HandoffErr error
	// Published is true when the lesson was created.
	Published bool
}

// SourceReport summarizes one source.
type SourceReport struct {
	Source string
	// CatalogErr is set when existing titles could not be read; the source was
	// then processed against an empty snapshot.
	CatalogErr error
	// Err is set when the feed could not be fetched or parsed.
	Err      error
	Items    []ItemReport
	Duration time.Duration
}

// Counts tallies item outcomes.
func (r SourceReport) Counts() (linked, skipped, failed int) {
	for _, item := range r.Items {
		switch item.Outcome {
		case ItemLinked:
			linked++
		case ItemSkipped:
			skipped++
		case ItemFailed:
			failed++
		}
	}
	return linked, skipped, failed
}

// Published counts items whose lesson was created.
func (r SourceReport) Published() int {
	n := 0
	for _, item := range r.Items {
		if item.Published {
			n++
		}
	}
	return n
}

// Status returns a short label for tables.
func (r SourceReport) Status() string {
	if r.Err != nil {
		return services.KindLabel(r.Err) + " error"
	}
	for _, item := range r.Items {
		if item.Outcome == ItemFailed || item.HandoffErr != nil {
			return "partial"
		}
	}
	return "ok"
}

// RunReport summarizes a whole run.
type RunReport struct {
	RunID    string
	Sources  []SourceReport
	Started  time.Time
	Finished time.Time
}

// Failed reports whether any source could not be processed.
func (r RunReport) Failed() bool {
	for _, src := range r.Sources {
		if src.Err != nil {
			return true
		}
	}
	return false
}
