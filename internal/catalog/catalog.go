// Package catalog decides whether content already exists in a lesson course.
package catalog

// Snapshot is the set of lesson titles present in a course when it was read.
// It is never refreshed; items published during a sync are not added.
type Snapshot struct {
	titles map[string]struct{}
}

// NewSnapshot builds a snapshot from the course's lesson titles.
func NewSnapshot(titles []string) Snapshot {
	set := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		set[title] = struct{}{}
	}
	return Snapshot{titles: set}
}

// IsDuplicate reports whether title is already published. Comparison is exact
// and case-sensitive.
func (s Snapshot) IsDuplicate(title string) bool {
	_, ok := s.titles[title]
	return ok
}

// Len returns the number of distinct titles in the snapshot.
func (s Snapshot) Len() int {
	return len(s.titles)
}
