package inference

import "time"

// Filter narrows a loaded inference log along the dimensions the dashboard
// exposes. Methods chain and operate on a copy of the slice header, never
// mutating the caller's backing data beyond re-slicing.
type Filter struct {
	entries []Entry
	now     func() time.Time
}

// NewFilter wraps entries for filtering.
func NewFilter(entries []Entry) *Filter {
	return &Filter{entries: entries, now: time.Now}
}

// ByDaysBack keeps entries whose record timestamp falls on or after midnight
// daysBack days ago. Entries with no resolvable timestamp are dropped.
// daysBack < 0 disables the filter.
func (f *Filter) ByDaysBack(daysBack int) *Filter {
	if daysBack < 0 {
		return f
	}
	now := f.now()
	y, m, d := now.AddDate(0, 0, -daysBack).Date()
	threshold := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	kept := f.entries[:0:0]
	for _, e := range f.entries {
		if !e.LoggedAt.Before(threshold) {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return f
}

// ByType keeps entries of the given content type; "" and "All" pass
// everything through.
func (f *Filter) ByType(contentType string) *Filter {
	if contentType == "" || contentType == "All" {
		return f
	}
	kept := f.entries[:0:0]
	for _, e := range f.entries {
		if e.Type == contentType {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return f
}

// FlaggedOnly drops unflagged entries when on is true.
func (f *Filter) FlaggedOnly(on bool) *Filter {
	if !on {
		return f
	}
	kept := f.entries[:0:0]
	for _, e := range f.entries {
		if e.Result.Flagged {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return f
}

// MinConfidence keeps entries at or above the given confidence.
func (f *Filter) MinConfidence(min float64) *Filter {
	kept := f.entries[:0:0]
	for _, e := range f.entries {
		if e.Result.Confidence >= min {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return f
}

// Entries returns the remaining entries in original order.
func (f *Filter) Entries() []Entry {
	return f.entries
}
