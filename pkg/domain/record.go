package domain

import (
	"strconv"
	"strings"
	"time"
)

// TimeHint keeps whatever time information an adapter could find for a record
type TimeHint struct {
	Datetime string // machine-readable datetime attribute
	Text     string // visible time text, e.g. "14:30" or "yesterday 09:15"
}

// RawRecord is an adapter-specific record before normalization
type RawRecord struct {
	ExternalID string
	Text       string
	Author     string
	Link       string
	TimeHint   TimeHint
	PostedAt   *time.Time // already parsed timestamp, set by api adapters
	Engagement Engagement
	MediaURL   string
	Lang       string
}

// FetchResult is returned by platform adapters for one source
type FetchResult struct {
	Records      []RawRecord
	Skipped      int    // items dropped by the adapter, malformed or filtered out
	NewestID     string // newest external id seen by the adapter, including dropped items
	SourceUpdate *SourceUpdate
}

// CompareExternalIDs orders external ids, returns -1, 0 or 1.
// Ids with numeric last path segments ("chan/120", "1800") are compared numerically,
// anything else by length and then lexicographically.
func CompareExternalIDs(a, b string) int {
	na, errA := strconv.ParseUint(lastSegment(a), 10, 64)
	nb, errB := strconv.ParseUint(lastSegment(b), 10, 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return strings.Compare(a, b)
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// NewestExternalID returns the greatest external id of the records, empty for no records
func NewestExternalID(records []RawRecord) string {
	newest := ""
	for _, r := range records {
		if r.ExternalID == "" {
			continue
		}
		if newest == "" || CompareExternalIDs(r.ExternalID, newest) > 0 {
			newest = r.ExternalID
		}
	}
	return newest
}

func lastSegment(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
