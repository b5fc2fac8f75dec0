package domain

import "time"

// Engagement holds optional engagement counters, nil fields are unknown
type Engagement struct {
	Likes   *int64
	Shares  *int64
	Replies *int64
	Views   *int64
}

// Message is the canonical ingested message
type Message struct {
	ID         int64
	Platform   Platform
	ExternalID string
	SourceID   int64
	Author     string
	Body       string
	Published  time.Time // normalized to the reference time zone
	Engagement Engagement
	MediaURL   string
	Lang       string
	Link       string
	Visible    bool
	IngestedAt time.Time
}

// SaveResult reports the outcome of a deduplicating insert
type SaveResult int

const (
	// SaveInserted means the message was new and stored
	SaveInserted SaveResult = iota
	// SaveSkipped means a message with the same platform and external id already exists
	SaveSkipped
)

func (r SaveResult) String() string {
	if r == SaveInserted {
		return "inserted"
	}
	return "skipped"
}

// MessageFilter limits ListLatestMessages results
type MessageFilter struct {
	Platform      *Platform
	SourceID      int64
	Limit         int
	IncludeHidden bool
}
