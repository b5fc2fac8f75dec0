// Package ingest maps adapter records into canonical messages.
package ingest

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/tradescope/pkg/clock"
	"github.com/umputun/tradescope/pkg/domain"
)

// ErrEmptyRecord is returned for records without an external id or text
var ErrEmptyRecord = errors.New("empty record")

// SourceContext describes the source a record was fetched from
type SourceContext struct {
	SourceID    int64
	Handle      string
	DisplayName string
}

// Normalizer converts raw records into domain messages. Safe for concurrent use.
type Normalizer struct {
	policy *bluemonday.Policy
	tz     TimeZones
	clock  clock.Clock
}

// NewNormalizer makes a normalizer for the given zones, nil clock means system clock
func NewNormalizer(tz TimeZones, clk clock.Clock) *Normalizer {
	if tz.Reference == nil {
		tz.Reference = time.Local
	}
	if tz.Source == nil {
		tz.Source = time.UTC
	}
	if tz.Grace <= 0 {
		tz.Grace = DefaultGraceMargin
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Normalizer{policy: bluemonday.StrictPolicy(), tz: tz, clock: clk}
}

// Normalize builds a message from the raw record. Text is sanitized to plain text and
// the timestamp is resolved in the reference zone, ingestion time is the last resort.
func (n *Normalizer) Normalize(platform domain.Platform, rec domain.RawRecord, sc SourceContext) (domain.Message, error) {
	extID := strings.TrimSpace(rec.ExternalID)
	if extID == "" {
		return domain.Message{}, fmt.Errorf("normalize %s record: %w: no external id", platform, ErrEmptyRecord)
	}
	body := n.cleanText(rec.Text)
	if body == "" {
		return domain.Message{}, fmt.Errorf("normalize %s record %s: %w: no text", platform, extID, ErrEmptyRecord)
	}

	now := n.clock.Now().In(n.tz.Reference)
	published := n.published(rec, now)

	author := strings.TrimSpace(n.cleanText(rec.Author))
	if author == "" {
		author = sc.DisplayName
	}
	if author == "" {
		author = sc.Handle
	}

	return domain.Message{
		Platform:   platform,
		ExternalID: extID,
		SourceID:   sc.SourceID,
		Author:     author,
		Body:       body,
		Published:  published,
		Engagement: rec.Engagement,
		MediaURL:   strings.TrimSpace(rec.MediaURL),
		Lang:       strings.ToLower(strings.TrimSpace(rec.Lang)),
		Link:       strings.TrimSpace(rec.Link),
		Visible:    true,
		IngestedAt: now,
	}, nil
}

func (n *Normalizer) published(rec domain.RawRecord, now time.Time) time.Time {
	if rec.PostedAt != nil && !rec.PostedAt.IsZero() {
		return rec.PostedAt.In(n.tz.Reference)
	}
	if t, ok := ResolveTimestamp(rec.TimeHint, now, n.tz); ok {
		return t
	}
	log.Printf("[DEBUG] no usable time for %s (hint %+v), using ingestion time", rec.ExternalID, rec.TimeHint)
	return now
}

// cleanText strips markup, unescapes entities and trims whitespace on every line
func (n *Normalizer) cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(n.policy.Sanitize(s))
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	res := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(res) > 0 {
				res = append(res, "")
			}
			blank = true
			continue
		}
		blank = false
		res = append(res, line)
	}
	return strings.TrimSpace(strings.Join(res, "\n"))
}
