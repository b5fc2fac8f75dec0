package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies an external content source
type Platform string

const (
	// PlatformScrapedFeed is a public channel listing scraped as HTML
	PlatformScrapedFeed Platform = "scraped_feed"
	// PlatformQuotaAPI is a quota-limited REST API
	PlatformQuotaAPI Platform = "quota_api"
)

// Platforms lists all supported platforms in a stable order
var Platforms = []Platform{PlatformScrapedFeed, PlatformQuotaAPI}

// ParsePlatform converts a string to a known platform
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformScrapedFeed, PlatformQuotaAPI:
		return p, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// Source represents a tracked channel handle or platform user
type Source struct {
	ID             int64
	Platform       Platform
	Handle         string
	PlatformUserID string // resolved by the quota api, empty until looked up
	DisplayName    string
	Active         bool
	Cursor         string // last-seen external message id
	LastPolled     *time.Time
	LastError      string
	ErrorCount     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Name returns a human-readable identifier for the source
func (s Source) Name() string {
	if s.DisplayName != "" {
		return fmt.Sprintf("%s (%s/%s)", s.DisplayName, s.Platform, s.Handle)
	}
	return fmt.Sprintf("%s/%s", s.Platform, s.Handle)
}

// NormalizeHandle strips url prefixes and the leading @ and lower-cases the handle
func NormalizeHandle(handle string) string {
	h := strings.TrimSpace(handle)
	for _, prefix := range []string{"https://", "http://", "www.", "t.me/s/", "t.me/", "x.com/", "twitter.com/"} {
		h = strings.TrimPrefix(h, prefix)
	}
	h = strings.TrimPrefix(h, "@")
	h = strings.Trim(h, "/")
	return strings.ToLower(h)
}

// SourceUpdate carries source metadata discovered by an adapter during a fetch
type SourceUpdate struct {
	PlatformUserID string
	DisplayName    string
}
