package server

import (
	"net/http"
	"strconv"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/feed"
)

const defaultRSSLimit = 100

// rssHandler serves latest messages as RSS.
// Supports both /rss/{platform} and /rss?platform=... patterns
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("platform")
	if name == "" {
		name = r.URL.Query().Get("platform")
	}
	platform, err := platformParam(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	limit := defaultRSSLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= maxListLimit {
		limit = v
	}

	msgs, err := s.svc.ListLatestMessages(r.Context(), platform, limit)
	if err != nil {
		lgr.Printf("[ERROR] failed to get messages for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	var p domain.Platform
	if platform != nil {
		p = *platform
	}
	rss, err := feed.NewGenerator(s.config.GetBaseURL()).GenerateRSS(msgs, p)
	if err != nil {
		lgr.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		lgr.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}
