package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/tradescope/pkg/domain"
)

const maxListLimit = 500

// messageResponse is a message as returned by the api
type messageResponse struct {
	ID         int64     `json:"id"`
	Platform   string    `json:"platform"`
	ExternalID string    `json:"external_id"`
	SourceID   int64     `json:"source_id"`
	Author     string    `json:"author"`
	Body       string    `json:"body"`
	Published  time.Time `json:"published"`
	Likes      *int64    `json:"likes,omitempty"`
	Shares     *int64    `json:"shares,omitempty"`
	Replies    *int64    `json:"replies,omitempty"`
	Views      *int64    `json:"views,omitempty"`
	MediaURL   string    `json:"media_url,omitempty"`
	Lang       string    `json:"lang,omitempty"`
	Link       string    `json:"link,omitempty"`
	Visible    bool      `json:"visible"`
	IngestedAt time.Time `json:"ingested_at"`
}

// sourceResponse is a tracked source as returned by the api
type sourceResponse struct {
	ID             int64      `json:"id"`
	Platform       string     `json:"platform"`
	Handle         string     `json:"handle"`
	PlatformUserID string     `json:"platform_user_id,omitempty"`
	DisplayName    string     `json:"display_name,omitempty"`
	Active         bool       `json:"active"`
	Cursor         string     `json:"cursor,omitempty"`
	LastPolled     *time.Time `json:"last_polled,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	ErrorCount     int        `json:"error_count"`
	CreatedAt      time.Time  `json:"created_at"`
}

// platformResponse is the state of one platform
type platformResponse struct {
	Platform   string     `json:"platform"`
	State      string     `json:"state"`
	Reason     string     `json:"reason,omitempty"`
	LastTickAt *time.Time `json:"last_tick_at,omitempty"`
	Sources    int        `json:"sources"`
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID: m.ID, Platform: string(m.Platform), ExternalID: m.ExternalID, SourceID: m.SourceID,
		Author: m.Author, Body: m.Body, Published: m.Published,
		Likes: m.Engagement.Likes, Shares: m.Engagement.Shares, Replies: m.Engagement.Replies, Views: m.Engagement.Views,
		MediaURL: m.MediaURL, Lang: m.Lang, Link: m.Link, Visible: m.Visible, IngestedAt: m.IngestedAt,
	}
}

func toSourceResponse(s domain.Source) sourceResponse {
	return sourceResponse{
		ID: s.ID, Platform: string(s.Platform), Handle: s.Handle, PlatformUserID: s.PlatformUserID,
		DisplayName: s.DisplayName, Active: s.Active, Cursor: s.Cursor, LastPolled: s.LastPolled,
		LastError: s.LastError, ErrorCount: s.ErrorCount, CreatedAt: s.CreatedAt,
	}
}

// statusHandler returns server status with the state of every platform
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	platforms, err := s.svc.PlatformStatus(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] failed to get platform status: %v", err)
		renderError(w, r, err, errorCode(err))
		return
	}

	resp := make([]platformResponse, 0, len(platforms))
	for _, p := range platforms {
		resp = append(resp, platformResponse{Platform: string(p.Platform), State: string(p.State), Reason: p.Reason,
			LastTickAt: p.LastTickAt, Sources: p.Sources})
	}
	renderJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.version,
		"time":      time.Now().UTC(),
		"platforms": resp,
	})
}

// rateLimitsHandler returns quota usage per category
func (s *Server) rateLimitsHandler(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, r, http.StatusOK, s.svc.GetRateLimitStatus())
}

// listMessagesHandler returns latest visible messages, optionally of one platform
func (s *Server) listMessagesHandler(w http.ResponseWriter, r *http.Request) {
	platform, err := platformParam(r.URL.Query().Get("platform"))
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 || limit > maxListLimit {
			renderError(w, r, fmt.Errorf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
	}

	msgs, err := s.svc.ListLatestMessages(r.Context(), platform, limit)
	if err != nil {
		lgr.Printf("[ERROR] failed to list messages: %v", err)
		renderError(w, r, err, errorCode(err))
		return
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toMessageResponse(m))
	}
	renderJSON(w, r, http.StatusOK, resp)
}

// visibilityHandler hides or shows a message
func (s *Server) visibilityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid message ID"), http.StatusBadRequest)
		return
	}

	var req struct {
		Visible *bool `json:"visible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Visible == nil {
		renderError(w, r, fmt.Errorf("visible flag is required"), http.StatusBadRequest)
		return
	}

	if err := s.svc.SetMessageVisibility(r.Context(), id, *req.Visible); err != nil {
		lgr.Printf("[WARN] failed to set visibility of message %d: %v", id, err)
		renderError(w, r, err, errorCode(err))
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"id": id, "visible": *req.Visible})
}

// listSourcesHandler returns tracked sources, active only unless all=1
func (s *Server) listSourcesHandler(w http.ResponseWriter, r *http.Request) {
	platform, err := platformParam(r.URL.Query().Get("platform"))
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	sources, err := s.svc.ListSources(r.Context(), platform, !all)
	if err != nil {
		lgr.Printf("[ERROR] failed to list sources: %v", err)
		renderError(w, r, err, errorCode(err))
		return
	}

	resp := make([]sourceResponse, 0, len(sources))
	for _, src := range sources {
		resp = append(resp, toSourceResponse(src))
	}
	renderJSON(w, r, http.StatusOK, resp)
}

// addSourceHandler starts tracking a handle
func (s *Server) addSourceHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Platform string `json:"platform"`
		Handle   string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	src, err := s.svc.AddSource(r.Context(), platform, req.Handle)
	if err != nil {
		lgr.Printf("[WARN] failed to add source %s/%s: %v", platform, req.Handle, err)
		renderError(w, r, err, errorCode(err))
		return
	}
	renderJSON(w, r, http.StatusCreated, toSourceResponse(*src))
}

// removeSourceHandler deactivates a source, or deletes it with its messages when purge is set
func (s *Server) removeSourceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid source ID"), http.StatusBadRequest)
		return
	}
	purge, _ := strconv.ParseBool(r.URL.Query().Get("purge"))

	if err := s.svc.RemoveSource(r.Context(), id, purge); err != nil {
		lgr.Printf("[WARN] failed to remove source %d: %v", id, err)
		renderError(w, r, err, errorCode(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// refreshHandler starts a poll of the platform and returns without waiting for it
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	platform, err := domain.ParsePlatform(r.PathValue("platform"))
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.svc.RefreshNow(r.Context(), platform); err != nil {
		lgr.Printf("[WARN] refresh of %s failed: %v", platform, err)
		renderError(w, r, err, errorCode(err))
		return
	}
	renderJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted", "platform": string(platform)})
}

// updateSettingHandler stores a runtime setting
func (s *Server) updateSettingHandler(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	if err := s.svc.UpdateSetting(r.Context(), key, req.Value); err != nil {
		lgr.Printf("[WARN] failed to update setting %s: %v", key, err)
		renderError(w, r, err, errorCode(err))
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "key": key})
}

// platformParam parses an optional platform, nil for empty
func platformParam(v string) (*domain.Platform, error) {
	if v == "" {
		return nil, nil
	}
	p, err := domain.ParsePlatform(v)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
