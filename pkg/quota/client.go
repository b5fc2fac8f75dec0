// Package quota implements the adapter for the quota-limited REST API.
package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/RadhiFadlillah/whatlanggo"
	"github.com/dustin/go-humanize"
	log "github.com/go-pkgz/lgr"

	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/ratelimit"
)

// Limiter grants calls against quota categories
type Limiter interface {
	Permit(category string) bool
	Exhaust(category string)
}

// TokenFunc returns the current bearer token, empty if not configured
type TokenFunc func(ctx context.Context) (string, error)

// StaticToken makes a TokenFunc returning a fixed token
func StaticToken(token string) TokenFunc {
	return func(context.Context) (string, error) { return token, nil }
}

// ClientOptions configure the api client
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	MaxResults int
	Languages  []string // allowed language tags, empty allows all
	HTTPClient *http.Client
}

// Client talks to the user lookup and timeline endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxResults int
	languages  map[string]bool
	limiter    Limiter
	token      TokenFunc

	mu       sync.Mutex
	rejected string // token the api answered 401/403 for
}

// UserInfo is the result of a user lookup
type UserInfo struct {
	ID       string
	Name     string
	Username string
}

// NewClient makes a client, nil token func means no credentials
func NewClient(limiter Limiter, token TokenFunc, opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.twitter.com"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	switch {
	case opts.MaxResults <= 0:
		opts.MaxResults = 10
	case opts.MaxResults < 5:
		opts.MaxResults = 5
	case opts.MaxResults > 100:
		opts.MaxResults = 100
	}
	if token == nil {
		token = StaticToken("")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	langs := map[string]bool{}
	for _, l := range opts.Languages {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			langs[l] = true
		}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: httpClient,
		timeout:    opts.Timeout,
		maxResults: opts.MaxResults,
		languages:  langs,
		limiter:    limiter,
		token:      token,
	}
}

// Ready reports whether the client can make calls: a token is set and was not rejected
func (c *Client) Ready(ctx context.Context) error {
	_, err := c.currentToken(ctx)
	return err
}

// LookupUser resolves a handle to the api user
func (c *Client) LookupUser(ctx context.Context, handle string) (*UserInfo, error) {
	var resp struct {
		Data *struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"data"`
		Errors []apiErrorItem `json:"errors"`
	}

	path := "/2/users/by/username/" + url.PathEscape(handle)
	query := url.Values{"user.fields": {"name,username"}}
	if err := c.get(ctx, ratelimit.CategoryUserLookup, path, query, &resp); err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", handle, err)
	}
	if resp.Data == nil || resp.Data.ID == "" {
		if notFound(resp.Errors) || len(resp.Errors) == 0 {
			return nil, fmt.Errorf("lookup user %s: %w", handle, ErrUserNotFound)
		}
		return nil, fmt.Errorf("lookup user %s: %s", handle, resp.Errors[0].message())
	}
	return &UserInfo{ID: resp.Data.ID, Name: resp.Data.Name, Username: resp.Data.Username}, nil
}

// Timeline is one page of user records
type Timeline struct {
	Records  []domain.RawRecord // oldest first, allowed languages only
	NewestID string             // newest id of the page, dropped records included
	Dropped  int
}

// FetchTimeline returns the user records newer than sinceID.
// Records in languages outside the allow-list are dropped but still count for NewestID.
func (c *Client) FetchTimeline(ctx context.Context, userID, sinceID string) (*Timeline, error) {
	query := url.Values{
		"tweet.fields": {"created_at,public_metrics,lang"},
		"expansions":   {"attachments.media_keys"},
		"media.fields": {"url,preview_image_url"},
		"max_results":  {strconv.Itoa(c.maxResults)},
	}
	if sinceID != "" {
		query.Set("since_id", sinceID)
	}

	var resp timelineResponse
	if err := c.get(ctx, ratelimit.CategoryTimeline, "/2/users/"+url.PathEscape(userID)+"/tweets", query, &resp); err != nil {
		return nil, fmt.Errorf("fetch timeline %s: %w", userID, err)
	}
	if len(resp.Data) == 0 && notFound(resp.Errors) {
		return nil, fmt.Errorf("fetch timeline %s: %w", userID, ErrUserNotFound)
	}

	media := make(map[string]string, len(resp.Includes.Media))
	for _, m := range resp.Includes.Media {
		switch {
		case m.URL != "":
			media[m.MediaKey] = m.URL
		case m.PreviewImageURL != "":
			media[m.MediaKey] = m.PreviewImageURL
		}
	}

	tl := &Timeline{Records: make([]domain.RawRecord, 0, len(resp.Data))}
	// api returns newest first
	for i := len(resp.Data) - 1; i >= 0; i-- {
		tw := resp.Data[i]
		if tl.NewestID == "" || domain.CompareExternalIDs(tw.ID, tl.NewestID) > 0 {
			tl.NewestID = tw.ID
		}
		lang := c.language(tw.Lang, tw.Text)
		if !c.allowed(lang) {
			tl.Dropped++
			continue
		}
		rec := domain.RawRecord{ExternalID: tw.ID, Text: tw.Text, Lang: lang}
		if !tw.CreatedAt.IsZero() {
			posted := tw.CreatedAt
			rec.PostedAt = &posted
		}
		if pm := tw.PublicMetrics; pm != nil {
			likes, shares, replies := pm.LikeCount, pm.RetweetCount+pm.QuoteCount, pm.ReplyCount
			rec.Engagement = domain.Engagement{Likes: &likes, Shares: &shares, Replies: &replies}
			if pm.ImpressionCount != nil {
				views := *pm.ImpressionCount
				rec.Engagement.Views = &views
			}
		}
		if tw.Attachments != nil {
			for _, key := range tw.Attachments.MediaKeys {
				if u, ok := media[key]; ok {
					rec.MediaURL = u
					break
				}
			}
		}
		tl.Records = append(tl.Records, rec)
	}
	if tl.Dropped > 0 {
		log.Printf("[DEBUG] timeline %s: dropped %d records outside allowed languages", userID, tl.Dropped)
	}
	return tl, nil
}

// language returns the record language, detecting it from text when the api could not tell
func (c *Client) language(tag, text string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag != "" && tag != "und" {
		return tag
	}
	if detected := whatlanggo.Detect(text).Lang.Iso6391(); detected != "" {
		return detected
	}
	return "und"
}

func (c *Client) allowed(lang string) bool {
	return len(c.languages) == 0 || c.languages[lang]
}

func (c *Client) currentToken(ctx context.Context) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	if token == "" {
		return "", domain.ErrNotConfigured
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rejected != "" && c.rejected == token {
		return "", domain.ErrUnauthorized
	}
	return token, nil
}

// get makes a GET call consuming one unit of the category and decodes the json response
func (c *Client) get(ctx context.Context, category, path string, query url.Values, out any) error {
	token, err := c.currentToken(ctx)
	if err != nil {
		return err
	}
	if !c.limiter.Permit(category) {
		return domain.ErrQuotaExceeded
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.limiter.Exhaust(category)
		log.Printf("[WARN] api rate limited on %s%s", category, resetHint(resp.Header.Get("x-rate-limit-reset")))
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body), Err: domain.ErrQuotaExceeded}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		c.mu.Lock()
		c.rejected = token
		c.mu.Unlock()
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body), Err: domain.ErrUnauthorized}
	case resp.StatusCode == http.StatusNotFound:
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body), Err: ErrUserNotFound}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// resetHint formats the unix reset time header for logs
func resetHint(header string) string {
	sec, err := strconv.ParseInt(strings.TrimSpace(header), 10, 64)
	if err != nil || sec <= 0 {
		return ""
	}
	return ", resets " + humanize.Time(time.Unix(sec, 0))
}
