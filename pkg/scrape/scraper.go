// Package scrape implements the adapter for public channel listings served as html pages.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/go-pkgz/lgr"
	"golang.org/x/net/html/charset"

	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/ratelimit"
)

const maxPageSize = 10 * 1024 * 1024

// Limiter grants calls against a quota category
type Limiter interface {
	Permit(category string) bool
}

// Selectors describe where message parts live on the listing page
type Selectors struct {
	Container string
	PostAttr  string
	Text      string
	Time      string
	DateText  string
	Author    string
	Views     string
	Media     string
}

// DefaultSelectors match the public t.me/s/<channel> preview pages
func DefaultSelectors() Selectors {
	return Selectors{
		Container: ".tgme_widget_message",
		PostAttr:  "data-post",
		Text:      ".tgme_widget_message_text",
		Time:      "time",
		DateText:  ".tgme_widget_message_date",
		Author:    ".tgme_widget_message_owner_name",
		Views:     ".tgme_widget_message_views",
		Media:     ".tgme_widget_message_photo_wrap",
	}
}

// Options for the scraper, zero values are replaced by defaults
type Options struct {
	URLTemplate        string // listing url, {handle} is replaced with the source handle
	UserAgent          string
	Timeout            time.Duration
	MinRequestInterval time.Duration // politeness delay between requests to one host
	Selectors          Selectors
	Client             *http.Client
}

// Scraper fetches and parses channel listings
type Scraper struct {
	opts    Options
	client  *http.Client
	limiter Limiter
	hosts   *hostLimiter
}

var (
	reBreak      = regexp.MustCompile(`(?i)<br\s*/?>`)
	reBackground = regexp.MustCompile(`background-image:\s*url\(\s*['"]?([^'")]+)['"]?\s*\)`)
	reCount      = regexp.MustCompile(`^([\d.,]+)\s*([KkMmBb]?)$`)
)

// New makes a scraper consuming the "scrape" category of the limiter
func New(limiter Limiter, opts Options) *Scraper {
	if opts.URLTemplate == "" {
		opts.URLTemplate = "https://t.me/s/{handle}"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; Tradescope/1.0)"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	opts.Selectors = opts.Selectors.withDefaults()
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Scraper{opts: opts, client: client, limiter: limiter, hosts: newHostLimiter(opts.MinRequestInterval)}
}

// Fetch loads the listing of the source and extracts raw records from it.
// Blocks without an id or text are skipped and counted, they never fail the batch.
func (s *Scraper) Fetch(ctx context.Context, src domain.Source) (*domain.FetchResult, error) {
	pageURL := s.listingURL(src.Handle)
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse listing url %q: %w", pageURL, err)
	}

	if !s.limiter.Permit(ratelimit.CategoryScrape) {
		return nil, fmt.Errorf("scrape %s: %w", src.Handle, domain.ErrQuotaExceeded)
	}

	if err := s.hosts.wait(ctx, u.Host); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", u.Host, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req, s.opts.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageSize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("decode charset: %w", err)}
	}

	res, err := s.parse(body, u)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	log.Printf("[DEBUG] scraped %s: %d records, %d skipped", pageURL, len(res.Records), res.Skipped)
	return res, nil
}

func (s *Scraper) listingURL(handle string) string {
	return strings.ReplaceAll(s.opts.URLTemplate, "{handle}", url.PathEscape(handle))
}

// parse extracts records from the listing html, page is used to build absolute links
func (s *Scraper) parse(r io.Reader, page *url.URL) (*domain.FetchResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	res := &domain.FetchResult{}
	doc.Find(s.opts.Selectors.Container).Each(func(i int, block *goquery.Selection) {
		rec, ok := s.parseBlock(block, page)
		if !ok {
			log.Printf("[DEBUG] skip block %d on %s", i, page)
			res.Skipped++
			return
		}
		res.Records = append(res.Records, rec)
	})
	return res, nil
}

// parseBlock extracts one record, returns false if the block has no id or no text
func (s *Scraper) parseBlock(block *goquery.Selection, page *url.URL) (rec domain.RawRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WARN] panic parsing block on %s: %v", page, r)
			ok = false
		}
	}()

	sel := s.opts.Selectors
	id := strings.TrimSpace(block.AttrOr(sel.PostAttr, ""))
	if id == "" {
		return domain.RawRecord{}, false
	}

	textSel := block.Find(sel.Text).First()
	if strings.TrimSpace(textSel.Text()) == "" {
		return domain.RawRecord{}, false
	}
	textHTML, err := textSel.Html()
	if err != nil {
		return domain.RawRecord{}, false
	}

	rec = domain.RawRecord{
		ExternalID: id,
		Text:       reBreak.ReplaceAllString(textHTML, "\n"),
		Author:     strings.TrimSpace(block.Find(sel.Author).First().Text()),
		MediaURL:   s.mediaURL(block),
	}

	timeSel := block.Find(sel.Time).First()
	dateSel := block.Find(sel.DateText).First()
	rec.TimeHint.Datetime = strings.TrimSpace(timeSel.AttrOr("datetime", ""))
	rec.TimeHint.Text = strings.TrimSpace(timeSel.Text())
	if rec.TimeHint.Text == "" {
		rec.TimeHint.Text = strings.TrimSpace(dateSel.Text())
	}

	rec.Link = strings.TrimSpace(dateSel.AttrOr("href", ""))
	if rec.Link == "" {
		rec.Link = page.Scheme + "://" + page.Host + "/" + id
	}

	if views, ok := parseCount(block.Find(sel.Views).First().Text()); ok {
		rec.Engagement.Views = &views
	}
	return rec, true
}

func (s *Scraper) mediaURL(block *goquery.Selection) string {
	style := block.Find(s.opts.Selectors.Media).First().AttrOr("style", "")
	if m := reBackground.FindStringSubmatch(style); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// parseCount converts counters like "950", "1.2K" or "3M" to numbers
func parseCount(s string) (int64, bool) {
	m := reCount.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	digits := m[1]
	if m[2] == "" {
		digits = strings.ReplaceAll(digits, ",", "") // thousands separator
	} else {
		digits = strings.ReplaceAll(digits, ",", ".")
	}
	num, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		num *= 1e3
	case "M":
		num *= 1e6
	case "B":
		num *= 1e9
	}
	return int64(num + 0.5), true
}

func (s Selectors) withDefaults() Selectors {
	def := DefaultSelectors()
	if s.Container == "" {
		s.Container = def.Container
	}
	if s.PostAttr == "" {
		s.PostAttr = def.PostAttr
	}
	if s.Text == "" {
		s.Text = def.Text
	}
	if s.Time == "" {
		s.Time = def.Time
	}
	if s.DateText == "" {
		s.DateText = def.DateText
	}
	if s.Author == "" {
		s.Author = def.Author
	}
	if s.Views == "" {
		s.Views = def.Views
	}
	if s.Media == "" {
		s.Media = def.Media
	}
	return s
}
