package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/tradescope/pkg/clock"
	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/ratelimit"
)

func newTestLimiter(scrapeLimit int) *ratelimit.Limiter {
	clk := clock.NewFake(time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC))
	return ratelimit.New(clk, map[string]ratelimit.Rule{
		ratelimit.CategoryScrape: {Window: time.Hour, Limit: scrapeLimit},
	})
}

func TestScraper_Fetch(t *testing.T) {
	page, err := os.ReadFile("testdata/channel.html")
	require.NoError(t, err)

	var gotPath, gotUA, gotLang string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	defer ts.Close()

	s := New(newTestLimiter(10), Options{URLTemplate: ts.URL + "/s/{handle}", UserAgent: "test-agent"})
	res, err := s.Fetch(context.Background(), domain.Source{Platform: domain.PlatformScrapedFeed, Handle: "marketnews"})
	require.NoError(t, err)

	assert.Equal(t, "/s/marketnews", gotPath)
	assert.Equal(t, "test-agent", gotUA)
	assert.NotEmpty(t, gotLang)

	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Skipped) // 119 has no text

	first := res.Records[0]
	assert.Equal(t, "marketnews/118", first.ExternalID)
	assert.Equal(t, "Market News", first.Author)
	assert.Contains(t, first.Text, "\nGold flat")
	assert.Contains(t, first.Text, "<b>+2.1%</b>")
	assert.Equal(t, "2026-05-04T06:30:00+00:00", first.TimeHint.Datetime)
	assert.Equal(t, "09:30", first.TimeHint.Text)
	assert.Equal(t, "https://t.me/marketnews/118", first.Link)
	assert.Equal(t, "https://cdn4.example.org/file/photo118.jpg", first.MediaURL)
	require.NotNil(t, first.Engagement.Views)
	assert.Equal(t, int64(1200), *first.Engagement.Views)

	second := res.Records[1]
	assert.Equal(t, "marketnews/120", second.ExternalID)
	assert.Empty(t, second.TimeHint.Datetime)
	assert.Equal(t, "10:02", second.TimeHint.Text)
	assert.Empty(t, second.MediaURL)
	require.NotNil(t, second.Engagement.Views)
	assert.Equal(t, int64(15), *second.Engagement.Views)
	assert.Equal(t, "marketnews/120", domain.NewestExternalID(res.Records))
}

func TestScraper_MalformedBlockDoesNotAbortBatch(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 1; i <= 10; i++ {
		if i == 3 {
			// no post reference, no text
			sb.WriteString(`<div class="tgme_widget_message"><div class="broken"><span>`)
			continue
		}
		fmt.Fprintf(&sb, `<div class="tgme_widget_message" data-post="chan/%d"><div class="tgme_widget_message_text">msg %d</div>`+
			`<a class="tgme_widget_message_date" href="/chan/%d"><time datetime="2026-05-04T0%d:00:00+00:00">x</time></a></div>`, i, i, i, i%10)
	}
	sb.WriteString("</body></html>")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sb.String()))
	}))
	defer ts.Close()

	s := New(newTestLimiter(10), Options{URLTemplate: ts.URL + "/s/{handle}"})
	res, err := s.Fetch(context.Background(), domain.Source{Handle: "chan"})
	require.NoError(t, err)
	assert.Len(t, res.Records, 9)
	assert.Equal(t, 1, res.Skipped)
	for _, rec := range res.Records {
		assert.NotEqual(t, "chan/3", rec.ExternalID)
		assert.NotEmpty(t, rec.Text)
	}
}

func TestScraper_QuotaExceeded(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer ts.Close()

	s := New(newTestLimiter(1), Options{URLTemplate: ts.URL + "/s/{handle}"})
	_, err := s.Fetch(context.Background(), domain.Source{Handle: "a"})
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), domain.Source{Handle: "b"})
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "denied call must not reach the server")
}

func TestScraper_FetchErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()

		s := New(newTestLimiter(10), Options{URLTemplate: ts.URL + "/s/{handle}"})
		_, err := s.Fetch(context.Background(), domain.Source{Handle: "a"})
		var fe *FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
		assert.True(t, fe.Transient())
		assert.Contains(t, fe.Error(), "status 502")
	})

	t.Run("not found is permanent", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		defer ts.Close()

		s := New(newTestLimiter(10), Options{URLTemplate: ts.URL + "/s/{handle}"})
		_, err := s.Fetch(context.Background(), domain.Source{Handle: "a"})
		var fe *FetchError
		require.True(t, errors.As(err, &fe))
		assert.False(t, fe.Transient())
	})

	t.Run("timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}))
		defer ts.Close()

		s := New(newTestLimiter(10), Options{URLTemplate: ts.URL + "/s/{handle}", Timeout: 50 * time.Millisecond})
		_, err := s.Fetch(context.Background(), domain.Source{Handle: "a"})
		var fe *FetchError
		require.True(t, errors.As(err, &fe))
		assert.Zero(t, fe.StatusCode)
		assert.True(t, fe.Transient())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestScraper_Charset(t *testing.T) {
	// "Привет" in windows-1251
	body := []byte("<html><body><div class=\"tgme_widget_message\" data-post=\"c/1\"><div class=\"tgme_widget_message_text\">" +
		"\xcf\xf0\xe8\xe2\xe5\xf2</div></div></body></html>")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		_, _ = w.Write(body)
	}))
	defer ts.Close()

	s := New(newTestLimiter(10), Options{URLTemplate: ts.URL + "/{handle}"})
	res, err := s.Fetch(context.Background(), domain.Source{Handle: "c"})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Привет", res.Records[0].Text)
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "http://"+u.Host+"/c/1", res.Records[0].Link)
}

func TestScraper_PolitenessDelay(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer ts.Close()

	s := New(newTestLimiter(10), Options{URLTemplate: ts.URL + "/{handle}", MinRequestInterval: 100 * time.Millisecond})
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := s.Fetch(context.Background(), domain.Source{Handle: "c"})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 190*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Fetch(ctx, domain.Source{Handle: "c"})
	require.Error(t, err)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"950", 950, true},
		{"1.2K", 1200, true},
		{"1,5K", 1500, true},
		{" 3M ", 3000000, true},
		{"12,345", 12345, true},
		{"", 0, false},
		{"views", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseCount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectors_WithDefaults(t *testing.T) {
	sel := Selectors{Container: ".post"}.withDefaults()
	assert.Equal(t, ".post", sel.Container)
	assert.Equal(t, DefaultSelectors().Text, sel.Text)
	assert.Equal(t, "data-post", sel.PostAttr)
}
