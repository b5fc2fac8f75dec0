package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/server/mocks"
)

func TestServer_rssHandler(t *testing.T) {
	pub := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	svc := &mocks.ServiceMock{
		ListLatestMessagesFunc: func(ctx context.Context, platform *domain.Platform, limit int) ([]domain.Message, error) {
			return []domain.Message{{ID: 1, Platform: domain.PlatformScrapedFeed, ExternalID: "chan/1", Author: "Chan",
				Body: "Brent up", Published: pub, Link: "https://t.me/chan/1"}}, nil
		},
	}
	srv := New(testConfig(":8080"), svc, "test", false)

	t.Run("all platforms", func(t *testing.T) {
		w := do(t, srv, "GET", "/rss", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/rss+xml; charset=utf-8", w.Header().Get("Content-Type"))

		parsed, err := gofeed.NewParser().ParseString(w.Body.String())
		require.NoError(t, err)
		assert.Equal(t, "Tradescope - all sources", parsed.Title)
		require.Len(t, parsed.Items, 1)
		assert.Equal(t, "Chan: Brent up", parsed.Items[0].Title)

		call := svc.ListLatestMessagesCalls()[0]
		assert.Nil(t, call.Platform)
		assert.Equal(t, 100, call.Limit)
	})

	t.Run("one platform", func(t *testing.T) {
		w := do(t, srv, "GET", "/rss/scraped_feed?limit=10", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `href="https://news.example.com/rss/scraped_feed"`)
		call := svc.ListLatestMessagesCalls()[len(svc.ListLatestMessagesCalls())-1]
		assert.Equal(t, domain.PlatformScrapedFeed, *call.Platform)
		assert.Equal(t, 10, call.Limit)
	})

	t.Run("query param", func(t *testing.T) {
		w := do(t, srv, "GET", "/rss?platform=quota_api", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Tradescope - quota_api")
	})

	t.Run("unknown platform", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(t, srv, "GET", "/rss/myspace", "").Code)
	})

	t.Run("store error", func(t *testing.T) {
		svc.ListLatestMessagesFunc = func(ctx context.Context, platform *domain.Platform, limit int) ([]domain.Message, error) {
			return nil, errors.New("db error")
		}
		w := do(t, srv, "GET", "/rss", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to generate RSS feed")
	})
}
