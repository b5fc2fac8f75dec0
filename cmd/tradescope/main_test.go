package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/tradescope/pkg/config"
	"github.com/umputun/tradescope/pkg/ratelimit"
)

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "non-existent-config.yml"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	tmpFile := t.TempDir() + "/invalid.yml"
	require.NoError(t, os.WriteFile(tmpFile, []byte("invalid: yaml: content: ["), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: tmpFile})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_IngestEndToEnd(t *testing.T) {
	page, err := os.ReadFile("../../pkg/scrape/testdata/channel.html")
	require.NoError(t, err)
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/s/marketnews" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	defer site.Close()

	t.Setenv("DB_PATH", t.TempDir())
	t.Setenv("SCRAPE_URL", site.URL)
	t.Setenv("QUOTA_TOKEN", "")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	api := "http://" + addr

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, Opts{Config: "testdata/test_config.yml", Listen: addr}) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(api + "/ping")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond, "server did not start")

	resp, err := http.Post(api+"/api/v1/sources", "application/json",
		strings.NewReader(`{"platform":"scraped_feed","handle":"@MarketNews"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// the scheduled first tick may still be running
	require.Eventually(t, func() bool {
		resp, err := http.Post(api+"/api/v1/refresh/scraped_feed", "application/json", http.NoBody)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusAccepted
	}, 5*time.Second, 50*time.Millisecond)

	var msgs []struct {
		ExternalID string `json:"external_id"`
		Platform   string `json:"platform"`
		Body       string `json:"body"`
	}
	require.Eventually(t, func() bool {
		resp, err := http.Get(api + "/api/v1/messages")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		msgs = nil
		return json.NewDecoder(resp.Body).Decode(&msgs) == nil && len(msgs) == 2
	}, 5*time.Second, 50*time.Millisecond, "refresh did not ingest the listing")
	ids := []string{msgs[0].ExternalID, msgs[1].ExternalID}
	assert.ElementsMatch(t, []string{"marketnews/118", "marketnews/120"}, ids)

	var status struct {
		Platforms []struct {
			Platform string `json:"platform"`
			State    string `json:"state"`
			Sources  int    `json:"sources"`
		} `json:"platforms"`
	}
	getJSON(t, api+"/api/v1/status", &status)
	require.Len(t, status.Platforms, 2)
	assert.Equal(t, "scraped_feed", status.Platforms[0].Platform)
	assert.Equal(t, 1, status.Platforms[0].Sources)
	assert.Equal(t, "disabled", status.Platforms[1].State)

	var limits map[string]ratelimit.Usage
	getJSON(t, api+"/api/v1/ratelimits", &limits)
	assert.Equal(t, 100, limits[ratelimit.CategoryScrape].Limit)
	assert.GreaterOrEqual(t, limits[ratelimit.CategoryScrape].Used, 1)

	rssResp, err := http.Get(api + "/rss/scraped_feed")
	require.NoError(t, err)
	body, err := io.ReadAll(rssResp.Body)
	require.NoError(t, err)
	_ = rssResp.Body.Close()
	assert.Contains(t, string(body), "scraped_feed:marketnews/118")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestRateRules(t *testing.T) {
	rules := rateRules(map[string]config.RateLimitConfig{
		"timeline": {Window: 15 * time.Minute, Limit: 1},
		"scrape":   {Window: time.Hour, Limit: 120},
	})
	assert.Equal(t, ratelimit.Rule{Window: 15 * time.Minute, Limit: 1}, rules[ratelimit.CategoryTimeline])
	assert.Equal(t, ratelimit.Rule{Window: time.Hour, Limit: 120}, rules[ratelimit.CategoryScrape])
}

func TestSetupLog(t *testing.T) {
	t.Run("debug mode enabled", func(t *testing.T) {
		SetupLog(true)
	})

	t.Run("debug mode disabled", func(t *testing.T) {
		SetupLog(false)
	})

	t.Run("with secrets", func(t *testing.T) {
		SetupLog(true, "secret1", "secret2")
	})
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // test url
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, fmt.Sprintf("GET %s", url))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
