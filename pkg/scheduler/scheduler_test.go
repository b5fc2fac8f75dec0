package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/tradescope/pkg/clock"
	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/ingest"
	"github.com/umputun/tradescope/pkg/ratelimit"
	"github.com/umputun/tradescope/pkg/scheduler/mocks"
)

// testEnv wires moq mocks to in-memory state
type testEnv struct {
	mu       sync.Mutex
	sources  []domain.Source
	cursors  map[int64]string
	failures map[int64][]string
	polled   map[int64]int
	meta     map[int64]domain.SourceUpdate
	messages map[string]domain.Message
	settings map[string]string

	sourceStore  *mocks.SourceStoreMock
	messageStore *mocks.MessageStoreMock
	normalizer   *mocks.NormalizerMock
	settingsMock *mocks.SettingsMock
}

func newTestEnv(sources ...domain.Source) *testEnv {
	env := &testEnv{
		sources:  sources,
		cursors:  map[int64]string{},
		failures: map[int64][]string{},
		polled:   map[int64]int{},
		meta:     map[int64]domain.SourceUpdate{},
		messages: map[string]domain.Message{},
		settings: map[string]string{},
	}

	env.sourceStore = &mocks.SourceStoreMock{
		ListSourcesFunc: func(ctx context.Context, platform *domain.Platform, activeOnly bool) ([]domain.Source, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			var res []domain.Source
			for _, s := range env.sources {
				if platform != nil && s.Platform != *platform {
					continue
				}
				if activeOnly && !s.Active {
					continue
				}
				s.Cursor = env.cursors[s.ID]
				res = append(res, s)
			}
			return res, nil
		},
		AdvanceCursorFunc: func(ctx context.Context, id int64, externalID string) (bool, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			if cur := env.cursors[id]; cur != "" && domain.CompareExternalIDs(externalID, cur) <= 0 {
				return false, nil
			}
			env.cursors[id] = externalID
			return true, nil
		},
		MarkPolledFunc: func(ctx context.Context, id int64) error {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.polled[id]++
			return nil
		},
		MarkFailedFunc: func(ctx context.Context, id int64, errMsg string) error {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.failures[id] = append(env.failures[id], errMsg)
			return nil
		},
		UpdateMetaFunc: func(ctx context.Context, id int64, upd domain.SourceUpdate) error {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.meta[id] = upd
			return nil
		},
	}

	env.messageStore = &mocks.MessageStoreMock{
		SaveIfNewFunc: func(ctx context.Context, msg *domain.Message) (domain.SaveResult, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			key := string(msg.Platform) + ":" + msg.ExternalID
			if _, ok := env.messages[key]; ok {
				return domain.SaveSkipped, nil
			}
			env.messages[key] = *msg
			return domain.SaveInserted, nil
		},
	}

	env.normalizer = &mocks.NormalizerMock{
		NormalizeFunc: func(platform domain.Platform, rec domain.RawRecord, sc ingest.SourceContext) (domain.Message, error) {
			if rec.ExternalID == "" || rec.Text == "" {
				return domain.Message{}, ingest.ErrEmptyRecord
			}
			return domain.Message{Platform: platform, ExternalID: rec.ExternalID, SourceID: sc.SourceID,
				Author: sc.DisplayName, Body: rec.Text}, nil
		},
	}

	env.settingsMock = &mocks.SettingsMock{
		GetSettingFunc: func(ctx context.Context, key string) (string, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			return env.settings[key], nil
		},
	}
	return env
}

func (env *testEnv) scheduler(fetchers map[domain.Platform]Fetcher) *Scheduler {
	return NewScheduler(Params{
		Fetchers:   fetchers,
		Sources:    env.sourceStore,
		Messages:   env.messageStore,
		Normalizer: env.normalizer,
		Settings:   env.settingsMock,
	})
}

func (env *testEnv) cursor(id int64) string {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.cursors[id]
}

func (env *testEnv) messageCount() int {
	env.mu.Lock()
	defer env.mu.Unlock()
	return len(env.messages)
}

func (env *testEnv) setSetting(key, value string) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.settings[key] = value
}

func records(prefix string, from, to int) []domain.RawRecord {
	res := make([]domain.RawRecord, 0, to-from+1)
	for i := from; i <= to; i++ {
		res = append(res, domain.RawRecord{ExternalID: fmt.Sprintf("%s/%d", prefix, i), Text: fmt.Sprintf("message %d", i)})
	}
	return res
}

// readyFetcher is a fetcher with credentials check
type readyFetcher struct {
	*mocks.FetcherMock
	ready func(ctx context.Context) error
}

func (r *readyFetcher) Ready(ctx context.Context) error { return r.ready(ctx) }

func TestScheduler_ColdStart(t *testing.T) {
	src := domain.Source{ID: 1, Platform: domain.PlatformScrapedFeed, Handle: "chan", Active: true}
	env := newTestEnv(src)
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		return &domain.FetchResult{Records: records("chan", 101, 105)}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformScrapedFeed: fetcher})

	require.NoError(t, s.tick(context.Background(), domain.PlatformScrapedFeed))

	assert.Equal(t, 5, env.messageCount())
	assert.Equal(t, "chan/105", env.cursor(1))
	assert.Equal(t, 1, env.polled[1])
	assert.Empty(t, env.failures[1])
	require.Len(t, fetcher.FetchCalls(), 1)
	assert.Empty(t, fetcher.FetchCalls()[0].Src.Cursor, "cold start has no cursor")

	events := drain(s.Events())
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventIngested, events[0].Kind)
	assert.Equal(t, 5, events[0].Inserted)
	assert.Equal(t, domain.EventTickDone, events[1].Kind)
	assert.Equal(t, 5, events[1].Inserted)
}

func TestScheduler_Idempotent(t *testing.T) {
	src := domain.Source{ID: 1, Platform: domain.PlatformScrapedFeed, Handle: "chan", Active: true}
	env := newTestEnv(src)
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		return &domain.FetchResult{Records: records("chan", 1, 5)}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformScrapedFeed: fetcher})

	require.NoError(t, s.tick(context.Background(), domain.PlatformScrapedFeed))
	drain(s.Events())
	require.NoError(t, s.tick(context.Background(), domain.PlatformScrapedFeed))

	assert.Equal(t, 5, env.messageCount())
	assert.Len(t, env.messageStore.SaveIfNewCalls(), 10)
	assert.Equal(t, "chan/5", env.cursor(1))
	assert.Equal(t, "chan/5", fetcher.FetchCalls()[1].Src.Cursor)

	events := drain(s.Events())
	require.Len(t, events, 1, "no ingested event without new messages")
	assert.Equal(t, domain.EventTickDone, events[0].Kind)
	assert.Equal(t, 0, events[0].Inserted)
	assert.Equal(t, 5, events[0].Duplicates)
}

func TestScheduler_FaultIsolation(t *testing.T) {
	a := domain.Source{ID: 1, Platform: domain.PlatformScrapedFeed, Handle: "a", Active: true}
	b := domain.Source{ID: 2, Platform: domain.PlatformScrapedFeed, Handle: "b", Active: true}
	c := domain.Source{ID: 3, Platform: domain.PlatformScrapedFeed, Handle: "c", Active: true}
	env := newTestEnv(a, b, c)

	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		switch s.Handle {
		case "a":
			recs := records("a", 1, 10)
			recs[2].Text = "" // item 3 can't be normalized
			return &domain.FetchResult{Records: recs}, nil
		case "b":
			panic("parser exploded")
		default:
			return nil, errors.New("status 502")
		}
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformScrapedFeed: fetcher})

	require.NoError(t, s.tick(context.Background(), domain.PlatformScrapedFeed))

	assert.Equal(t, 9, env.messageCount())
	assert.Equal(t, "a/10", env.cursor(1))
	assert.Len(t, fetcher.FetchCalls(), 3, "all sources attempted")
	assert.Len(t, env.failures[2], 1)
	assert.Contains(t, env.failures[2][0], "parser exploded")
	assert.Equal(t, []string{"status 502"}, env.failures[3])
	assert.Empty(t, env.failures[1])

	var failed []int64
	for _, ev := range drain(s.Events()) {
		if ev.Kind == domain.EventSourceFailed {
			failed = append(failed, ev.SourceID)
		}
	}
	assert.Equal(t, []int64{2, 3}, failed)
}

func TestScheduler_StoreFailureKeepsCursor(t *testing.T) {
	src := domain.Source{ID: 1, Platform: domain.PlatformQuotaAPI, Handle: "trader", Active: true}
	env := newTestEnv(src)
	env.cursors[1] = "100"
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		return &domain.FetchResult{Records: []domain.RawRecord{{ExternalID: "101", Text: "a"}, {ExternalID: "102", Text: "b"}}}, nil
	}}
	save := env.messageStore.SaveIfNewFunc
	env.messageStore.SaveIfNewFunc = func(ctx context.Context, msg *domain.Message) (domain.SaveResult, error) {
		if msg.ExternalID == "101" {
			return domain.SaveSkipped, errors.New("database is locked")
		}
		return save(ctx, msg)
	}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformQuotaAPI: fetcher})

	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Equal(t, 1, env.messageCount())
	assert.Equal(t, "100", env.cursor(1), "cursor not moved past a record that failed to store")
	assert.Empty(t, env.sourceStore.AdvanceCursorCalls())
}

func TestScheduler_QuotaExhaustionRoundRobin(t *testing.T) {
	a := domain.Source{ID: 1, Platform: domain.PlatformQuotaAPI, Handle: "a", Active: true}
	b := domain.Source{ID: 2, Platform: domain.PlatformQuotaAPI, Handle: "b", Active: true}
	env := newTestEnv(a, b)

	clk := clock.NewFake(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	limiter := ratelimit.New(clk, map[string]ratelimit.Rule{ratelimit.CategoryTimeline: {Window: 15 * time.Minute, Limit: 1}})

	var served []string
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		if !limiter.Permit(ratelimit.CategoryTimeline) {
			return nil, domain.ErrQuotaExceeded
		}
		served = append(served, s.Handle)
		return &domain.FetchResult{Records: []domain.RawRecord{{ExternalID: fmt.Sprintf("%d%d", s.ID, len(served)), Text: "x"}}}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformQuotaAPI: fetcher})

	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Equal(t, []string{"a"}, served, "second source denied in the same window")
	assert.Len(t, fetcher.FetchCalls(), 2)
	assert.Empty(t, env.failures, "quota denial is not a failure")
	assert.Zero(t, env.polled[2])

	// same window, nothing more to serve
	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Equal(t, []string{"a"}, served)

	clk.Advance(15 * time.Minute)
	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Equal(t, []string{"a", "b"}, served, "next window starts with the source after the last served")

	clk.Advance(15 * time.Minute)
	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Equal(t, []string{"a", "b", "a"}, served)
}

func TestScheduler_OverlappingTickSkipped(t *testing.T) {
	src := domain.Source{ID: 1, Platform: domain.PlatformScrapedFeed, Handle: "slow", Active: true}
	env := newTestEnv(src)

	entered := make(chan struct{})
	release := make(chan struct{})
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		close(entered)
		<-release
		return &domain.FetchResult{}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformScrapedFeed: fetcher})

	done := make(chan error, 1)
	go func() { done <- s.tick(context.Background(), domain.PlatformScrapedFeed) }()
	<-entered

	require.ErrorIs(t, s.tick(context.Background(), domain.PlatformScrapedFeed), domain.ErrBusy)
	status := s.Status()
	require.Len(t, status, 1)
	assert.Equal(t, domain.StatePolling, status[0].State)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, fetcher.FetchCalls(), 1, "skipped tick is not queued")
	assert.Equal(t, domain.StateIdle, s.Status()[0].State)
	assert.NotNil(t, s.Status()[0].LastTickAt)
}

func TestScheduler_UnauthorizedDisablesUntilTokenChanges(t *testing.T) {
	a := domain.Source{ID: 1, Platform: domain.PlatformQuotaAPI, Handle: "a", Active: true}
	b := domain.Source{ID: 2, Platform: domain.PlatformQuotaAPI, Handle: "b", Active: true}
	env := newTestEnv(a, b)

	var token, rejected atomic.Value
	token.Store("bad")
	rejected.Store("")
	fetcher := &readyFetcher{
		FetcherMock: &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
			if token.Load() == "bad" {
				rejected.Store("bad")
				return nil, fmt.Errorf("lookup user: %w", domain.ErrUnauthorized)
			}
			return &domain.FetchResult{Records: []domain.RawRecord{{ExternalID: fmt.Sprintf("%d", s.ID*100), Text: "ok"}}}, nil
		}},
		ready: func(ctx context.Context) error {
			if token.Load() == rejected.Load() {
				return domain.ErrUnauthorized
			}
			return nil
		},
	}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformQuotaAPI: fetcher})

	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Len(t, fetcher.FetchCalls(), 1, "tick stops after credentials are rejected")
	assert.Equal(t, domain.StateDisabled, s.Status()[0].State)

	err := s.tick(context.Background(), domain.PlatformQuotaAPI)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Len(t, fetcher.FetchCalls(), 1, "no calls while disabled")

	token.Store("good")
	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Len(t, fetcher.FetchCalls(), 3)
	assert.Equal(t, 2, env.messageCount())
	assert.Equal(t, domain.StateIdle, s.Status()[0].State)
}

func TestScheduler_NotConfigured(t *testing.T) {
	env := newTestEnv(domain.Source{ID: 1, Platform: domain.PlatformQuotaAPI, Handle: "a", Active: true})
	fetcher := &readyFetcher{
		FetcherMock: &mocks.FetcherMock{},
		ready:       func(ctx context.Context) error { return domain.ErrNotConfigured },
	}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformQuotaAPI: fetcher})

	require.ErrorIs(t, s.tick(context.Background(), domain.PlatformQuotaAPI), domain.ErrNotConfigured)
	require.ErrorIs(t, s.tick(context.Background(), domain.PlatformQuotaAPI), domain.ErrNotConfigured)
	assert.Empty(t, fetcher.FetchCalls())
	assert.Empty(t, env.sourceStore.ListSourcesCalls())

	status := s.Status()
	require.Len(t, status, 1)
	assert.Equal(t, domain.StateNotConfigured, status[0].State)

	events := drain(s.Events())
	require.Len(t, events, 1, "event published once per state change")
	assert.Equal(t, domain.EventNotConfigured, events[0].Kind)
}

func TestScheduler_DisabledInSettings(t *testing.T) {
	env := newTestEnv(domain.Source{ID: 1, Platform: domain.PlatformScrapedFeed, Handle: "a", Active: true})
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		return &domain.FetchResult{}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformScrapedFeed: fetcher})

	env.setSetting(domain.SettingScrapedEnabled, "false")
	require.ErrorIs(t, s.tick(context.Background(), domain.PlatformScrapedFeed), ErrDisabled)
	assert.Empty(t, fetcher.FetchCalls())
	assert.Equal(t, domain.StateDisabled, s.Status()[0].State)

	env.setSetting(domain.SettingScrapedEnabled, "true")
	require.NoError(t, s.tick(context.Background(), domain.PlatformScrapedFeed))
	assert.Len(t, fetcher.FetchCalls(), 1)

	require.Error(t, s.RefreshNow(context.Background(), domain.PlatformQuotaAPI), "no adapter")
}

func TestScheduler_DefaultEnabledFromParams(t *testing.T) {
	env := newTestEnv()
	fetcher := &mocks.FetcherMock{}
	s := NewScheduler(Params{
		Fetchers: map[domain.Platform]Fetcher{domain.PlatformQuotaAPI: fetcher},
		Sources:  env.sourceStore, Messages: env.messageStore, Normalizer: env.normalizer, Settings: env.settingsMock,
		Enabled: map[domain.Platform]bool{domain.PlatformQuotaAPI: false},
	})
	require.ErrorIs(t, s.tick(context.Background(), domain.PlatformQuotaAPI), ErrDisabled)

	env.setSetting(domain.SettingQuotaEnabled, "1")
	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
}

func TestScheduler_SourceUpdateApplied(t *testing.T) {
	env := newTestEnv(domain.Source{ID: 7, Platform: domain.PlatformQuotaAPI, Handle: "trader", Active: true})
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		upd := &domain.SourceUpdate{PlatformUserID: "42", DisplayName: "Trader Joe"}
		if s.Cursor != "" {
			return &domain.FetchResult{SourceUpdate: upd}, domain.ErrQuotaExceeded
		}
		return &domain.FetchResult{SourceUpdate: upd, Records: []domain.RawRecord{{ExternalID: "1800", Text: "hi"}}}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformQuotaAPI: fetcher})

	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Equal(t, domain.SourceUpdate{PlatformUserID: "42", DisplayName: "Trader Joe"}, env.meta[7])
	require.Len(t, env.normalizer.NormalizeCalls(), 1)
	assert.Equal(t, "Trader Joe", env.normalizer.NormalizeCalls()[0].Sc.DisplayName)

	// update kept even when the fetch itself was denied
	env.meta = map[int64]domain.SourceUpdate{}
	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Equal(t, "42", env.meta[7].PlatformUserID)
}

func TestScheduler_StartStop(t *testing.T) {
	src := domain.Source{ID: 1, Platform: domain.PlatformScrapedFeed, Handle: "chan", Active: true}
	env := newTestEnv(src)
	var calls int32
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		n := atomic.AddInt32(&calls, 1)
		return &domain.FetchResult{Records: records("chan", int(n), int(n))}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformScrapedFeed: fetcher, domain.PlatformQuotaAPI: &mocks.FetcherMock{}})

	s.Start(context.Background(), map[domain.Platform]time.Duration{domain.PlatformScrapedFeed: 20 * time.Millisecond})
	s.Start(context.Background(), nil) // second start ignored
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	after := atomic.LoadInt32(&calls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&calls), "no ticks after stop")
	assert.GreaterOrEqual(t, env.messageCount(), 3)
}

func TestScheduler_StopFinishesCurrentSource(t *testing.T) {
	a := domain.Source{ID: 1, Platform: domain.PlatformScrapedFeed, Handle: "a", Active: true}
	b := domain.Source{ID: 2, Platform: domain.PlatformScrapedFeed, Handle: "b", Active: true}
	env := newTestEnv(a, b)

	entered := make(chan struct{})
	release := make(chan struct{})
	var ctxErr atomic.Value
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		close(entered)
		<-release
		ctxErr.Store(fmt.Sprintf("%v", ctx.Err()))
		return &domain.FetchResult{Records: records(s.Handle, 1, 1)}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformScrapedFeed: fetcher})
	s.Start(context.Background(), map[domain.Platform]time.Duration{domain.PlatformScrapedFeed: time.Hour})
	<-entered

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	<-stopped

	assert.Equal(t, "<nil>", ctxErr.Load(), "current source runs on a non-canceled context")
	assert.Len(t, fetcher.FetchCalls(), 1, "next source not started after stop")
	assert.Equal(t, 1, env.messageCount())
	assert.Equal(t, "a/1", env.cursor(1))
}

func TestScheduler_IntervalFromSettings(t *testing.T) {
	env := newTestEnv()
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformQuotaAPI: &mocks.FetcherMock{}})
	ctx := context.Background()

	assert.Equal(t, 15*time.Minute, s.interval(ctx, domain.PlatformQuotaAPI, 15*time.Minute))
	env.setSetting(domain.SettingQuotaPollInterval, "30m")
	assert.Equal(t, 30*time.Minute, s.interval(ctx, domain.PlatformQuotaAPI, 15*time.Minute))
	env.setSetting(domain.SettingQuotaPollInterval, "1s")
	assert.Equal(t, 15*time.Minute, s.interval(ctx, domain.PlatformQuotaAPI, 15*time.Minute), "too short")
	env.setSetting(domain.SettingQuotaPollInterval, "soon")
	assert.Equal(t, 15*time.Minute, s.interval(ctx, domain.PlatformQuotaAPI, 15*time.Minute), "invalid")
}

func TestScheduler_EventsDoNotBlock(t *testing.T) {
	env := newTestEnv(domain.Source{ID: 1, Platform: domain.PlatformScrapedFeed, Handle: "a", Active: true})
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		return nil, errors.New("down")
	}}
	s := NewScheduler(Params{
		Fetchers: map[domain.Platform]Fetcher{domain.PlatformScrapedFeed: fetcher},
		Sources:  env.sourceStore, Messages: env.messageStore, Normalizer: env.normalizer, Settings: env.settingsMock,
		EventsBuffer: 1,
	})
	for i := 0; i < 5; i++ {
		require.NoError(t, s.tick(context.Background(), domain.PlatformScrapedFeed))
	}
	assert.Len(t, drain(s.Events()), 1)
	assert.Len(t, env.failures[1], 5)
}

func TestScheduler_FailingSourceTakesItsTurn(t *testing.T) {
	a := domain.Source{ID: 1, Platform: domain.PlatformQuotaAPI, Handle: "a", Active: true}
	b := domain.Source{ID: 2, Platform: domain.PlatformQuotaAPI, Handle: "b", Active: true}
	c := domain.Source{ID: 3, Platform: domain.PlatformQuotaAPI, Handle: "c", Active: true}
	env := newTestEnv(a, b, c)

	clk := clock.NewFake(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	limiter := ratelimit.New(clk, map[string]ratelimit.Rule{ratelimit.CategoryTimeline: {Window: 15 * time.Minute, Limit: 1}})

	var attempted []string
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		if !limiter.Permit(ratelimit.CategoryTimeline) {
			return nil, domain.ErrQuotaExceeded
		}
		attempted = append(attempted, s.Handle)
		if s.Handle == "b" {
			return nil, errors.New("api status 500")
		}
		return &domain.FetchResult{Records: []domain.RawRecord{{ExternalID: fmt.Sprintf("%d%d", s.ID, len(attempted)), Text: "x"}}}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformQuotaAPI: fetcher})

	for i := 0; i < 6; i++ {
		require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
		clk.Advance(15 * time.Minute)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, attempted)
	assert.Len(t, env.failures[2], 2)
	assert.Empty(t, env.failures[1])
	assert.Empty(t, env.failures[3])
	assert.Equal(t, 2, env.polled[3])
}

func TestScheduler_RefreshNow(t *testing.T) {
	a := domain.Source{ID: 1, Platform: domain.PlatformScrapedFeed, Handle: "a", Active: true}
	b := domain.Source{ID: 2, Platform: domain.PlatformScrapedFeed, Handle: "b", Active: true}
	env := newTestEnv(a, b)

	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		entered <- struct{}{}
		<-release
		return &domain.FetchResult{Records: records(s.Handle, 1, 1)}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformScrapedFeed: fetcher})
	ctx := context.Background()

	require.ErrorIs(t, s.RefreshNow(ctx, domain.PlatformScrapedFeed), ErrNotRunning)

	s.Start(ctx, nil) // no recurring jobs, refresh only
	require.NoError(t, s.RefreshNow(ctx, domain.PlatformScrapedFeed), "returns while the fetch is blocked")
	<-entered
	require.ErrorIs(t, s.RefreshNow(ctx, domain.PlatformScrapedFeed), domain.ErrBusy)
	assert.Equal(t, domain.StatePolling, s.Status()[0].State)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatal("stop returned before the refresh finished")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	<-stopped

	assert.Len(t, fetcher.FetchCalls(), 1, "refresh interrupted before the next source")
	assert.Equal(t, 1, env.messageCount())
	assert.Equal(t, "a/1", env.cursor(1))
	assert.Equal(t, domain.StateIdle, s.Status()[0].State)
	require.ErrorIs(t, s.RefreshNow(ctx, domain.PlatformScrapedFeed), ErrNotRunning)
}

func TestScheduler_RefreshNowChecksGate(t *testing.T) {
	env := newTestEnv(domain.Source{ID: 1, Platform: domain.PlatformScrapedFeed, Handle: "a", Active: true})
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		return &domain.FetchResult{Records: records("a", 1, 2)}, nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformScrapedFeed: fetcher})
	s.Start(context.Background(), nil)
	defer s.Stop()

	env.setSetting(domain.SettingScrapedEnabled, "false")
	require.ErrorIs(t, s.RefreshNow(context.Background(), domain.PlatformScrapedFeed), ErrDisabled)
	assert.Empty(t, fetcher.FetchCalls())

	env.setSetting(domain.SettingScrapedEnabled, "true")
	require.NoError(t, s.RefreshNow(context.Background(), domain.PlatformScrapedFeed), "job flag released after a rejected refresh")
	require.Eventually(t, func() bool { return env.cursor(1) == "a/2" }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, env.messageCount())
}

func TestScheduler_CursorFollowsAdapterNewestID(t *testing.T) {
	env := newTestEnv(domain.Source{ID: 1, Platform: domain.PlatformQuotaAPI, Handle: "trader", Active: true})
	results := []*domain.FetchResult{
		{Records: []domain.RawRecord{{ExternalID: "101", Text: "kept"}}, NewestID: "105", Skipped: 4},
		{NewestID: "110", Skipped: 5},
		{Records: []domain.RawRecord{{ExternalID: "112", Text: "kept"}}, NewestID: "111"},
	}
	var call int32
	fetcher := &mocks.FetcherMock{FetchFunc: func(ctx context.Context, s domain.Source) (*domain.FetchResult, error) {
		return results[atomic.AddInt32(&call, 1)-1], nil
	}}
	s := env.scheduler(map[domain.Platform]Fetcher{domain.PlatformQuotaAPI: fetcher})

	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Equal(t, "105", env.cursor(1), "filtered records move the cursor")
	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Equal(t, "110", env.cursor(1), "all records filtered")
	assert.Equal(t, "105", fetcher.FetchCalls()[1].Src.Cursor)
	require.NoError(t, s.tick(context.Background(), domain.PlatformQuotaAPI))
	assert.Equal(t, "110", fetcher.FetchCalls()[2].Src.Cursor)
	assert.Equal(t, "112", env.cursor(1), "kept record newer than the reported id")
	assert.Equal(t, 2, env.messageCount())
}

func drain(ch <-chan domain.Event) []domain.Event {
	var res []domain.Event
	for {
		select {
		case ev := <-ch:
			res = append(res, ev)
		default:
			return res
		}
	}
}
