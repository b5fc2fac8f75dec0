// Package scheduler runs one polling job per platform. Each job walks the active sources
// of its platform, fetches them through the platform adapter, normalizes and stores
// the records and moves the source cursor. A failing source never aborts the tick.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/tradescope/pkg/clock"
	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/ingest"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/source_store.go -pkg mocks -skip-ensure -fmt goimports . SourceStore
//go:generate moq -out mocks/message_store.go -pkg mocks -skip-ensure -fmt goimports . MessageStore
//go:generate moq -out mocks/normalizer.go -pkg mocks -skip-ensure -fmt goimports . Normalizer
//go:generate moq -out mocks/settings.go -pkg mocks -skip-ensure -fmt goimports . Settings

// ErrDisabled is returned by a refresh of a platform switched off in settings
var ErrDisabled = errors.New("platform disabled")

// ErrNotRunning is returned by a refresh requested before Start or after Stop
var ErrNotRunning = errors.New("scheduler not running")

// minSettingInterval guards against poll intervals set too low through settings
const minSettingInterval = 10 * time.Second

// Fetcher is a platform adapter
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) (*domain.FetchResult, error)
}

// readiness is implemented by adapters that need credentials before any call
type readiness interface {
	Ready(ctx context.Context) error
}

// SourceStore reads sources and records poll outcomes
type SourceStore interface {
	ListSources(ctx context.Context, platform *domain.Platform, activeOnly bool) ([]domain.Source, error)
	AdvanceCursor(ctx context.Context, id int64, externalID string) (bool, error)
	MarkPolled(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	UpdateMeta(ctx context.Context, id int64, upd domain.SourceUpdate) error
}

// MessageStore persists messages without duplicates
type MessageStore interface {
	SaveIfNew(ctx context.Context, msg *domain.Message) (domain.SaveResult, error)
}

// Normalizer converts raw records to messages
type Normalizer interface {
	Normalize(platform domain.Platform, rec domain.RawRecord, sc ingest.SourceContext) (domain.Message, error)
}

// Settings provides runtime settings, empty value means not set
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// Params for NewScheduler
type Params struct {
	Fetchers     map[domain.Platform]Fetcher
	Sources      SourceStore
	Messages     MessageStore
	Normalizer   Normalizer
	Settings     Settings
	Enabled      map[domain.Platform]bool // used when the enabled setting is not stored
	Clock        clock.Clock
	EventsBuffer int
}

// Scheduler manages the per-platform polling jobs
type Scheduler struct {
	fetchers   map[domain.Platform]Fetcher
	sources    SourceStore
	messages   MessageStore
	normalizer Normalizer
	settings   Settings
	enabled    map[domain.Platform]bool
	clock      clock.Clock

	jobs   map[domain.Platform]*job
	events chan domain.Event

	mu     sync.Mutex
	ctx    context.Context // canceled by Stop, refreshes run on it
	cancel context.CancelFunc
	group  *errgroup.Group
}

// job is the state of one platform
type job struct {
	running atomic.Bool
	rotator Rotator

	mu       sync.Mutex
	state    domain.PlatformState
	reason   string
	lastTick *time.Time
}

// sourceOutcome is the result of processing one source
type sourceOutcome struct {
	deferred   bool // quota denied, not attempted
	failed     bool
	inserted   int
	duplicates int
	rejected   int
	skipped    int   // dropped by the adapter before normalization
	stop       error // credentials problem, the rest of the tick is skipped
}

// NewScheduler creates a scheduler for the platforms of the given fetchers
func NewScheduler(params Params) *Scheduler {
	if params.Clock == nil {
		params.Clock = clock.System{}
	}
	if params.EventsBuffer <= 0 {
		params.EventsBuffer = 100
	}
	s := &Scheduler{
		fetchers:   params.Fetchers,
		sources:    params.Sources,
		messages:   params.Messages,
		normalizer: params.Normalizer,
		settings:   params.Settings,
		enabled:    params.Enabled,
		clock:      params.Clock,
		jobs:       make(map[domain.Platform]*job, len(params.Fetchers)),
		events:     make(chan domain.Event, params.EventsBuffer),
	}
	for p := range params.Fetchers {
		s.jobs[p] = &job{state: domain.StateIdle}
	}
	return s
}

// Start launches one polling goroutine per platform with a positive interval.
// Each job runs a tick immediately and then every interval.
func (s *Scheduler) Start(ctx context.Context, intervals map[domain.Platform]time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		lgr.Printf("[WARN] scheduler already started")
		return
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	ctx = s.ctx
	s.group = &errgroup.Group{}
	for _, p := range domain.Platforms {
		if _, ok := s.fetchers[p]; !ok {
			continue
		}
		interval := intervals[p]
		if interval <= 0 {
			lgr.Printf("[INFO] polling of %s is off, no interval", p)
			continue
		}
		s.group.Go(func() error {
			s.loop(ctx, p, interval)
			return nil
		})
		lgr.Printf("[INFO] scheduler started %s job, interval %v", p, interval)
	}
}

// Stop cancels the jobs and waits for them and for requested refreshes.
// A source being processed is finished first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, group := s.cancel, s.group
	s.ctx, s.cancel, s.group = nil, nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	lgr.Printf("[INFO] stopping scheduler...")
	cancel()
	_ = group.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// RefreshNow starts a tick of the platform on the scheduler goroutines and returns
// without waiting for it. The enabled flag and adapter readiness are checked before that,
// so a disabled or unconfigured platform is reported to the caller. Returns domain.ErrBusy
// if the platform job is running already and ErrNotRunning if the scheduler is stopped.
func (s *Scheduler) RefreshNow(ctx context.Context, platform domain.Platform) error {
	j, ok := s.jobs[platform]
	if !ok {
		return fmt.Errorf("refresh %s: no adapter", platform)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.group == nil {
		return fmt.Errorf("refresh %s: %w", platform, ErrNotRunning)
	}
	if !j.running.CompareAndSwap(false, true) {
		return domain.ErrBusy
	}
	if err := s.gate(ctx, platform, j); err != nil {
		j.running.Store(false)
		return err
	}

	runCtx := s.ctx
	s.group.Go(func() error {
		defer j.running.Store(false)
		if err := s.poll(runCtx, platform, j); err != nil {
			lgr.Printf("[WARN] refresh of %s failed: %v", platform, err)
		}
		return nil
	})
	return nil
}

// Events returns the channel of pipeline events. Events are dropped when nobody reads.
func (s *Scheduler) Events() <-chan domain.Event {
	return s.events
}

// Status returns the state of all scheduled platforms
func (s *Scheduler) Status() []domain.PlatformStatus {
	res := make([]domain.PlatformStatus, 0, len(s.jobs))
	for _, p := range domain.Platforms {
		j, ok := s.jobs[p]
		if !ok {
			continue
		}
		j.mu.Lock()
		st := domain.PlatformStatus{Platform: p, State: j.state, Reason: j.reason}
		if j.lastTick != nil {
			t := *j.lastTick
			st.LastTickAt = &t
		}
		j.mu.Unlock()
		if j.running.Load() {
			st.State = domain.StatePolling
		}
		res = append(res, st)
	}
	return res
}

func (s *Scheduler) loop(ctx context.Context, platform domain.Platform, interval time.Duration) {
	for {
		if err := s.tick(ctx, platform); err != nil && !errors.Is(err, domain.ErrBusy) {
			lgr.Printf("[DEBUG] %s tick skipped: %v", platform, err)
		}

		timer := time.NewTimer(s.interval(ctx, platform, interval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// interval returns the poll interval from settings, falling back to def
func (s *Scheduler) interval(ctx context.Context, platform domain.Platform, def time.Duration) time.Duration {
	if s.settings == nil {
		return def
	}
	val, err := s.settings.GetSetting(ctx, domain.IntervalSettingKey(platform))
	if err != nil || val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < minSettingInterval {
		lgr.Printf("[WARN] ignore %s poll interval %q, using %v", platform, val, def)
		return def
	}
	return d
}

// tick processes all active sources of the platform once
func (s *Scheduler) tick(ctx context.Context, platform domain.Platform) error {
	j := s.jobs[platform]
	if !j.running.CompareAndSwap(false, true) {
		lgr.Printf("[DEBUG] %s poll in progress, skip", platform)
		return domain.ErrBusy
	}
	defer j.running.Store(false)

	if err := s.gate(ctx, platform, j); err != nil {
		return err
	}
	return s.poll(ctx, platform, j)
}

// poll processes the active sources of the platform once. Caller holds the job flag.
func (s *Scheduler) poll(ctx context.Context, platform domain.Platform, j *job) error {
	start := s.clock.Now()
	defer func() {
		now := s.clock.Now()
		j.mu.Lock()
		j.lastTick = &now
		j.mu.Unlock()
	}()

	sources, err := s.sources.ListSources(ctx, &platform, true)
	if err != nil {
		lgr.Printf("[ERROR] failed to list %s sources: %v", platform, err)
		return fmt.Errorf("list sources: %w", err)
	}

	total := sourceOutcome{}
	processed, deferred := 0, 0
	if last := j.rotator.Last(); last != 0 {
		lgr.Printf("[DEBUG] %s rotation resumes after source %d", platform, last)
	}
	for _, src := range j.rotator.Order(sources) {
		if ctx.Err() != nil {
			lgr.Printf("[INFO] %s tick interrupted, %d of %d sources done", platform, processed, len(sources))
			break
		}
		// a started source is finished even if the scheduler is stopping
		out := s.processSource(context.WithoutCancel(ctx), platform, src)
		processed++
		// failed sources use up their turn as well
		if !out.deferred && out.stop == nil {
			j.rotator.Advance(src.ID)
		}
		if out.deferred {
			deferred++
		}
		total.inserted += out.inserted
		total.duplicates += out.duplicates
		total.rejected += out.rejected
		total.skipped += out.skipped
		if out.failed {
			total.rejected++
		}
		if out.stop != nil {
			s.applyReadiness(platform, j, out.stop)
			lgr.Printf("[WARN] %s tick stopped: %v", platform, out.stop)
			break
		}
	}

	lgr.Printf("[INFO] %s tick done in %v: %d sources, %d deferred by quota, %d new, %d duplicates, %d skipped, %d failed",
		platform, s.clock.Now().Sub(start).Round(time.Millisecond), processed, deferred, total.inserted, total.duplicates,
		total.skipped, total.rejected)
	s.publish(domain.Event{Kind: domain.EventTickDone, Platform: platform, Inserted: total.inserted,
		Duplicates: total.duplicates, Failed: total.rejected})
	return nil
}

// gate checks the enabled flag and adapter readiness, updating the job state
func (s *Scheduler) gate(ctx context.Context, platform domain.Platform, j *job) error {
	if !s.platformEnabled(ctx, platform) {
		j.setState(domain.StateDisabled, "disabled in settings")
		return fmt.Errorf("%s: %w", platform, ErrDisabled)
	}

	if r, ok := s.fetchers[platform].(readiness); ok {
		if err := r.Ready(ctx); err != nil {
			s.applyReadiness(platform, j, err)
			return fmt.Errorf("%s: %w", platform, err)
		}
	}
	j.setState(domain.StateIdle, "")
	return nil
}

// applyReadiness moves the job into the state matching a readiness error
func (s *Scheduler) applyReadiness(platform domain.Platform, j *job, err error) {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		if j.setState(domain.StateNotConfigured, "credentials not set") {
			lgr.Printf("[WARN] %s is not configured, polling skipped", platform)
			s.publish(domain.Event{Kind: domain.EventNotConfigured, Platform: platform, Err: err.Error()})
		}
	case errors.Is(err, domain.ErrUnauthorized):
		if j.setState(domain.StateDisabled, "credentials rejected, update the token") {
			lgr.Printf("[WARN] %s credentials rejected, polling disabled until the token changes", platform)
		}
	default:
		j.setState(domain.StateDisabled, err.Error())
	}
}

func (s *Scheduler) platformEnabled(ctx context.Context, platform domain.Platform) bool {
	def, ok := s.enabled[platform]
	if !ok {
		def = true
	}
	if s.settings == nil {
		return def
	}
	val, err := s.settings.GetSetting(ctx, domain.EnabledSettingKey(platform))
	if err != nil {
		lgr.Printf("[WARN] failed to read %s enabled flag: %v", platform, err)
		return def
	}
	if val == "" {
		return def
	}
	enabled, err := strconv.ParseBool(val)
	if err != nil {
		lgr.Printf("[WARN] invalid %s enabled flag %q", platform, val)
		return def
	}
	return enabled
}

// processSource fetches one source and stores its records. Panics are contained here.
func (s *Scheduler) processSource(ctx context.Context, platform domain.Platform, src domain.Source) (out sourceOutcome) {
	defer func() {
		if r := recover(); r != nil {
			lgr.Printf("[ERROR] panic processing %s: %v", src.Name(), r)
			s.markFailed(ctx, src, fmt.Errorf("panic: %v", r))
			out.failed = true
		}
	}()

	lgr.Printf("[DEBUG] polling %s, cursor %q", src.Name(), src.Cursor)
	res, err := s.fetchers[platform].Fetch(ctx, src)
	if res != nil && res.SourceUpdate != nil {
		if uerr := s.sources.UpdateMeta(ctx, src.ID, *res.SourceUpdate); uerr != nil {
			lgr.Printf("[WARN] failed to update %s metadata: %v", src.Name(), uerr)
		}
		if res.SourceUpdate.PlatformUserID != "" {
			src.PlatformUserID = res.SourceUpdate.PlatformUserID
		}
		if res.SourceUpdate.DisplayName != "" {
			src.DisplayName = res.SourceUpdate.DisplayName
		}
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQuotaExceeded):
			lgr.Printf("[DEBUG] %s deferred, quota exhausted", src.Name())
			out.deferred = true
			return out
		case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrNotConfigured):
			out.stop = err
		}
		var te interface{ Transient() bool }
		if errors.As(err, &te) && !te.Transient() {
			lgr.Printf("[ERROR] failed to fetch %s, not retryable: %v", src.Name(), err)
		} else {
			lgr.Printf("[WARN] failed to fetch %s: %v", src.Name(), err)
		}
		s.markFailed(ctx, src, err)
		out.failed = true
		return out
	}
	out.skipped = res.Skipped

	sc := ingest.SourceContext{SourceID: src.ID, Handle: src.Handle, DisplayName: src.DisplayName}
	storeFailed := false
	for _, rec := range res.Records {
		switch result, serr := s.storeRecord(ctx, platform, rec, sc); {
		case serr != nil && errors.Is(serr, errStore):
			lgr.Printf("[WARN] failed to store %s from %s: %v", rec.ExternalID, src.Name(), serr)
			storeFailed = true
			out.rejected++
		case serr != nil:
			lgr.Printf("[DEBUG] drop record %q from %s: %v", rec.ExternalID, src.Name(), serr)
			out.rejected++
		case result == domain.SaveInserted:
			out.inserted++
		default:
			out.duplicates++
		}
	}

	// refetch after a store failure, the dedup store absorbs the repeats
	newest := domain.NewestExternalID(res.Records)
	if res.NewestID != "" && (newest == "" || domain.CompareExternalIDs(res.NewestID, newest) > 0) {
		newest = res.NewestID
	}
	if newest != "" && !storeFailed {
		if _, cerr := s.sources.AdvanceCursor(ctx, src.ID, newest); cerr != nil {
			lgr.Printf("[WARN] failed to advance cursor of %s: %v", src.Name(), cerr)
		}
	}
	if perr := s.sources.MarkPolled(ctx, src.ID); perr != nil {
		lgr.Printf("[WARN] failed to mark %s polled: %v", src.Name(), perr)
	}

	if out.inserted > 0 {
		lgr.Printf("[INFO] %s: %d new, %d duplicates, %d dropped, %d skipped", src.Name(), out.inserted, out.duplicates,
			out.rejected, out.skipped)
		s.publish(domain.Event{Kind: domain.EventIngested, Platform: platform, SourceID: src.ID,
			Inserted: out.inserted, Duplicates: out.duplicates, Failed: out.rejected})
	}
	return out
}

var errStore = errors.New("store failed")

// storeRecord normalizes and saves one record, a panic affects this record only
func (s *Scheduler) storeRecord(ctx context.Context, platform domain.Platform, rec domain.RawRecord,
	sc ingest.SourceContext) (res domain.SaveResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	msg, err := s.normalizer.Normalize(platform, rec, sc)
	if err != nil {
		return domain.SaveSkipped, err
	}
	res, err = s.messages.SaveIfNew(ctx, &msg)
	if err != nil {
		return domain.SaveSkipped, fmt.Errorf("%w: %w", errStore, err)
	}
	return res, nil
}

func (s *Scheduler) markFailed(ctx context.Context, src domain.Source, err error) {
	if merr := s.sources.MarkFailed(ctx, src.ID, err.Error()); merr != nil {
		lgr.Printf("[WARN] failed to record error of %s: %v", src.Name(), merr)
	}
	s.publish(domain.Event{Kind: domain.EventSourceFailed, Platform: src.Platform, SourceID: src.ID, Err: err.Error()})
}

// publish sends the event without blocking
func (s *Scheduler) publish(ev domain.Event) {
	if ev.At.IsZero() {
		ev.At = s.clock.Now()
	}
	select {
	case s.events <- ev:
	default:
		lgr.Printf("[DEBUG] event %s for %s dropped, channel full", ev.Kind, ev.Platform)
	}
}

// setState updates the job state, returns true if it changed
func (j *job) setState(state domain.PlatformState, reason string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	changed := j.state != state
	j.state, j.reason = state, reason
	return changed
}
