// Package service is the entry point for collaborators of the ingestion core: it lists ingested
// messages, manages tracked sources and settings, and exposes platform and quota status.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/tradescope/pkg/domain"
	"github.com/umputun/tradescope/pkg/quota"
	"github.com/umputun/tradescope/pkg/ratelimit"
)

//go:generate moq -out mocks/message_store.go -pkg mocks -skip-ensure -fmt goimports . MessageStore
//go:generate moq -out mocks/source_store.go -pkg mocks -skip-ensure -fmt goimports . SourceStore
//go:generate moq -out mocks/setting_store.go -pkg mocks -skip-ensure -fmt goimports . SettingStore
//go:generate moq -out mocks/poller.go -pkg mocks -skip-ensure -fmt goimports . Poller
//go:generate moq -out mocks/rate_limits.go -pkg mocks -skip-ensure -fmt goimports . RateLimits

// ErrInvalid is returned for rejected input, wrapped with the reason
var ErrInvalid = errors.New("invalid request")

// minPollInterval is the shortest poll interval accepted through settings
const minPollInterval = 10 * time.Second

// MessageStore reads ingested messages
type MessageStore interface {
	CountMessages(ctx context.Context, sourceID int64) (int, error)
	ListLatestMessages(ctx context.Context, filter domain.MessageFilter) ([]domain.Message, error)
	SetVisibility(ctx context.Context, id int64, visible bool) error
}

// SourceStore manages tracked sources
type SourceStore interface {
	AddSource(ctx context.Context, platform domain.Platform, handle string) (*domain.Source, error)
	GetSource(ctx context.Context, id int64) (*domain.Source, error)
	ListSources(ctx context.Context, platform *domain.Platform, activeOnly bool) ([]domain.Source, error)
	DeactivateSource(ctx context.Context, id int64) error
	PurgeSource(ctx context.Context, id int64) error
}

// SettingStore keeps runtime settings
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Poller is the running ingestion scheduler
type Poller interface {
	RefreshNow(ctx context.Context, platform domain.Platform) error
	Status() []domain.PlatformStatus
	Events() <-chan domain.Event
}

// RateLimits reports quota usage
type RateLimits interface {
	Status() map[string]ratelimit.Usage
}

// Params for New
type Params struct {
	Messages MessageStore
	Sources  SourceStore
	Settings SettingStore
	Poller   Poller
	Limits   RateLimits
}

// Service implements the collaborator api of the ingestion core
type Service struct {
	messages MessageStore
	sources  SourceStore
	settings SettingStore
	poller   Poller
	limits   RateLimits
}

// New creates a service
func New(p Params) *Service {
	return &Service{messages: p.Messages, sources: p.Sources, settings: p.Settings, poller: p.Poller, limits: p.Limits}
}

// ListLatestMessages returns visible messages, newest first. A nil platform means all platforms.
func (s *Service) ListLatestMessages(ctx context.Context, platform *domain.Platform, limit int) ([]domain.Message, error) {
	msgs, err := s.messages.ListLatestMessages(ctx, domain.MessageFilter{Platform: platform, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// AddSource starts tracking a handle. An inactive source with the same handle is reactivated,
// an active one results in domain.ErrAlreadyExists.
func (s *Service) AddSource(ctx context.Context, platform domain.Platform, handle string) (*domain.Source, error) {
	if _, err := domain.ParsePlatform(string(platform)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if domain.NormalizeHandle(handle) == "" {
		return nil, fmt.Errorf("%w: empty handle", ErrInvalid)
	}

	src, err := s.sources.AddSource(ctx, platform, handle)
	if err != nil {
		return nil, fmt.Errorf("add source %s/%s: %w", platform, handle, err)
	}
	log.Printf("[INFO] tracking %s, id %d", src.Name(), src.ID)
	return src, nil
}

// RemoveSource stops tracking a source. With purge the source and its messages are deleted,
// otherwise it is deactivated and keeps its cursor and messages.
func (s *Service) RemoveSource(ctx context.Context, id int64, purge bool) error {
	src, err := s.sources.GetSource(ctx, id)
	if err != nil {
		return fmt.Errorf("get source %d: %w", id, err)
	}

	if purge {
		count, err := s.messages.CountMessages(ctx, id)
		if err != nil {
			return fmt.Errorf("count messages of source %d: %w", id, err)
		}
		if err := s.sources.PurgeSource(ctx, id); err != nil {
			return fmt.Errorf("purge source %d: %w", id, err)
		}
		log.Printf("[INFO] purged %s with %d messages", src.Name(), count)
		return nil
	}

	if err := s.sources.DeactivateSource(ctx, id); err != nil {
		return fmt.Errorf("deactivate source %d: %w", id, err)
	}
	log.Printf("[INFO] deactivated %s", src.Name())
	return nil
}

// ListSources returns tracked sources, nil platform means all
func (s *Service) ListSources(ctx context.Context, platform *domain.Platform, activeOnly bool) ([]domain.Source, error) {
	res, err := s.sources.ListSources(ctx, platform, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return res, nil
}

// GetRateLimitStatus returns quota usage per category
func (s *Service) GetRateLimitStatus() map[string]ratelimit.Usage {
	return s.limits.Status()
}

// PlatformStatus returns the scheduler state of every platform with its active source count
func (s *Service) PlatformStatus(ctx context.Context) ([]domain.PlatformStatus, error) {
	res := s.poller.Status()
	for i := range res {
		sources, err := s.sources.ListSources(ctx, &res[i].Platform, true)
		if err != nil {
			return nil, fmt.Errorf("count %s sources: %w", res[i].Platform, err)
		}
		res[i].Sources = len(sources)
	}
	return res, nil
}

// RefreshNow starts a poll of the platform in the background, domain.ErrBusy if a poll is already running
func (s *Service) RefreshNow(ctx context.Context, platform domain.Platform) error {
	log.Printf("[INFO] manual refresh of %s requested", platform)
	if err := s.poller.RefreshNow(ctx, platform); err != nil {
		return fmt.Errorf("refresh %s: %w", platform, err)
	}
	return nil
}

// SetMessageVisibility hides or shows a message in listings
func (s *Service) SetMessageVisibility(ctx context.Context, id int64, visible bool) error {
	if err := s.messages.SetVisibility(ctx, id, visible); err != nil {
		return fmt.Errorf("set visibility of message %d: %w", id, err)
	}
	return nil
}

// UpdateSetting validates and stores a runtime setting. Changes are picked up by the next tick.
func (s *Service) UpdateSetting(ctx context.Context, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case domain.SettingQuotaEnabled, domain.SettingScrapedEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a boolean, got %q", ErrInvalid, key, value)
		}
		value = strconv.FormatBool(b)
	case domain.SettingQuotaPollInterval, domain.SettingScrapedPollInterval:
		d, err := time.ParseDuration(value)
		if err != nil || d < minPollInterval {
			return fmt.Errorf("%w: %s must be a duration of at least %v, got %q", ErrInvalid, key, minPollInterval, value)
		}
		value = d.String()
	case domain.SettingQuotaToken:
	default:
		return fmt.Errorf("%w: unknown setting %q", ErrInvalid, key)
	}

	if err := s.settings.SetSetting(ctx, key, value); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	if key == domain.SettingQuotaToken {
		log.Printf("[INFO] setting %s updated", key)
		return nil
	}
	log.Printf("[INFO] setting %s set to %s", key, value)
	return nil
}

// Events returns the scheduler event stream
func (s *Service) Events() <-chan domain.Event {
	return s.poller.Events()
}

// QuotaToken returns a token source reading the bearer token from settings,
// falling back to the given token when none is stored
func (s *Service) QuotaToken(fallback string) quota.TokenFunc {
	return QuotaToken(s.settings, fallback)
}

// QuotaToken makes a token source over the settings store
func QuotaToken(settings SettingStore, fallback string) quota.TokenFunc {
	return func(ctx context.Context) (string, error) {
		token, err := settings.GetSetting(ctx, domain.SettingQuotaToken)
		if err != nil {
			return "", fmt.Errorf("read bearer token: %w", err)
		}
		if token == "" {
			return fallback, nil
		}
		return token, nil
	}
}
