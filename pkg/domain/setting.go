package domain

import "time"

// Setting represents a key-value configuration setting
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// setting keys managed through the settings store
const (
	SettingQuotaToken          = "quota_api.bearer_token"
	SettingQuotaEnabled        = "quota_api.enabled"
	SettingScrapedEnabled      = "scraped_feed.enabled"
	SettingQuotaPollInterval   = "quota_api.poll_interval"
	SettingScrapedPollInterval = "scraped_feed.poll_interval"
)

// KnownSettings lists keys accepted by the settings api
var KnownSettings = []string{
	SettingQuotaToken, SettingQuotaEnabled, SettingScrapedEnabled,
	SettingQuotaPollInterval, SettingScrapedPollInterval,
}

// EnabledSettingKey returns the settings key holding the enabled flag of the platform
func EnabledSettingKey(p Platform) string {
	if p == PlatformQuotaAPI {
		return SettingQuotaEnabled
	}
	return SettingScrapedEnabled
}

// IntervalSettingKey returns the settings key holding the poll interval of the platform
func IntervalSettingKey(p Platform) string {
	if p == PlatformQuotaAPI {
		return SettingQuotaPollInterval
	}
	return SettingScrapedPollInterval
}
