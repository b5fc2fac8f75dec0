package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/umputun/tradescope/pkg/domain"
)

// DefaultGraceMargin is how far in the future a bare HH:MM may resolve before it is moved to the previous day
const DefaultGraceMargin = 10 * time.Minute

// TimeZones holds the zones used to interpret and present timestamps
type TimeZones struct {
	Source    *time.Location // zone of datetime attributes without explicit offset
	Reference *time.Location // zone all timestamps are converted to
	Grace     time.Duration
}

var (
	reBareClock  = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)
	reFullDate   = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})[,\s]+(\d{1,2}):(\d{2})`)
	reRelativeDy = regexp.MustCompile(`(?i)(today|yesterday|сегодня|вчера)\D{0,8}(\d{1,2}):(\d{2})`)
)

// ResolveTimestamp applies the fallback chain to a time hint, the first step that succeeds wins:
//  1. machine-readable datetime, parsed in the source zone unless it has an offset
//  2. bare "HH:MM", today in the reference zone or the previous day if later than now+grace
//  3. "DD.MM.YYYY HH:MM" anywhere in the text
//  4. "today"/"yesterday" followed by "HH:MM"
//
// Returns false if nothing matched, the caller decides what to fall back to.
func ResolveTimestamp(hint domain.TimeHint, now time.Time, tz TimeZones) (time.Time, bool) {
	ref := tz.Reference
	if ref == nil {
		ref = time.Local
	}
	src := tz.Source
	if src == nil {
		src = ref
	}
	now = now.In(ref)

	if dt := strings.TrimSpace(hint.Datetime); dt != "" {
		if t, err := dateparse.ParseIn(dt, src); err == nil {
			return t.In(ref), true
		}
	}

	text := strings.TrimSpace(hint.Text)
	if text == "" {
		return time.Time{}, false
	}

	if m := reBareClock.FindStringSubmatch(text); m != nil {
		if t, ok := atClock(now, m[1], m[2]); ok {
			if t.After(now.Add(tz.Grace)) {
				t = t.AddDate(0, 0, -1)
			}
			return t, true
		}
	}

	if m := reFullDate.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		if validDate(year, month, day) && hour < 24 && minute < 60 {
			return time.Date(year, time.Month(month), day, hour, minute, 0, 0, ref), true
		}
	}

	if m := reRelativeDy.FindStringSubmatch(text); m != nil {
		if t, ok := atClock(now, m[2], m[3]); ok {
			switch strings.ToLower(m[1]) {
			case "yesterday", "вчера":
				t = t.AddDate(0, 0, -1)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// atClock returns the day of now at hh:mm
func atClock(now time.Time, hh, mm string) (time.Time, bool) {
	hour, err := strconv.Atoi(hh)
	if err != nil || hour > 23 {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute > 59 {
		return time.Time{}, false
	}
	y, mo, d := now.Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, now.Location()), true
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day
}
