package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	minutesRe  = regexp.MustCompile(`^\d+$`)
	durationRe = regexp.MustCompile(`(?i)^(?:(\d+)\s*h(?:ours?|rs?)?)?\s*(?:(\d+)\s*m(?:in(?:utes?|s)?)?)?$`)
	clockRe    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// StartInput is the set of request fields a start time can come from.
type StartInput struct {
	StartTime string // RFC3339, wins when set
	Date      string // 2006-01-02
	Time      string // 15:04
	Timezone  string // IANA name, defaults to UTC
}

// DurationMinutes parses a duration such as "90", "45m", "2h" or "1h30m" into
// whole minutes.
func DurationMinutes(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if minutesRe.MatchString(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		return positive(n, raw)
	}

	m := durationRe.FindStringSubmatch(strings.ReplaceAll(s, " ", ""))
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("unable to parse duration: %q", raw)
	}
	total := 0
	if m[1] != "" {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m[2] != "" {
		min, _ := strconv.Atoi(m[2])
		total += min
	}
	return positive(total, raw)
}

func positive(n int, raw string) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", raw)
	}
	return n, nil
}

// StartTime resolves a reservation start from either an RFC3339 timestamp or
// a local date and wall-clock time in the given timezone. The result is UTC.
func StartTime(in StartInput) (time.Time, error) {
	if s := strings.TrimSpace(in.StartTime); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid start_time %q: %w", s, err)
		}
		return t.UTC(), nil
	}

	date := strings.TrimSpace(in.Date)
	clock := strings.TrimSpace(in.Time)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("either start_time or date and time are required")
	}

	m := clockRe.FindStringSubmatch(clock)
	if m == nil {
		return time.Time{}, fmt.Errorf("unable to parse time of day: %q", clock)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("time of day out of range: %q", clock)
	}

	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc).UTC(), nil
}
