package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp reads "HH:MM:SS,mmm" (SRT) or "HH:MM:SS.mmm" / "MM:SS.mmm"
// (WebVTT). The hour field may have more than two digits.
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	sep := strings.LastIndexAny(s, ",.")
	if sep < 0 || len(s)-sep-1 != 3 {
		return 0, fmt.Errorf("invalid timestamp %q: want 3-digit milliseconds", s)
	}
	ms, err := parseField(s[sep+1:], s)
	if err != nil {
		return 0, err
	}

	parts := strings.Split(s[:sep], ":")
	var h, m, sec int64
	switch len(parts) {
	case 3:
		if h, err = parseField(parts[0], s); err != nil {
			return 0, err
		}
		parts = parts[1:]
		fallthrough
	case 2:
		if len(parts[0]) != 2 || len(parts[1]) != 2 {
			return 0, fmt.Errorf("invalid timestamp %q: minutes and seconds need two digits", s)
		}
		if m, err = parseField(parts[0], s); err != nil {
			return 0, err
		}
		if sec, err = parseField(parts[1], s); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	if m > 59 || sec > 59 {
		return 0, fmt.Errorf("invalid timestamp %q: field out of range", s)
	}

	if h > maxHours {
		return 0, fmt.Errorf("invalid timestamp %q: hour field out of range", s)
	}

	total := ((h*60+m)*60+sec)*1000 + ms
	return time.Duration(total) * time.Millisecond, nil
}

// maxHours keeps the millisecond total within time.Duration.
const maxHours = int64(time.Duration(math.MaxInt64)/time.Hour) - 1

func parseField(field, whole string) (int64, error) {
	if field == "" || len(field) > 18 {
		return 0, fmt.Errorf("invalid timestamp %q", whole)
	}
	for _, r := range field {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid timestamp %q", whole)
		}
	}
	v, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", whole)
	}
	return v, nil
}

// FormatTimestamp renders d with at least two hour digits; hours past 99 widen
// the field instead of wrapping. Sub-millisecond precision is truncated.
func FormatTimestamp(d time.Duration, msSep byte) string {
	if d < 0 {
		d = 0
	}
	ms := int64(d / time.Millisecond)
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, msSep, ms%1000)
}
