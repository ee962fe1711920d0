// utils/dates.go
package utils

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingDateTime = errors.New("date or time missing")
	ErrInvalidDateTime = errors.New("date or time unparseable")
	startTimeLayouts   = []string{"15:04", "15:04:05"}
	bookingDateLayouts = []string{"2006-01-02", time.RFC3339}
	compactStampLayout = "010220061504"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// CombineDateTime joins a YYYY-MM-DD date and an HH:mm[:ss] time.
func CombineDateTime(date, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, ErrMissingDateTime
	}

	var day time.Time
	var err error
	for _, layout := range bookingDateLayouts {
		if day, err = time.Parse(layout, date); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}

	var tod time.Time
	for _, layout := range startTimeLayouts {
		if tod, err = time.Parse(layout, clock); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}

	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, time.UTC), nil
}

// CompactStamp formats t as MMDDYYYYHHmm.
func CompactStamp(t time.Time) string {
	return t.Format(compactStampLayout)
}
