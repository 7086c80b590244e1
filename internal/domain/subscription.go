package domain

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func ParseDate(raw string) (time.Time, error) {
	day, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return day, nil
}

func FormatDate(day time.Time) string {
	return day.Format(DateLayout)
}

// Subscription is the list of players that play every week on the given weekday
type Subscription struct {
	Weekday   time.Weekday
	PlayerIDs []string
}

func NewSubscription(weekday time.Weekday, playerIDs []string) Subscription {
	return Subscription{
		Weekday:   weekday,
		PlayerIDs: dedupe(playerIDs),
	}
}

// Key is the lower case weekday name subscriptions are stored under
func (s Subscription) Key() string {
	return WeekdayKey(s.Weekday)
}

func WeekdayKey(weekday time.Weekday) string {
	return strings.ToLower(weekday.String())
}

func ParseWeekday(raw string) (time.Weekday, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		name := WeekdayKey(weekday)
		if normalized == name || (len(normalized) == 3 && normalized == name[:3]) {
			return weekday, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, raw)
}
