package meal

import (
	"fmt"
	"time"
)

// DateLayout is the ISO form dates are submitted in.
const DateLayout = "2006-01-02"

var weekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// ParseDate parses a submitted YYYY-MM-DD date as a calendar day.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// FormatDate renders an ISO date as "<year>년 <month>월 <day>일 (<weekday>)".
func FormatDate(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d년 %d월 %d일 (%s)", t.Year(), int(t.Month()), t.Day(), weekdays[t.Weekday()]), nil
}

// Today returns the current date in loc as YYYY-MM-DD.
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(DateLayout)
}
