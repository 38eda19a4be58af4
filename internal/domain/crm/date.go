package crm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

// CalendarDate is a day without a time of day, stored as a SQL date and
// serialized as YYYY-MM-DD.
type CalendarDate struct {
	datatypes.Date
}

func NewDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Date: datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))}
}

// DateOf takes the calendar day of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d CalendarDate) Time() time.Time {
	t := time.Time(d.Date)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (d CalendarDate) String() string {
	return d.Time().Format(DateLayout)
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *CalendarDate) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		*d = DateOf(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	*d = DateOf(t)
	return nil
}
