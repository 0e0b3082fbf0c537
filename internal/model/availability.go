package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day with minute precision, stored as minutes past midnight.
type Clock int

const minutesPerDay = 24 * 60

var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3 PM", "3PM"}

// ParseClock accepts 24-hour ("14:30", "14:30:00") and 12-hour ("2:30 PM") forms.
// Seconds are dropped.
func ParseClock(s string) (Clock, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClock(t.Hour(), t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) Valid() bool { return c >= 0 && c < minutesPerDay }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("clock out of range: %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the week in form order, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday matches full names and three-letter abbreviations, ignoring case.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Weekdays {
		name := strings.ToLower(string(d))
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return d, true
		}
	}
	return "", false
}

// Window is one weekday's contact/tour availability.
type Window struct {
	Available bool  `json:"available"`
	Start     Clock `json:"start"`
	End       Clock `json:"end"`
}

// Availability maps every weekday to its window. Values built with
// NewAvailability always carry all seven keys.
type Availability map[Weekday]Window

func NewAvailability() Availability {
	a := make(Availability, len(Weekdays))
	for _, d := range Weekdays {
		a[d] = Window{}
	}
	return a
}

// Complete reports whether all seven weekdays are present and nothing else.
func (a Availability) Complete() bool {
	if len(a) != len(Weekdays) {
		return false
	}
	for _, d := range Weekdays {
		if _, ok := a[d]; !ok {
			return false
		}
	}
	return true
}

// Check verifies completeness and the end >= start rule for available days.
func (a Availability) Check() error {
	if !a.Complete() {
		return fmt.Errorf("availability has %d of %d weekdays", len(a), len(Weekdays))
	}
	for _, d := range Weekdays {
		w := a[d]
		if !w.Start.Valid() || !w.End.Valid() {
			return fmt.Errorf("%s: time out of range", d)
		}
		if w.Available && w.End < w.Start {
			return fmt.Errorf("%s: end %s before start %s", d, w.End, w.Start)
		}
	}
	return nil
}

// Encode produces the text-encoded blob stored in the availability column.
func (a Availability) Encode() (string, error) {
	if err := a.Check(); err != nil {
		return "", err
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeAvailability parses a stored blob and rejects anything missing a weekday.
func DecodeAvailability(s string) (Availability, error) {
	var a Availability
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return nil, err
	}
	if err := a.Check(); err != nil {
		return nil, err
	}
	return a, nil
}

// Summary renders available days compactly, e.g. "Mon 09:00-17:00, Sat 10:00-12:00".
func (a Availability) Summary() string {
	var parts []string
	for _, d := range Weekdays {
		w, ok := a[d]
		if !ok || !w.Available {
			continue
		}
		parts = append(parts, string(d)[:3]+" "+w.Start.String()+"-"+w.End.String())
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// ClockFromMinutes converts a bare minutes-past-midnight number.
func ClockFromMinutes(v int64) (Clock, error) {
	c := Clock(v)
	if !c.Valid() {
		return 0, fmt.Errorf("minutes out of range: %s", strconv.FormatInt(v, 10))
	}
	return c, nil
}
