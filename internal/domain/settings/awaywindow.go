package settings

import "time"

// AwayWindow is a recurring weekly time span during which the operator is
// expected to be absent. Overnight spans (start after end) wrap past
// midnight. Days use the Monday=0 .. Sunday=6 convention.
//
// Policy: a window with equal start and end is zero-length and never
// matches, following the half-open [start, end) membership check.
type AwayWindow struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	StartHour   int    `json:"start_hour" validate:"gte=0,lte=23"`
	StartMinute int    `json:"start_minute" validate:"gte=0,lte=59"`
	EndHour     int    `json:"end_hour" validate:"gte=0,lte=23"`
	EndMinute   int    `json:"end_minute" validate:"gte=0,lte=59"`
	Days        []int  `json:"days" validate:"dive,gte=0,lte=6"`
	Enabled     bool   `json:"enabled"`
}

// NewAwayWindow creates an enabled window covering every day of the week.
func NewAwayWindow(label string, startHour, endHour int) AwayWindow {
	return AwayWindow{
		ID:        newID(),
		Label:     label,
		StartHour: startHour,
		EndHour:   endHour,
		Days:      []int{0, 1, 2, 3, 4, 5, 6},
		Enabled:   true,
	}
}

// weekdayIndex converts time.Weekday (Sunday=0) to the Monday=0 convention.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Contains reports whether the given instant falls inside the window.
// For an overnight window the day filter applies to the day the window
// starts on: a Monday 23:00-06:00 window matches Tuesday 02:00.
func (w AwayWindow) Contains(t time.Time) bool {
	if !w.Enabled {
		return false
	}

	day := weekdayIndex(t.Weekday())
	minute := t.Hour()*60 + t.Minute()
	start := w.StartHour*60 + w.StartMinute
	end := w.EndHour*60 + w.EndMinute

	if start <= end {
		// Same-day span, half-open: start == end never matches
		return w.hasDay(day) && start <= minute && minute < end
	}

	// Overnight span. Before midnight the window started today; after
	// midnight it started the previous day.
	if minute >= start {
		return w.hasDay(day)
	}
	if minute < end {
		return w.hasDay((day + 6) % 7)
	}
	return false
}

func (w AwayWindow) hasDay(day int) bool {
	for _, d := range w.Days {
		if d == day {
			return true
		}
	}
	return false
}

// InAnyWindow reports whether t falls inside any of the given windows.
func InAnyWindow(t time.Time, windows []AwayWindow) bool {
	for _, w := range windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}
