package settings

import (
	"testing"
	"time"
)

// 2026-01-05 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2026, 1, 5, hour, minute, 0, 0, time.UTC)
}

func TestAwayWindow_Contains(t *testing.T) {
	overnight := AwayWindow{
		StartHour: 23,
		EndHour:   6,
		Days:      []int{0}, // Monday only
		Enabled:   true,
	}

	tests := []struct {
		name   string
		window AwayWindow
		at     time.Time
		want   bool
	}{
		{
			name:   "same-day window inside",
			window: AwayWindow{StartHour: 9, EndHour: 17, Days: []int{0}, Enabled: true},
			at:     mondayAt(12, 0),
			want:   true,
		},
		{
			name:   "same-day window at start is inclusive",
			window: AwayWindow{StartHour: 9, EndHour: 17, Days: []int{0}, Enabled: true},
			at:     mondayAt(9, 0),
			want:   true,
		},
		{
			name:   "same-day window at end is exclusive",
			window: AwayWindow{StartHour: 9, EndHour: 17, Days: []int{0}, Enabled: true},
			at:     mondayAt(17, 0),
			want:   false,
		},
		{
			name:   "wrong day",
			window: AwayWindow{StartHour: 9, EndHour: 17, Days: []int{1}, Enabled: true},
			at:     mondayAt(12, 0),
			want:   false,
		},
		{
			name:   "disabled window never matches",
			window: AwayWindow{StartHour: 9, EndHour: 17, Days: []int{0}, Enabled: false},
			at:     mondayAt(12, 0),
			want:   false,
		},
		{
			name:   "zero-length window never matches",
			window: AwayWindow{StartHour: 9, EndHour: 9, Days: []int{0}, Enabled: true},
			at:     mondayAt(9, 0),
			want:   false,
		},
		{
			name:   "overnight window before midnight",
			window: overnight,
			at:     mondayAt(23, 30),
			want:   true,
		},
		{
			name:   "overnight window after midnight matches the start day",
			window: overnight,
			at:     mondayAt(2, 0).AddDate(0, 0, 1), // Tuesday 02:00
			want:   true,
		},
		{
			name:   "overnight window outside span",
			window: overnight,
			at:     mondayAt(12, 0),
			want:   false,
		},
		{
			name:   "overnight window same-day early morning is previous day's span",
			window: overnight,
			at:     mondayAt(2, 0), // Monday 02:00 belongs to Sunday's window
			want:   false,
		},
		{
			name: "overnight window end is exclusive",
			window: AwayWindow{
				StartHour: 23, EndHour: 6,
				Days:    []int{0},
				Enabled: true,
			},
			at:   mondayAt(6, 0).AddDate(0, 0, 1), // Tuesday 06:00
			want: false,
		},
		{
			name: "minutes are honored",
			window: AwayWindow{
				StartHour: 8, StartMinute: 30,
				EndHour: 9, EndMinute: 15,
				Days:    []int{0},
				Enabled: true,
			},
			at:   mondayAt(8, 29),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.window.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestInAnyWindow(t *testing.T) {
	windows := []AwayWindow{
		{StartHour: 9, EndHour: 12, Days: []int{0}, Enabled: true},
		{StartHour: 14, EndHour: 18, Days: []int{0}, Enabled: true},
	}

	if !InAnyWindow(mondayAt(10, 0), windows) {
		t.Error("expected 10:00 to fall inside the first window")
	}
	if InAnyWindow(mondayAt(13, 0), windows) {
		t.Error("expected 13:00 to fall between windows")
	}
	if !InAnyWindow(mondayAt(15, 0), windows) {
		t.Error("expected 15:00 to fall inside the second window")
	}
	if InAnyWindow(mondayAt(15, 0), nil) {
		t.Error("expected no match with no windows")
	}
}
