package core

import (
	"fmt"
	"time"
)

// TimeControl is a single base+increment+delay clock setting.
// The zero value means an untimed game.
type TimeControl struct {
	Time      time.Duration `json:"time"`
	Increment time.Duration `json:"increment"`
	Delay     time.Duration `json:"delay"`
}

func (tc TimeControl) Enabled() bool {
	return tc.Time > 0
}

func (tc TimeControl) String() string {
	if !tc.Enabled() {
		return "untimed"
	}
	s := fmt.Sprintf("%s+%s", FormatClock(tc.Time), tc.Increment)
	if tc.Delay > 0 {
		s += fmt.Sprintf(" d%s", tc.Delay)
	}
	return s
}

// FormatClock renders remaining time as H:MM:SS over an hour, MM:SS
// otherwise, with tenths once under ten seconds
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	case d < 10*time.Second:
		tenths := int(d % time.Second / (100 * time.Millisecond))
		return fmt.Sprintf("%02d:%02d.%d", m, s, tenths)
	default:
		return fmt.Sprintf("%02d:%02d", m, s)
	}
}
