package player

import (
	"time"

	"chessrules/internal/core"
)

// Clock is one side's delay+increment clock. It is not safe for
// concurrent use; the owning game serializes access.
type Clock struct {
	control     core.TimeControl
	timeLeft    time.Duration
	lastStarted time.Time
	isRunning   bool
	delayUsed   time.Duration // credited to the next Start after a restore
	now         func() time.Time
}

// ClockState is the serializable form of a clock. A running clock is
// captured as stopped at the moment of the snapshot, without increment;
// DelayUsed keeps the part of its delay already spent.
type ClockState struct {
	Control   core.TimeControl `json:"control"`
	TimeLeft  time.Duration    `json:"timeLeft"`
	DelayUsed time.Duration    `json:"delayUsed,omitempty"`
}

func NewClock(tc core.TimeControl, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{
		control:  tc,
		timeLeft: tc.Time,
		now:      now,
	}
}

// Start is ignored while the clock is already running
func (c *Clock) Start() {
	if !c.isRunning {
		c.lastStarted = c.now().Add(-c.delayUsed)
		c.delayUsed = 0
		c.isRunning = true
	}
}

// Stop charges the time used beyond the delay, then adds the increment
func (c *Clock) Stop() {
	if !c.isRunning {
		return
	}
	c.timeLeft = c.charged()
	c.timeLeft += c.control.Increment
	c.isRunning = false
}

// Suspend charges the elapsed time like Stop but grants no increment
func (c *Clock) Suspend() {
	if !c.isRunning {
		return
	}
	c.timeLeft = c.charged()
	c.isRunning = false
}

// Read returns the remaining time, never below zero
func (c *Clock) Read() time.Duration {
	left := c.timeLeft
	if c.isRunning {
		left = c.charged()
	}
	return max(left, 0)
}

func (c *Clock) Running() bool {
	return c.isRunning
}

func (c *Clock) Control() core.TimeControl {
	return c.control
}

// State snapshots the clock
func (c *Clock) State() ClockState {
	if !c.isRunning {
		return ClockState{Control: c.control, TimeLeft: c.timeLeft}
	}
	return ClockState{
		Control:   c.control,
		TimeLeft:  c.charged(),
		DelayUsed: min(c.now().Sub(c.lastStarted), c.control.Delay),
	}
}

// RestoreClock rebuilds a stopped clock from a snapshot. The next Start
// resumes the delay where the snapshot left it.
func RestoreClock(s ClockState, now func() time.Time) *Clock {
	c := NewClock(s.Control, now)
	c.timeLeft = s.TimeLeft
	c.delayUsed = min(max(s.DelayUsed, 0), s.Control.Delay)
	return c
}

// charged is timeLeft minus elapsed time over the delay
func (c *Clock) charged() time.Duration {
	elapsed := c.now().Sub(c.lastStarted)
	if elapsed > c.control.Delay {
		return c.timeLeft - (elapsed - c.control.Delay)
	}
	return c.timeLeft
}
