package temperature

import "time"

// State is the position of the latest sample relative to the threshold.
type State int

const (
	// Below means the latest sample is under the threshold and no alert is pending.
	Below State = iota
	// AboveAlerted means the latest sample is at or over the threshold and
	// the alert for this excursion was raised.
	AboveAlerted
)

// String returns the state name used in logs and on the wire.
func (s State) String() string {
	switch s {
	case Below:
		return "below"
	case AboveAlerted:
		return "above_alerted"
	default:
		return "unknown"
	}
}

// Transition describes the effect of one observed sample.
type Transition struct {
	From   State
	To     State
	Sample float64
	// Alert is set only on Below -> AboveAlerted.
	Alert bool
}

// Monitor tracks the latest sample and the one-shot alert flag.
// It is not safe for concurrent use; samples must be observed sequentially.
type Monitor struct {
	threshold float64
	latest    float64
	alertSent bool
}

// NewMonitor returns a monitor in the Below state with initial as latest sample.
func NewMonitor(threshold, initial float64) *Monitor {
	return &Monitor{
		threshold: threshold,
		latest:    initial,
	}
}

// Observe records sample and moves the state machine.
func (m *Monitor) Observe(sample float64) Transition {
	t := Transition{
		From:   m.State(),
		Sample: sample,
	}

	m.latest = sample

	switch {
	case sample >= m.threshold && !m.alertSent:
		m.alertSent = true
		t.Alert = true
	case sample < m.threshold:
		m.alertSent = false
	}

	t.To = m.State()

	return t
}

// State reports the current state.
func (m *Monitor) State() State {
	if m.alertSent {
		return AboveAlerted
	}

	return Below
}

// Latest returns the most recent sample.
func (m *Monitor) Latest() float64 {
	return m.latest
}

// AlertSent reports whether the current excursion has been alerted.
func (m *Monitor) AlertSent() bool {
	return m.alertSent
}

// Threshold returns the configured threshold.
func (m *Monitor) Threshold() float64 {
	return m.threshold
}

// Reading is the observable snapshot published after every sample.
type Reading struct {
	// Celsius is the latest sample.
	Celsius float64
	// Threshold is the monitor threshold at the time of the sample.
	Threshold float64
	// State is the monitor state after the sample.
	State State
	// AlertSent mirrors the one-shot flag.
	AlertSent bool
	// Source names the sample producer.
	Source string
	// Timestamp is when the sample was handled. Zero for the initial reading.
	Timestamp time.Time
}

// Snapshot builds a Reading of the monitor for the given source and time.
func (m *Monitor) Snapshot(source string, at time.Time) Reading {
	return Reading{
		Celsius:   m.latest,
		Threshold: m.threshold,
		State:     m.State(),
		AlertSent: m.alertSent,
		Source:    source,
		Timestamp: at,
	}
}
