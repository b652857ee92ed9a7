// Package notifytest provides an alert sink for tests.
package notifytest

import (
	"context"

	"github.com/oshokin/tempwatch/internal/domain/alert"
)

// Recorder is a notify.Sink keeping every alert it receives.
// It is safe for concurrent use.
type Recorder struct {
	ch chan alert.Alert
}

// NewRecorder returns a recorder buffering up to capacity alerts.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{ch: make(chan alert.Alert, capacity)}
}

// EmitAlert stores a, dropping it when the buffer is full.
func (r *Recorder) EmitAlert(_ context.Context, a alert.Alert) {
	select {
	case r.ch <- a:
	default:
	}
}

// Alerts returns the channel of recorded alerts.
func (r *Recorder) Alerts() <-chan alert.Alert {
	return r.ch
}

// Drain returns every alert recorded so far.
func (r *Recorder) Drain() []alert.Alert {
	var result []alert.Alert

	for {
		select {
		case a := <-r.ch:
			result = append(result, a)
		default:
			return result
		}
	}
}
