// Package alert defines the notification raised once per excursion.
package alert

import (
	"time"

	"github.com/google/uuid"
)

// Alert is a fire-and-forget notification about a threshold crossing.
type Alert struct {
	// ID uniquely identifies the alert.
	ID uuid.UUID
	// Title is the fixed notification title.
	Title string
	// Message is the fixed notification body.
	Message string
	// Celsius is the sample that started the excursion.
	Celsius float64
	// Threshold is the threshold that was crossed.
	Threshold float64
	// Action is where invoking the notification takes the user.
	Action string
	// Timestamp is when the crossing was observed.
	Timestamp time.Time
}

// New returns an alert with a fresh random ID.
func New(title, message, action string, celsius, threshold float64, at time.Time) Alert {
	return Alert{
		ID:        uuid.New(),
		Title:     title,
		Message:   message,
		Celsius:   celsius,
		Threshold: threshold,
		Action:    action,
		Timestamp: at,
	}
}
