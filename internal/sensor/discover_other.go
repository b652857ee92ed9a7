//go:build !linux

package sensor

import (
	"fmt"
	"runtime"
)

// discover has no hardware to offer outside Linux; configure sensor.path instead.
func discover() (string, error) {
	return "", fmt.Errorf("thermal zones are not exposed on %s: %w", runtime.GOOS, ErrNoSensor)
}
