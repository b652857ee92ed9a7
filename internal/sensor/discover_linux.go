//go:build linux

package sensor

import (
	"fmt"
	"path/filepath"
	"sort"
)

// thermalZoneGlob matches the kernel thermal zone temperature files.
//
//nolint:gochecknoglobals // Overridden in tests.
var thermalZoneGlob = "/sys/class/thermal/thermal_zone*/temp"

// discover returns the first readable thermal zone.
func discover() (string, error) {
	matches, err := filepath.Glob(thermalZoneGlob)
	if err != nil {
		return "", fmt.Errorf("glob thermal zones: %w", err)
	}

	sort.Strings(matches)

	for _, path := range matches {
		if _, err := readCelsius(path); err == nil {
			return path, nil
		}
	}

	return "", ErrNoSensor
}
