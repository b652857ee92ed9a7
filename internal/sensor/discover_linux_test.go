//go:build linux

package sensor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/tempwatch/internal/config"
)

// TestDiscover finds the first readable zone. It swaps a package variable,
// so it does not run in parallel.
//
//nolint:paralleltest // Mutates thermalZoneGlob.
func TestDiscover(t *testing.T) {
	original := thermalZoneGlob

	t.Cleanup(func() {
		thermalZoneGlob = original
	})

	root := t.TempDir()

	for zone, value := range map[string]string{"thermal_zone0": "n/a", "thermal_zone1": "41000"} {
		dir := filepath.Join(root, zone)
		require.NoError(t, os.MkdirAll(dir, 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "temp"), []byte(value), config.DefaultFilePermissions))
	}

	thermalZoneGlob = filepath.Join(root, "thermal_zone*", "temp")

	path, err := discover()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "thermal_zone1", "temp"), path)

	thermalZoneGlob = filepath.Join(root, "nothing*", "temp")

	_, err = discover()
	require.ErrorIs(t, err, ErrNoSensor)
}
