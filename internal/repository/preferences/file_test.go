package preferences

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/domain/profile"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	p, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, p)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns the same profile.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "prefs.json")
	repo := NewFileRepository(file)
	require.Equal(t, file, repo.Path())

	want := &profile.UserProfile{
		Username:             "Sam",
		ProfileImageLocation: "/data/profile_picture.jpg",
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	contents, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"profile_image_uri_or_path"`)

	_, err = os.Stat(file + ".tmp")
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Error(t, repo.Save(context.Background(), nil))
}

// TestFileRepository_PartialDocument fills missing keys with defaults.
func TestFileRepository_PartialDocument(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"profile_image_uri_or_path": "/x.jpg"}`), config.DefaultFilePermissions))

	got, err := NewFileRepository(file).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Lexi", got.Username)
	require.Equal(t, "/x.jpg", got.ProfileImageLocation)
}

// TestFileRepository_Corrupted reports a decoding error.
func TestFileRepository_Corrupted(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(file, []byte("{"), config.DefaultFilePermissions))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

// TestFromStruct ignores values of the wrong kind.
func TestFromStruct(t *testing.T) {
	t.Parallel()

	s, err := structpb.NewStruct(map[string]any{
		"username":                  42,
		"profile_image_uri_or_path": "/pic.jpg",
	})
	require.NoError(t, err)

	got := FromStruct(s)
	require.Equal(t, "Lexi", got.Username)
	require.Equal(t, "/pic.jpg", got.ProfileImageLocation)

	require.Equal(t, profile.Default(), FromStruct(nil))
}
