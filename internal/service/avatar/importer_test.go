package avatar

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// pngBytes encodes a tiny picture.
func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, c)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

// TestImport_InstallsAndReplaces copies the picture and replaces it on re-import.
func TestImport_InstallsAndReplaces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	importer := NewImporter(dir, 0)
	ctx := context.Background()

	first := pngBytes(t, color.White)

	path, err := importer.Import(ctx, bytes.NewReader(first))
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(path))
	require.Equal(t, Filename, filepath.Base(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, first, got)

	second := pngBytes(t, color.Black)

	path, err = importer.Import(ctx, bytes.NewReader(second))
	require.NoError(t, err)

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, second, got)

	_, err = os.Stat(path + ".old")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestImport_Rejects covers empty, oversized and non-image payloads.
func TestImport_Rejects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	_, err := NewImporter(dir, 0).Import(ctx, strings.NewReader(""))
	require.ErrorIs(t, err, ErrEmpty)

	_, err = NewImporter(dir, 0).Import(ctx, strings.NewReader("just some text"))
	require.ErrorIs(t, err, ErrNotImage)

	_, err = NewImporter(dir, 8).Import(ctx, bytes.NewReader(pngBytes(t, color.White)))
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = os.Stat(filepath.Join(dir, Filename))
	require.ErrorIs(t, err, os.ErrNotExist)
}
