// Package avatar imports a picked profile picture into the data directory.
//
// The picture replaces profile_picture.jpg in one step with checksum
// verification, so readers never see a half-written image.
package avatar

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/tempwatch/internal/config"
	"github.com/oshokin/tempwatch/internal/logger"
)

// Filename is the name of the imported picture inside the data directory.
const Filename = "profile_picture.jpg"

var (
	// ErrNotImage is returned when the payload is not an image.
	ErrNotImage = errors.New("payload is not an image")
	// ErrTooLarge is returned when the payload exceeds the size limit.
	ErrTooLarge = errors.New("image is too large")
	// ErrEmpty is returned for an empty payload.
	ErrEmpty = errors.New("image is empty")
)

// Importer copies pictures into a directory.
type Importer struct {
	dir      string
	maxBytes int64
}

// NewImporter returns an importer writing into dir and accepting at most maxBytes.
func NewImporter(dir string, maxBytes int64) *Importer {
	if maxBytes <= 0 {
		maxBytes = config.DefaultAvatarMaxBytes
	}

	return &Importer{
		dir:      filepath.Clean(dir),
		maxBytes: maxBytes,
	}
}

// Target returns the absolute path of the imported picture.
func (i *Importer) Target() (string, error) {
	target, err := filepath.Abs(filepath.Join(i.dir, Filename))
	if err != nil {
		return "", fmt.Errorf("resolve picture path: %w", err)
	}

	return target, nil
}

// Import validates r and installs it as the profile picture.
// It returns the absolute path to store in the preferences.
func (i *Importer) Import(ctx context.Context, r io.Reader) (string, error) {
	path, err := i.install(r)
	if err != nil {
		logger.ErrorKV(ctx, "Profile picture import failed", "error", err)

		return "", err
	}

	logger.InfoKV(ctx, "Profile picture imported", "path", path)

	return path, nil
}

// install does the work of Import.
func (i *Importer) install(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, i.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read picture: %w", err)
	}

	switch {
	case len(data) == 0:
		return "", ErrEmpty
	case int64(len(data)) > i.maxBytes:
		return "", fmt.Errorf("%d bytes limit: %w", i.maxBytes, ErrTooLarge)
	}

	if contentType := http.DetectContentType(data); !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("detected %s: %w", contentType, ErrNotImage)
	}

	target, err := i.Target()
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}

	// go-update needs an existing target to move aside.
	if _, err = os.Stat(target); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(target, nil, config.DefaultFilePermissions); err != nil {
			return "", fmt.Errorf("create picture file: %w", err)
		}
	}

	checksum := sha256.Sum256(data)

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: config.DefaultFilePermissions,
		Checksum:   checksum[:],
		Hash:       crypto.SHA256,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return "", fmt.Errorf("install picture: %w", err)
	}

	oldFilename := target + ".old"
	if _, err = os.Stat(oldFilename); err == nil {
		_ = os.Remove(oldFilename)
	}

	return target, nil
}
