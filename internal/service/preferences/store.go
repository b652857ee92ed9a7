// Package preferences owns the in-process user profile.
//
// Store keeps the latest persisted profile behind a broadcast property for
// reactive reads and funnels writes through a single writer goroutine, so
// writes are applied in submission order and the last one wins.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oshokin/tempwatch/internal/broadcast"
	"github.com/oshokin/tempwatch/internal/domain/profile"
	"github.com/oshokin/tempwatch/internal/logger"
	repo "github.com/oshokin/tempwatch/internal/repository/preferences"
)

// writeQueueSize bounds the number of pending writes.
const writeQueueSize = 16

// ErrStoreClosed is returned for writes submitted after the writer stopped.
var ErrStoreClosed = errors.New("preferences store is closed")

// writeRequest is one queued field update.
type writeRequest struct {
	ctx    context.Context //nolint:containedctx // Carries the caller's logger to the writer.
	field  profile.Field
	value  string
	result chan error
}

// Store is the preferences collaborator of the server.
type Store struct {
	repo     repo.Repository
	property *broadcast.Property[profile.UserProfile]
	writes   chan writeRequest
	done     chan struct{}

	// mu orders submissions against the shutdown of the writer.
	mu     sync.RWMutex
	closed bool
}

// NewStore loads the persisted profile. A missing file yields defaults.
func NewStore(ctx context.Context, repository repo.Repository) (*Store, error) {
	current := profile.Default()

	if repository != nil {
		loaded, err := repository.Load(ctx)

		switch {
		case err == nil:
			if loaded != nil {
				current = *loaded
			}
		case errors.Is(err, repo.ErrNotFound):
			logger.Info(ctx, "No saved preferences, using defaults")
		default:
			return nil, fmt.Errorf("load preferences: %w", err)
		}
	}

	return &Store{
		repo:     repository,
		property: broadcast.NewProperty(current),
		writes:   make(chan writeRequest, writeQueueSize),
		done:     make(chan struct{}),
	}, nil
}

// Profile returns the latest successfully written profile.
func (s *Store) Profile() profile.UserProfile {
	return s.property.Value()
}

// Subscribe streams the current profile and every later change until ctx is done.
func (s *Store) Subscribe(ctx context.Context) <-chan profile.UserProfile {
	return s.property.Subscribe(ctx)
}

// Write queues an update of field and returns a channel delivering its
// single result. Callers may ignore the channel.
func (s *Store) Write(ctx context.Context, field profile.Field, value string) <-chan error {
	result := make(chan error, 1)

	if _, err := profile.Default().With(field, value); err != nil {
		result <- err
		close(result)

		return result
	}

	request := writeRequest{
		ctx:    ctx,
		field:  field,
		value:  value,
		result: result,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		result <- ErrStoreClosed
		close(result)

		return result
	}

	select {
	case s.writes <- request:
	case <-s.done:
		result <- ErrStoreClosed
		close(result)
	case <-ctx.Done():
		result <- ctx.Err()
		close(result)
	}

	return result
}

// Set writes field and waits for the outcome.
func (s *Store) Set(ctx context.Context, field profile.Field, value string) error {
	select {
	case err := <-s.Write(ctx, field, value):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run applies queued writes until ctx is done. Pending writes are failed
// with ErrStoreClosed.
func (s *Store) Run(ctx context.Context) {
	defer func() {
		close(s.done)

		// Wait for in-flight submissions, then fail whatever they queued.
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		for {
			select {
			case request := <-s.writes:
				request.result <- ErrStoreClosed
				close(request.result)
			default:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case request := <-s.writes:
			err := s.apply(request)
			request.result <- err
			close(request.result)
		}
	}
}

// apply persists one update and publishes it on success.
func (s *Store) apply(request writeRequest) error {
	ctx := request.ctx

	updated, err := s.property.Value().With(request.field, request.value)
	if err != nil {
		return err
	}

	if s.repo != nil {
		if err = s.repo.Save(ctx, &updated); err != nil {
			logger.ErrorKV(ctx, "Failed to persist preferences", "field", request.field, "error", err)

			return fmt.Errorf("persist preferences: %w", err)
		}
	}

	s.property.Update(updated)

	logger.InfoKV(ctx, "Preferences updated", "field", request.field)

	return nil
}
