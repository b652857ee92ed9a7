// Package instance keeps a single tempwatch server running per host.
package instance

import (
	"errors"
	"fmt"
	"os"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

var (
	// ErrAlreadyRunning is returned when another process has the same executable name.
	ErrAlreadyRunning = errors.New("another instance is already running")
	// errEmptyName is returned when no executable name is given.
	errEmptyName = errors.New("executable name must be provided")
	// errSelfNotFound is returned when the current process is missing from the process table.
	errSelfNotFound = errors.New("current process not found")
)

// Lister returns the process table.
type Lister func() ([]ps.Process, error)

// Guard checks the process table for duplicates of the current process.
type Guard struct {
	list Lister
	pid  int
}

// Option configures a Guard.
type Option func(*Guard)

// WithLister replaces the process table source.
func WithLister(l Lister) Option {
	return func(g *Guard) {
		if l != nil {
			g.list = l
		}
	}
}

// WithPID sets the process ID treated as the current process.
func WithPID(pid int) Option {
	return func(g *Guard) {
		g.pid = pid
	}
}

// New returns a guard reading the real process table.
func New(opts ...Option) *Guard {
	g := &Guard{
		list: ps.Processes,
		pid:  os.Getpid(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Ensure fails with ErrAlreadyRunning when a process other than the current
// one runs an executable called name. Names compare case-insensitively.
func (g *Guard) Ensure(name string) error {
	if name == "" {
		return errEmptyName
	}

	processList, err := g.list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processList {
		if process.Pid() == g.pid {
			continue
		}

		if strings.EqualFold(process.Executable(), name) {
			return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, name, process.Pid())
		}
	}

	return nil
}

// Executable returns the executable name of the current process as the
// process table reports it.
func (g *Guard) Executable() (string, error) {
	processList, err := g.list()
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processList {
		if process.Pid() == g.pid {
			return process.Executable(), nil
		}
	}

	return "", errSelfNotFound
}

// EnsureSingle checks that no other process runs the current executable.
func EnsureSingle() error {
	g := New()

	name, err := g.Executable()
	if err != nil {
		return err
	}

	return g.Ensure(name)
}
