// Package lockfile keeps two interactive sessions from sharing one
// database. The lock holds "PID|executable"; a lock whose process is gone
// or now runs a different program is stale and gets replaced.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/logger"
)

// ErrLocked is returned when a live process holds the lock.
var ErrLocked = errors.New("another moodlit session is running")

var (
	findProcessFunc = ps.FindProcess
	currentPID      = os.Getpid
)

type Lock struct {
	path string
	pid  int
}

// Path returns the lockfile location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.LockfileName)
}

// Acquire takes the lock in dir, replacing a stale one. The lockfile is
// created exclusively, so of two sessions racing for it only one wins.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	path := Path(dir)
	pid := currentPID()
	content := []byte(fmt.Sprintf("%d|%s", pid, executableName()))

	for attempt := 0; attempt < 2; attempt++ {
		err := create(path, content)
		if err == nil {
			return &Lock{path: path, pid: pid}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to write lockfile: %w", err)
		}

		holder, err := readHolder(path)
		switch {
		case err == nil && holder.pid == pid:
			return &Lock{path: path, pid: pid}, nil
		case err == nil && holder.alive():
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, holder.pid)
		case err == nil:
			logger.Debug("Replacing stale lock", "path", path, "pid", holder.pid)
		case os.IsNotExist(err):
			continue
		default:
			logger.Warn("Ignoring unreadable lock", "path", path, "error", err)
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}

	// Another session replaced the stale lock first
	return nil, ErrLocked
}

func create(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Release removes the lock if this process still owns it.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	holder, err := readHolder(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if holder.pid != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

type holder struct {
	pid        int
	executable string
}

func readHolder(path string) (holder, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return holder{}, err
	}

	parts := strings.SplitN(strings.TrimSpace(string(content)), "|", 2)
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return holder{}, errors.New("invalid process ID in lockfile")
	}

	h := holder{pid: pid}
	if len(parts) == 2 {
		h.executable = parts[1]
	}
	return h, nil
}

// alive reports whether the recorded process still runs the recorded
// executable. PIDs get reused, so a bare PID match is not enough.
func (h holder) alive() bool {
	process, err := findProcessFunc(h.pid)
	if err != nil || process == nil {
		return false
	}
	return h.executable == "" || process.Executable() == h.executable
}

func executableName() string {
	process, err := findProcessFunc(currentPID())
	if err == nil && process != nil {
		return process.Executable()
	}
	return filepath.Base(os.Args[0])
}
