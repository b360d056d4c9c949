// Package proclock provides cross-process mutual exclusion for document
// files. Possession is a sidecar marker file beside the document, created
// with the filesystem's create-exclusive primitive; the marker body is JSON
// metadata identifying the holder so a later process can tell a live lock
// from a stale one. Stale markers are never reclaimed silently, only via
// the explicit ForceReclaim path.
package proclock

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/agentic-research/deckguard/internal/logging"
)

// Marker is the JSON body of a lock marker file.
type Marker struct {
	Token      string    `json:"token"`
	PID        int       `json:"pid"`
	Host       string    `json:"host"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Token represents possession of the exclusive lock on one path.
// Created by Acquire, consumed by Release.
type Token struct {
	id     string
	path   string
	marker string
}

// Path returns the locked document path.
func (t *Token) Path() string { return t.path }

// Status describes the lock marker for a path, if any.
type Status struct {
	Held       bool
	Stale      bool
	StaleWhy   string // "holder_dead" | "expired" | ""
	Age        time.Duration
	Marker     *Marker
	MarkerPath string
}

// Locker acquires and releases locks with fixed retry/staleness tuning.
type Locker struct {
	RetryInterval time.Duration
	StaleAfter    time.Duration

	log *logging.Logger
}

// New returns a Locker. Zero tuning values fall back to 100ms retry and a
// 10 minute staleness threshold.
func New(retryInterval, staleAfter time.Duration) *Locker {
	if retryInterval <= 0 {
		retryInterval = 100 * time.Millisecond
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &Locker{
		RetryInterval: retryInterval,
		StaleAfter:    staleAfter,
		log:           logging.Named("proclock"),
	}
}

// MarkerPath returns the deterministic marker location for a document path:
// ".<filename>.lock" in the same directory. Every process computing the
// same document path computes the same marker.
func MarkerPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".lock")
}

// Acquire blocks until the lock is obtained, ctx is done, or timeout
// elapses. The wait is a bounded poll; arrival order between waiters is not
// guaranteed.
func (l *Locker) Acquire(ctx context.Context, path string, timeout time.Duration) (*Token, error) {
	marker := MarkerPath(path)
	deadline := time.Now().Add(timeout)

	for {
		tok, err := l.tryAcquire(path, marker)
		if err == nil {
			return tok, nil
		}
		if !os.IsExist(err) {
			// Not contention: permission or I/O trouble. Retrying won't help,
			// so this must not look like a LockTimeout.
			if _, ok := errs.As(err); ok {
				return nil, err
			}
			return nil, errs.Wrapf(err, errs.CodeInternal, "create lock marker %s", marker)
		}

		if time.Now().After(deadline) {
			return nil, l.timeoutError(path, marker, timeout)
		}
		select {
		case <-ctx.Done():
			return nil, errs.Wrapf(ctx.Err(), errs.CodeLockTimeout, "lock wait canceled for %s", path)
		case <-time.After(l.RetryInterval):
		}
	}
}

// tryAcquire attempts one atomic exclusive create. The create itself is the
// mutual-exclusion point; the metadata write happens after we already own
// the marker.
func (l *Locker) tryAcquire(path, marker string) (*Token, error) {
	f, err := os.OpenFile(marker, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	host, _ := os.Hostname()
	m := Marker{
		Token:      uuid.NewString(),
		PID:        os.Getpid(),
		Host:       host,
		AcquiredAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(&m, "", "  ")
	if err == nil {
		_, err = f.Write(data)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// We own the marker but could not record who we are; back out.
		_ = os.Remove(marker)
		return nil, errs.Wrapf(err, errs.CodeInternal, "write lock marker %s", marker)
	}

	l.log.Debug().Str("path", path).Str("token", m.Token).Msg("lock acquired")
	return &Token{id: m.Token, path: path, marker: marker}, nil
}

// Release deletes the marker belonging to tok. A token only deletes its own
// marker: if the marker on disk records a different token, Release refuses.
// Deletion failure is logged and returned, but callers treat it as
// non-fatal best-effort cleanup.
func (l *Locker) Release(tok *Token) error {
	if tok == nil {
		return nil
	}
	if m, err := readMarker(tok.marker); err == nil && m.Token != tok.id {
		l.log.Warn().Str("path", tok.path).Str("marker_token", m.Token).
			Msg("marker owned by another token; refusing release")
		return errs.Newf(errs.CodeInternal, "lock marker for %s no longer owned by this token", tok.path)
	}
	if err := os.Remove(tok.marker); err != nil && !os.IsNotExist(err) {
		l.log.Warn().Err(err).Str("marker", tok.marker).Msg("failed to remove lock marker")
		return err
	}
	l.log.Debug().Str("path", tok.path).Msg("lock released")
	return nil
}

// Stat inspects the marker for path without touching it.
func (l *Locker) Stat(path string) (*Status, error) {
	marker := MarkerPath(path)
	info, err := os.Stat(marker)
	if os.IsNotExist(err) {
		return &Status{MarkerPath: marker}, nil
	}
	if err != nil {
		return nil, err
	}

	st := &Status{Held: true, MarkerPath: marker, Age: time.Since(info.ModTime())}
	m, err := readMarker(marker)
	if err != nil {
		// Unreadable marker counts as expired-by-age only.
		if st.Age > l.StaleAfter {
			st.Stale, st.StaleWhy = true, "expired"
		}
		return st, nil
	}
	st.Marker = m
	st.Age = time.Since(m.AcquiredAt)

	host, _ := os.Hostname()
	switch {
	case m.Host == host && !processAlive(m.PID):
		st.Stale, st.StaleWhy = true, "holder_dead"
	case st.Age > l.StaleAfter:
		st.Stale, st.StaleWhy = true, "expired"
	}
	return st, nil
}

// ForceReclaim removes the marker for path only when Stat reports it stale.
// This is the explicit, opt-in recovery path for crashed holders.
func (l *Locker) ForceReclaim(path string) error {
	st, err := l.Stat(path)
	if err != nil {
		return err
	}
	if !st.Held {
		return nil
	}
	if !st.Stale {
		return errs.Newf(errs.CodeLockTimeout, "lock on %s appears live (held %s); refusing reclaim", path, st.Age.Round(time.Second))
	}
	l.log.Warn().Str("path", path).Str("reason", st.StaleWhy).Msg("reclaiming stale lock")
	if err := os.Remove(st.MarkerPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// timeoutError decorates a LockTimeout with whatever the marker reveals
// about the current holder, including a staleness verdict so operators know
// ForceReclaim is available.
func (l *Locker) timeoutError(path, marker string, timeout time.Duration) error {
	details := map[string]any{"path": path, "timeout": timeout.String()}
	if st, err := l.Stat(path); err == nil && st.Held {
		if st.Marker != nil {
			details["holder_pid"] = st.Marker.PID
			details["holder_host"] = st.Marker.Host
		}
		if st.Stale {
			details["stale"] = st.StaleWhy
		}
	}
	return errs.NewD(errs.CodeLockTimeout, "could not acquire exclusive lock", details)
}

func readMarker(marker string) (*Marker, error) {
	data, err := os.ReadFile(marker)
	if err != nil {
		return nil, err
	}
	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// processAlive reports whether a PID is running on this host.
// On Unix, FindProcess always succeeds; signal 0 probes liveness.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
