package proclock

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deckPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.deck.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	return path
}

func TestMarkerPath(t *testing.T) {
	got := MarkerPath("/srv/decks/q3.deck.json")
	assert.Equal(t, "/srv/decks/.q3.deck.json.lock", got)
}

func TestAcquireRelease(t *testing.T) {
	l := New(10*time.Millisecond, time.Minute)
	path := deckPath(t)

	tok, err := l.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	require.FileExists(t, MarkerPath(path))

	// marker records this process
	data, err := os.ReadFile(MarkerPath(path))
	require.NoError(t, err)
	var m Marker
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, os.Getpid(), m.PID)
	assert.NotEmpty(t, m.Token)

	require.NoError(t, l.Release(tok))
	assert.NoFileExists(t, MarkerPath(path))
}

func TestAcquire_MutualExclusion(t *testing.T) {
	l := New(5*time.Millisecond, time.Minute)
	path := deckPath(t)

	tok, err := l.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	defer func() { _ = l.Release(tok) }()

	// second acquirer (simulating another process) must time out
	start := time.Now()
	_, err = l.Acquire(context.Background(), path, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.CodeLockTimeout))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	e, _ := errs.As(err)
	assert.Equal(t, os.Getpid(), e.Details()["holder_pid"])
}

func TestAcquire_AfterRelease(t *testing.T) {
	l := New(5*time.Millisecond, time.Minute)
	path := deckPath(t)

	tok, err := l.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	require.NoError(t, l.Release(tok))

	tok2, err := l.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	require.NoError(t, l.Release(tok2))
}

func TestAcquire_WaiterGetsLockWhenFreed(t *testing.T) {
	l := New(5*time.Millisecond, time.Minute)
	path := deckPath(t)

	tok, err := l.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		tok2, err := l.Acquire(context.Background(), path, 2*time.Second)
		if err == nil {
			_ = l.Release(tok2)
		}
		done <- err
	}()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, l.Release(tok))
	require.NoError(t, <-done)
}

func TestAcquire_ContextCancel(t *testing.T) {
	l := New(5*time.Millisecond, time.Minute)
	path := deckPath(t)

	tok, err := l.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	defer func() { _ = l.Release(tok) }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err = l.Acquire(ctx, path, 5*time.Second)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.CodeLockTimeout))
}

func TestAcquire_CreateFailureIsNotTimeout(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind for root")
	}
	l := New(5*time.Millisecond, time.Minute)

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	// permission denied on the marker create: fail immediately, and not as
	// the retryable timeout class
	start := time.Now()
	_, err := l.Acquire(context.Background(), filepath.Join(dir, "deck.deck.json"), time.Second)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.CodeInternal))
	assert.False(t, errs.IsCode(err, errs.CodeLockTimeout))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRelease_RefusesForeignMarker(t *testing.T) {
	l := New(5*time.Millisecond, time.Minute)
	path := deckPath(t)

	tok, err := l.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)

	// another process reclaims and re-acquires behind our back
	require.NoError(t, os.Remove(MarkerPath(path)))
	other, err := l.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)

	err = l.Release(tok)
	require.Error(t, err)
	assert.FileExists(t, MarkerPath(path))
	require.NoError(t, l.Release(other))
}

func TestStat_NoLock(t *testing.T) {
	l := New(5*time.Millisecond, time.Minute)
	st, err := l.Stat(deckPath(t))
	require.NoError(t, err)
	assert.False(t, st.Held)
	assert.False(t, st.Stale)
}

func TestStat_DeadHolderIsStale(t *testing.T) {
	l := New(5*time.Millisecond, time.Hour)
	path := deckPath(t)

	host, _ := os.Hostname()
	m := Marker{Token: "t", PID: 1 << 30, Host: host, AcquiredAt: time.Now().UTC()}
	data, _ := json.Marshal(&m)
	require.NoError(t, os.WriteFile(MarkerPath(path), data, 0o644))

	st, err := l.Stat(path)
	require.NoError(t, err)
	assert.True(t, st.Held)
	assert.True(t, st.Stale)
	assert.Equal(t, "holder_dead", st.StaleWhy)
}

func TestStat_ExpiredIsStale(t *testing.T) {
	l := New(5*time.Millisecond, time.Minute)
	path := deckPath(t)

	m := Marker{Token: "t", PID: os.Getpid(), Host: "elsewhere", AcquiredAt: time.Now().Add(-2 * time.Hour).UTC()}
	data, _ := json.Marshal(&m)
	require.NoError(t, os.WriteFile(MarkerPath(path), data, 0o644))

	st, err := l.Stat(path)
	require.NoError(t, err)
	assert.True(t, st.Stale)
	assert.Equal(t, "expired", st.StaleWhy)
}

func TestForceReclaim(t *testing.T) {
	l := New(5*time.Millisecond, time.Hour)
	path := deckPath(t)

	// live lock: refuse
	tok, err := l.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	err = l.ForceReclaim(path)
	require.Error(t, err)
	require.NoError(t, l.Release(tok))

	// stale lock: reclaim
	host, _ := os.Hostname()
	m := Marker{Token: "t", PID: 1 << 30, Host: host, AcquiredAt: time.Now().UTC()}
	data, _ := json.Marshal(&m)
	require.NoError(t, os.WriteFile(MarkerPath(path), data, 0o644))
	require.NoError(t, l.ForceReclaim(path))
	assert.NoFileExists(t, MarkerPath(path))

	// nothing held: no-op
	require.NoError(t, l.ForceReclaim(path))
}
