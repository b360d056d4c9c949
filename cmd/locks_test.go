package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/deckguard/internal/proclock"
)

func writeMarker(t *testing.T, dir, doc string, m proclock.Marker) string {
	t.Helper()
	path := filepath.Join(dir, doc)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	data, err := json.Marshal(&m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(proclock.MarkerPath(path), data, 0o644))
	return path
}

func TestScanLocks(t *testing.T) {
	dir := t.TempDir()
	host, _ := os.Hostname()
	locker := proclock.New(10*time.Millisecond, time.Hour)

	live := writeMarker(t, dir, "live.deck.json", proclock.Marker{
		Token: "a", PID: os.Getpid(), Host: host, AcquiredAt: time.Now().UTC(),
	})
	dead := writeMarker(t, dir, "dead.deck.json", proclock.Marker{
		Token: "b", PID: 1 << 30, Host: host, AcquiredAt: time.Now().UTC(),
	})
	// unlocked neighbor produces no report
	require.NoError(t, os.WriteFile(filepath.Join(dir, "free.deck.json"), []byte("{}"), 0o644))

	reports, err := scanLocks(dir, locker)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	byDoc := map[string]lockReport{}
	for _, r := range reports {
		byDoc[r.Document] = r
	}
	assert.False(t, byDoc[live].Stale)
	assert.Equal(t, os.Getpid(), byDoc[live].HolderPID)
	assert.True(t, byDoc[dead].Stale)
	assert.Equal(t, "holder_dead", byDoc[dead].StaleWhy)
}

func TestScanLocks_EmptyDir(t *testing.T) {
	locker := proclock.New(10*time.Millisecond, time.Hour)
	reports, err := scanLocks(t.TempDir(), locker)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
