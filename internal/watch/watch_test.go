package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherSignalsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# a\n"), 0o600))

	w, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)
	changes, err := w.Start()
	require.NoError(t, err)
	defer w.Stop()

	// a burst of writes coalesces into one signal.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("# b\n"), 0o600))
	}

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change signalled")
	}
}

func TestIsRelevantEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")

	w, err := New(path, 0)
	require.NoError(t, err)
	defer w.fsWatcher.Close()

	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.True(t, w.isRelevantEvent(fsnotify.Event{Name: path, Op: fsnotify.Write}))
	assert.True(t, w.isRelevantEvent(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	assert.False(t, w.isRelevantEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod}))
	assert.False(t, w.isRelevantEvent(fsnotify.Event{Name: filepath.Join(dir, "other.md"), Op: fsnotify.Write}))
}
