package core

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startWatcher(t *testing.T, w *Watcher) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()
	// give fsnotify a moment to register the directories
	time.Sleep(50 * time.Millisecond)
	return cancelFn, errc
}

func TestWatcher_CallsOnChangeAfterWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	var calls atomic.Int32
	w := NewWatcher(nil, func() { calls.Add(1) }, dir)
	w.debounce = 20 * time.Millisecond

	cancel, done := startWatcher(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0644))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	var calls atomic.Int32
	w := NewWatcher(nil, func() { calls.Add(1) }, dir)
	w.debounce = 150 * time.Millisecond

	cancel, done := startWatcher(t, w)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte{byte('a' + i)}, 0644))
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_FollowsNewSubdirectories(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	var calls atomic.Int32
	w := NewWatcher(nil, func() { calls.Add(1) }, dir)
	w.debounce = 20 * time.Millisecond

	cancel, done := startWatcher(t, w)

	sub := filepath.Join(dir, "components")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	before := calls.Load()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "nav.html"), []byte("x"), 0644))
	require.Eventually(t, func() bool { return calls.Load() > before }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_MissingDirFails(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewWatcher(nil, func() {}, filepath.Join(t.TempDir(), "missing"))
	err := w.Run(context.Background())
	assert.Error(t, err)
}
