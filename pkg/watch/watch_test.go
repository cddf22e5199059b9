// Test Type: Integration Test
// Description: Exercises the watcher against a real temporary directory

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, dir string, debounce time.Duration, ignore ...string) (*atomic.Int32, func()) {
	t.Helper()
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watch.Watch(ctx, dir, debounce, func(context.Context) error {
			calls.Add(1)
			return nil
		}, ignore...)
	}()
	// let the watcher register before changes happen
	time.Sleep(100 * time.Millisecond)

	stop := func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("watcher did not stop")
		}
	}
	return &calls, stop
}

func TestWatch_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	calls, stop := start(t, dir, 150*time.Millisecond)
	defer stop()

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Less(t, calls.Load(), int32(5))
}

func TestWatch_NewDirectories(t *testing.T) {
	dir := t.TempDir()
	calls, stop := start(t, dir, 50*time.Millisecond)
	defer stop()

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0755))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	before := calls.Load()
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "page.md"), []byte("x"), 0644))
	assert.Eventually(t, func() bool { return calls.Load() > before }, 3*time.Second, 20*time.Millisecond)
}

func TestWatch_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	build := filepath.Join(dir, "build")
	require.NoError(t, os.MkdirAll(filepath.Join(build, "css"), 0755))

	calls, stop := start(t, dir, 50*time.Millisecond, build)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(build, "index.html"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(build, "css", "app.css"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(build, "js"), 0755))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte("x"), 0644))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := watch.Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), 0, func(context.Context) error { return nil })
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}
