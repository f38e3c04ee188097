package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher creates watcher successfully with valid directories
// - NewFileWatcher returns error with invalid directory
// - Single file change fires callback after debounce
// - Rapid changes to several files are coalesced into one batch
// - Pause/Resume behavior (accumulate during pause, fire on resume)
// - File deleted triggers callback
// - Directory added triggers recursive watch
// - Extension filtering (only source extensions trigger callback)
// - Skip patterns exclude dependency directories
// - Stop() is idempotent and safe before Start()

const testDebounce = 100 * time.Millisecond

// batchRecorder collects callback batches for assertions.
type batchRecorder struct {
	mu      sync.Mutex
	batches [][]string
	fired   chan struct{}
}

func newBatchRecorder() *batchRecorder {
	return &batchRecorder{fired: make(chan struct{}, 16)}
}

func (r *batchRecorder) callback(files []string) {
	r.mu.Lock()
	r.batches = append(r.batches, files)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *batchRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("Callback not called after timeout")
	}
}

func (r *batchRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func (r *batchRecorder) last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.batches) == 0 {
		return nil
	}
	return r.batches[len(r.batches)-1]
}

func startWatcher(t *testing.T, dir string, opts ...Option) (FileWatcher, *batchRecorder) {
	t.Helper()
	opts = append([]Option{WithDebounce(testDebounce)}, opts...)
	w, err := NewFileWatcher([]string{dir}, SourceExtensions, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	rec := newBatchRecorder()
	require.NoError(t, w.Start(context.Background(), rec.callback))
	// Wait for watcher to initialize
	time.Sleep(50 * time.Millisecond)
	return w, rec
}

func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, SourceExtensions)
	require.NoError(t, err)
	require.NotNil(t, w)
	require.NoError(t, w.Stop())
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "nonexistent")}, SourceExtensions)
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	file := filepath.Join(dir, "Widget.tsx")
	require.NoError(t, os.WriteFile(file, []byte("export const Widget = () => <div/>;"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{file}, rec.last())
}

func TestFileWatcher_Debouncing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	a := filepath.Join(dir, "a.ts")
	b := filepath.Join(dir, "b.ts")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(a, []byte("export const a = 1;"), 0644))
		require.NoError(t, os.WriteFile(b, []byte("export const b = 2;"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	rec.wait(t)
	// Let any stray timer fire before counting
	time.Sleep(2 * testDebounce)
	assert.Equal(t, 1, rec.count())
	assert.ElementsMatch(t, []string{a, b}, rec.last())
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, rec := startWatcher(t, dir)

	w.Pause()
	file := filepath.Join(dir, "useCounter.ts")
	require.NoError(t, os.WriteFile(file, []byte("export function useCounter() {}"), 0644))

	time.Sleep(3 * testDebounce)
	assert.Equal(t, 0, rec.count(), "No callbacks should fire while paused")

	w.Resume()
	rec.wait(t)
	assert.Contains(t, rec.last(), file)
}

func TestFileWatcher_FileDeleted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "old.js")
	require.NoError(t, os.WriteFile(file, []byte("module.exports = {};"), 0644))

	_, rec := startWatcher(t, dir)
	require.NoError(t, os.Remove(file))

	rec.wait(t)
	assert.Contains(t, rec.last(), file)
}

func TestFileWatcher_DirectoryAdded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	sub := filepath.Join(dir, "components")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher time to register the new directory
	time.Sleep(3 * testDebounce)

	file := filepath.Join(sub, "Button.jsx")
	require.NoError(t, os.WriteFile(file, []byte("export default () => <button/>;"), 0644))

	rec.wait(t)
	assert.Contains(t, rec.last(), file)
}

func TestFileWatcher_ExtensionFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# docs"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "styles.css"), []byte("a{}"), 0644))
	time.Sleep(3 * testDebounce)
	assert.Equal(t, 0, rec.count())

	file := filepath.Join(dir, "index.ts")
	require.NoError(t, os.WriteFile(file, []byte("export {};"), 0644))
	rec.wait(t)
	assert.Equal(t, []string{file}, rec.last())
}

func TestFileWatcher_SkipPatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	deps := filepath.Join(dir, "node_modules", "react")
	require.NoError(t, os.MkdirAll(deps, 0755))

	_, rec := startWatcher(t, dir, WithSkipPatterns([]string{"node_modules"}))

	require.NoError(t, os.WriteFile(filepath.Join(deps, "index.js"), []byte("module.exports = {};"), 0644))
	time.Sleep(3 * testDebounce)
	assert.Equal(t, 0, rec.count())

	file := filepath.Join(dir, "App.tsx")
	require.NoError(t, os.WriteFile(file, []byte("export const App = () => null;"), 0644))
	rec.wait(t)
	assert.Equal(t, []string{file}, rec.last())
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, SourceExtensions)
	require.NoError(t, err)

	// Stop before Start must not block
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestFileWatcher_ConcurrentStop(t *testing.T) {
	t.Parallel()

	w, _ := startWatcher(t, t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Stop()
		}()
	}
	wg.Wait()
}
