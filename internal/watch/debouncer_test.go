package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Debouncer
// ---------------------------------------------------------------------------

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var fired atomic.Int32

	d := NewDebouncer(30*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestDebouncer_SeparateBurstsFireSeparately(t *testing.T) {
	var fired atomic.Int32

	d := NewDebouncer(10*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	d.Trigger()
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	d.Trigger()
	require.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var fired atomic.Int32

	d := NewDebouncer(20*time.Millisecond, func() { fired.Add(1) })

	d.Trigger()
	d.Stop()
	d.Trigger()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestDebouncer_RecoversFromPanic(t *testing.T) {
	var fired atomic.Int32

	d := NewDebouncer(5*time.Millisecond, func() {
		fired.Add(1)
		panic("callback failed")
	})
	defer d.Stop()

	d.Trigger()
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	d.Trigger()
	require.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)
}

// ---------------------------------------------------------------------------
// Notifier
// ---------------------------------------------------------------------------

func TestNotifier_SignalsWritesToTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "openapi.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	n, err := NewNotifier(path, 20*time.Millisecond, nil)
	require.NoError(t, err)

	defer func() { _ = n.Close() }()

	require.NoError(t, os.WriteFile(path, []byte(`{"v":1}`), 0o600))

	select {
	case <-n.Events():
	case <-time.After(3 * time.Second):
		t.Fatal("expected a notification after writing the spec file")
	}
}

func TestNotifier_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "openapi.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	n, err := NewNotifier(path, 10*time.Millisecond, nil)
	require.NoError(t, err)

	defer func() { _ = n.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o600))

	select {
	case <-n.Events():
		t.Fatal("unexpected notification for an unrelated file")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestNotifier_BuffersOneEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "openapi.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	n, err := NewNotifier(path, time.Millisecond, nil)
	require.NoError(t, err)

	defer func() { _ = n.Close() }()

	n.signal()
	n.signal()

	assert.Len(t, n.Events(), 1)
}

func TestNewNotifier_MissingDirectory(t *testing.T) {
	_, err := NewNotifier(filepath.Join(t.TempDir(), "missing", "openapi.json"), time.Millisecond, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching directory of")
}
