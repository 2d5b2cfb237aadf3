package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRun(t *testing.T) {
	calls := 0
	err := Run(context.Background(), zaptest.NewLogger(t), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	err = Run(context.Background(), nil, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestWatch_FirstRunFails(t *testing.T) {
	boom := errors.New("boom")
	err := Watch(context.Background(), Options{Dirs: []string{t.TempDir()}}, func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(out, 0o755))
	model := filepath.Join(dir, "model", "invoice.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(model), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Options{
			Dirs:     []string{dir},
			Ignore:   []string{out},
			Debounce: 20 * time.Millisecond,
			Logger:   zaptest.NewLogger(t),
		}, func(context.Context) error {
			runs <- struct{}{}
			return nil
		})
	}()

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial run")
	}

	// The watcher is registered after the first run; keep touching the
	// model until a change is observed.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case <-runs:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(model, []byte("export interface Invoice {}"), 0o644))
		case <-deadline:
			t.Fatal("change not observed")
		}
	}
	tick.Stop()

	// Drain runs triggered by the remaining writes of the burst.
	time.Sleep(200 * time.Millisecond)
	for len(runs) > 0 {
		<-runs
	}

	require.NoError(t, os.WriteFile(filepath.Join(out, "invoice.guard.ts"), []byte("generated"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model", "notes.txt"), []byte("not a model"), 0o644))
	select {
	case <-runs:
		t.Fatal("ignored change triggered a run")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
