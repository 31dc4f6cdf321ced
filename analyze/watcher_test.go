package analyze

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ompisal63/smart-pothole-system/api"
)

func TestWatcher_AnalyzesSettledImage(t *testing.T) {
	dir := t.TempDir()
	classifier := &stubClassifier{
		verdict: api.Verdict{Confidence: 0.92, IsPothole: true},
	}
	watcher := NewWatcher(dir, NewTask(classifier, nil),
		WithSettleDelay(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx)
	}()

	// Give the watch a moment to attach before writing.
	time.Sleep(100 * time.Millisecond)

	imagePath := filepath.Join(dir, "road.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("jpeg-bytes"), 0o644))

	select {
	case result := <-watcher.Results():
		assert.Equal(t, imagePath, result.Path)
		require.NoError(t, result.Err)
		assert.True(t, result.Verdict.IsPothole)
	case <-time.After(3 * time.Second):
		t.Fatal("no analysis result for new image")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcher_IgnoresNonImageFiles(t *testing.T) {
	dir := t.TempDir()
	classifier := &stubClassifier{}
	watcher := NewWatcher(dir, NewTask(classifier, nil),
		WithSettleDelay(30*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watcher.Run(ctx)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644))

	select {
	case result := <-watcher.Results():
		t.Fatalf("unexpected result for non-image file: %+v", result)
	case <-time.After(300 * time.Millisecond):
	}

	assert.Equal(t, int32(0), classifier.calls.Load())
}

func TestWatcher_SettleCollapsesRewrites(t *testing.T) {
	dir := t.TempDir()
	classifier := &stubClassifier{
		verdict: api.Verdict{Confidence: 0.75, IsPothole: true},
	}
	watcher := NewWatcher(dir, NewTask(classifier, nil),
		WithSettleDelay(150*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go watcher.Run(ctx)
	time.Sleep(100 * time.Millisecond)

	// Several quick writes to the same file look like one capture
	// still being flushed.
	imagePath := filepath.Join(dir, "road.jpg")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(imagePath, []byte("partial"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-watcher.Results():
	case <-time.After(3 * time.Second):
		t.Fatal("no analysis result after writes settled")
	}

	assert.Equal(t, int32(1), classifier.calls.Load(), "rewrites within the settle window analyze once")
}

func TestWatcher_MissingDirectory(t *testing.T) {
	watcher := NewWatcher(filepath.Join(t.TempDir(), "absent"), NewTask(&stubClassifier{}, nil))

	err := watcher.Run(context.Background())
	assert.Error(t, err)
}
