package analyze

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ompisal63/smart-pothole-system/api"
)

type stubClassifier struct {
	verdict api.Verdict
	err     error
	calls   atomic.Int32
	last    atomic.Value
}

func (s *stubClassifier) Predict(ctx context.Context, imagePath string) (api.Verdict, error) {
	s.calls.Add(1)
	s.last.Store(imagePath)
	return s.verdict, s.err
}

func TestTask_Run(t *testing.T) {
	classifier := &stubClassifier{
		verdict: api.Verdict{Confidence: 0.92, IsPothole: true},
	}
	task := NewTask(classifier, nil)

	verdict, err := task.Run(context.Background(), "/tmp/road.jpg")
	require.NoError(t, err)
	assert.Equal(t, 0.92, verdict.Confidence)
	assert.True(t, verdict.IsPothole)
	assert.Equal(t, "/tmp/road.jpg", classifier.last.Load())
}

func TestTask_Run_NoRetryOnFailure(t *testing.T) {
	classifier := &stubClassifier{
		err: api.NewNetworkError(errors.New("timeout")),
	}
	task := NewTask(classifier, nil)

	_, err := task.Run(context.Background(), "/tmp/road.jpg")
	assert.True(t, api.IsNetwork(err))
	assert.Equal(t, int32(1), classifier.calls.Load(), "one request per run, the caller decides about retries")
}
