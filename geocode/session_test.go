package geocode

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ompisal63/smart-pothole-system/api"
)

// stubSearcher returns canned candidates keyed by query and can hold
// a lookup open until released.
type stubSearcher struct {
	mu      sync.Mutex
	results map[string][]api.LocationCandidate
	block   map[string]chan struct{}
	calls   atomic.Int32
	queries []string
}

func newStubSearcher() *stubSearcher {
	return &stubSearcher{
		results: make(map[string][]api.LocationCandidate),
		block:   make(map[string]chan struct{}),
	}
}

func (s *stubSearcher) SearchLocations(ctx context.Context, query string) ([]api.LocationCandidate, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.queries = append(s.queries, query)
	gate := s.block[query]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[query], nil
}

// deliveries collects callback invocations.
type deliveries struct {
	mu   sync.Mutex
	sets [][]api.LocationCandidate
}

func (d *deliveries) callback(candidates []api.LocationCandidate) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sets = append(d.sets, candidates)
}

func (d *deliveries) snapshot() [][]api.LocationCandidate {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]api.LocationCandidate, len(d.sets))
	copy(out, d.sets)
	return out
}

func (d *deliveries) waitFor(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(d.snapshot()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d deliveries, got %d", n, len(d.snapshot()))
}

func TestSession_ShortQueryClearsWithoutLookup(t *testing.T) {
	searcher := newStubSearcher()
	got := &deliveries{}

	session := NewSession(searcher, got.callback, WithQuietPeriod(10*time.Millisecond))
	defer session.Close()

	session.Update("fc")

	sets := got.snapshot()
	require.Len(t, sets, 1, "short query delivers synchronously")
	assert.Empty(t, sets[0])

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), searcher.calls.Load(), "no lookup for a short query")
}

func TestSession_DebounceCollapsesRapidEdits(t *testing.T) {
	searcher := newStubSearcher()
	searcher.results["fc road pune"] = []api.LocationCandidate{{DisplayName: "FC Road, Pune"}}
	got := &deliveries{}

	session := NewSession(searcher, got.callback, WithQuietPeriod(60*time.Millisecond))
	defer session.Close()

	session.Update("fc r")
	session.Update("fc road")
	session.Update("fc road pune")

	got.waitFor(t, 1)

	assert.Equal(t, int32(1), searcher.calls.Load(), "rapid edits collapse to one lookup")
	assert.Equal(t, []string{"fc road pune"}, searcher.queries)

	sets := got.snapshot()
	require.Len(t, sets, 1)
	require.Len(t, sets[0], 1)
	assert.Equal(t, "FC Road, Pune", sets[0][0].DisplayName)
}

func TestSession_StaleResultDiscarded(t *testing.T) {
	searcher := newStubSearcher()
	searcher.results["first query"] = []api.LocationCandidate{{DisplayName: "first"}}
	searcher.results["second query"] = []api.LocationCandidate{{DisplayName: "second"}}
	gate := make(chan struct{})
	searcher.block["first query"] = gate
	got := &deliveries{}

	session := NewSession(searcher, got.callback, WithQuietPeriod(10*time.Millisecond))
	defer session.Close()

	session.Update("first query")

	// Wait until the first lookup is actually in flight.
	require.Eventually(t, func() bool {
		return searcher.calls.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond)

	session.Update("second query")
	got.waitFor(t, 1)

	// Now let the superseded lookup complete.
	close(gate)
	time.Sleep(50 * time.Millisecond)

	sets := got.snapshot()
	require.Len(t, sets, 1, "superseded result must not be delivered")
	require.Len(t, sets[0], 1)
	assert.Equal(t, "second", sets[0][0].DisplayName)
}

func TestSession_UpdateBeforeQuietPeriodCancelsLookup(t *testing.T) {
	searcher := newStubSearcher()
	got := &deliveries{}

	session := NewSession(searcher, got.callback, WithQuietPeriod(80*time.Millisecond))
	defer session.Close()

	session.Update("fc road pune")
	time.Sleep(20 * time.Millisecond)
	session.Update("mg")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), searcher.calls.Load(), "superseded edit never reaches the network")

	sets := got.snapshot()
	require.Len(t, sets, 1, "only the short-query clear is delivered")
	assert.Empty(t, sets[0])
}

func TestSession_CloseStopsPendingLookup(t *testing.T) {
	searcher := newStubSearcher()
	got := &deliveries{}

	session := NewSession(searcher, got.callback, WithQuietPeriod(30*time.Millisecond))

	session.Update("fc road pune")
	session.Close()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), searcher.calls.Load())
	assert.Empty(t, got.snapshot())
}

func TestSession_CloseSuppressesInFlightDelivery(t *testing.T) {
	searcher := newStubSearcher()
	searcher.results["fc road pune"] = []api.LocationCandidate{{DisplayName: "FC Road"}}
	gate := make(chan struct{})
	searcher.block["fc road pune"] = gate
	got := &deliveries{}

	session := NewSession(searcher, got.callback, WithQuietPeriod(10*time.Millisecond))

	session.Update("fc road pune")
	require.Eventually(t, func() bool {
		return searcher.calls.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond)

	session.Close()
	close(gate)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, got.snapshot(), "no delivery after close")
}

func TestSession_UpdateAfterClose(t *testing.T) {
	searcher := newStubSearcher()
	got := &deliveries{}

	session := NewSession(searcher, got.callback, WithQuietPeriod(10*time.Millisecond))
	session.Close()

	session.Update("fc road pune")
	session.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), searcher.calls.Load())
	assert.Empty(t, got.snapshot())
}
