// Package geocode turns a stream of free-text location query edits
// into at most one in-flight geocoder lookup, cancelling superseded
// requests. Within one session only the most recently scheduled
// lookup's result may apply.
package geocode

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ompisal63/smart-pothole-system/api"
)

const (
	// DefaultQuietPeriod is how long input must be quiet before a
	// lookup is issued.
	DefaultQuietPeriod = 500 * time.Millisecond

	// minQueryLength is the shortest query that issues a lookup.
	// Anything shorter immediately clears the result set.
	minQueryLength = 3
)

// Searcher performs one geocoder lookup. The api client satisfies
// this.
type Searcher interface {
	SearchLocations(ctx context.Context, query string) ([]api.LocationCandidate, error)
}

// Session debounces query edits for one search box. Results are
// delivered through the callback passed to NewSession; the callback
// runs with the session lock held and must not call back into the
// session.
type Session struct {
	searcher Searcher
	quiet    time.Duration
	deliver  func([]api.LocationCandidate)
	logger   *slog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	gen    uint64
	closed bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithQuietPeriod overrides the debounce interval.
func WithQuietPeriod(d time.Duration) SessionOption {
	return func(s *Session) {
		s.quiet = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a search session delivering result sets to
// deliver. An empty slice means "no matches"; lookup failures degrade
// to that rather than surfacing an error.
func NewSession(searcher Searcher, deliver func([]api.LocationCandidate), opts ...SessionOption) *Session {
	s := &Session{
		searcher: searcher,
		quiet:    DefaultQuietPeriod,
		deliver:  deliver,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Update supersedes any pending or in-flight lookup with a new query
// edit. Queries shorter than three characters never issue a lookup and
// immediately clear the result set.
func (s *Session) Update(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.supersedeLocked()
	gen := s.gen

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		s.deliver(nil)
		return
	}

	s.timer = time.AfterFunc(s.quiet, func() {
		s.lookup(gen, query)
	})
}

// Close disposes the session. Any pending timer is stopped, any
// in-flight lookup is cancelled, and no completion mutates external
// state afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.supersedeLocked()
}

// supersedeLocked invalidates the current generation and stops any
// scheduled or in-flight work. Callers must hold s.mu.
func (s *Session) supersedeLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) lookup(gen uint64, query string) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	candidates, err := s.searcher.SearchLocations(ctx, query)
	if err != nil {
		// Degrade to "no matches"; search never interrupts the flow.
		s.logger.Debug("Location lookup failed", "query", query, "error", err)
		candidates = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Stale responses from a superseded query are discarded silently.
	if s.closed || gen != s.gen {
		return
	}
	s.cancel = nil
	s.deliver(candidates)
}
