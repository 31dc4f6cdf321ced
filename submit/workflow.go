// Package submit implements the single-shot complaint submission
// workflow: validate, upload, await result, surface outcome. The
// workflow is an explicit state machine so invalid transitions are
// unrepresentable rather than guarded by ad-hoc booleans.
package submit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ompisal63/smart-pothole-system/api"
)

// Phase identifies one workflow state.
type Phase string

// Workflow phases. Rejected is the terminal display state for a
// negative verdict; it offers no path to submission.
const (
	PhaseIdle         Phase = "idle"
	PhaseAnalyzing    Phase = "analyzing"
	PhaseVerdict      Phase = "verdict"
	PhaseRejected     Phase = "rejected"
	PhaseDraftEditing Phase = "draft_editing"
	PhaseSubmitting   Phase = "submitting"
	PhaseSucceeded    Phase = "succeeded"
	PhaseFailed       Phase = "failed"
)

// State is the workflow's externally visible condition. Exactly the
// fields relevant to the phase are populated.
type State struct {
	Phase       Phase
	Verdict     *api.Verdict
	ComplaintID string
	Reason      string
}

// Service performs the workflow's two remote operations. The api
// client satisfies this.
type Service interface {
	Predict(ctx context.Context, imagePath string) (api.Verdict, error)
	SubmitComplaint(ctx context.Context, sub api.ComplaintSubmission) (string, error)
}

// ErrClosed is returned by operations on a disposed workflow.
var ErrClosed = fmt.Errorf("submission workflow closed")

// Workflow drives one complaint from selected image to confirmed
// server-side effect. State mutations are serialized; completions of
// detached (superseded or disposed) operations never mutate state.
type Workflow struct {
	service  Service
	observer func(State)
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	draft   Draft
	attempt uint64
	closed  bool
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithObserver registers a callback invoked on every state transition.
// The callback runs with the workflow lock held and must not call back
// into the workflow.
func WithObserver(fn func(State)) WorkflowOption {
	return func(w *Workflow) {
		w.observer = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) WorkflowOption {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// NewWorkflow creates an idle submission workflow.
func NewWorkflow(service Service, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		service: service,
		logger:  slog.Default(),
		state:   State{Phase: PhaseIdle},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns a copy of the current draft.
func (w *Workflow) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// SelectImage attaches the image reference the workflow will analyze.
// Only legal while idle.
func (w *Workflow) SelectImage(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.state.Phase != PhaseIdle {
		return fmt.Errorf("cannot select image in phase %s", w.state.Phase)
	}
	w.draft.ImagePath = path
	return nil
}

// Analyze uploads the selected image and awaits the classifier's
// verdict. A positive verdict moves to PhaseVerdict; a negative one is
// terminal (PhaseRejected) with no complaint path. Any failure moves
// to PhaseFailed; retrying is an explicit caller decision.
func (w *Workflow) Analyze(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.state.Phase != PhaseIdle {
		w.mu.Unlock()
		return fmt.Errorf("cannot analyze in phase %s", w.state.Phase)
	}
	if w.draft.ImagePath == "" {
		w.mu.Unlock()
		return &api.ValidationError{Field: "image", Reason: "no image selected"}
	}

	w.attempt++
	gen := w.attempt
	imagePath := w.draft.ImagePath
	w.transition(State{Phase: PhaseAnalyzing})
	w.mu.Unlock()

	verdict, err := w.service.Predict(ctx, imagePath)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || gen != w.attempt {
		// The hosting screen was torn down; this completion is a no-op.
		return nil
	}

	if err != nil {
		w.transition(State{Phase: PhaseFailed, Reason: err.Error()})
		return err
	}
	if !verdict.IsPothole {
		w.transition(State{Phase: PhaseRejected, Verdict: &verdict})
		return nil
	}
	w.transition(State{Phase: PhaseVerdict, Verdict: &verdict})
	return nil
}

// BeginDraft moves from a positive verdict into draft editing.
func (w *Workflow) BeginDraft() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.state.Phase != PhaseVerdict {
		return fmt.Errorf("cannot begin draft in phase %s", w.state.Phase)
	}
	w.transition(State{Phase: PhaseDraftEditing, Verdict: w.state.Verdict})
	return nil
}

// Edit mutates the draft while it is being edited.
func (w *Workflow) Edit(fn func(*Draft)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.state.Phase != PhaseDraftEditing {
		return fmt.Errorf("cannot edit draft in phase %s", w.state.Phase)
	}
	fn(&w.draft)
	return nil
}

// Submit validates the draft and posts it. A second Submit while one
// is in flight for the same draft is a silent no-op, never a queued
// retry. Validation failures leave the phase unchanged; remote
// failures are terminal for this attempt.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.state.Phase == PhaseSubmitting {
		// At-most-one-submission invariant.
		w.mu.Unlock()
		return nil
	}
	if w.state.Phase != PhaseDraftEditing {
		w.mu.Unlock()
		return fmt.Errorf("cannot submit in phase %s", w.state.Phase)
	}
	if err := w.draft.Validate(); err != nil {
		w.mu.Unlock()
		return err
	}

	w.attempt++
	gen := w.attempt
	sub := w.draft.submission()
	w.transition(State{Phase: PhaseSubmitting})
	w.mu.Unlock()

	complaintID, err := w.service.SubmitComplaint(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || gen != w.attempt {
		return nil
	}

	if err != nil {
		w.transition(State{Phase: PhaseFailed, Reason: err.Error()})
		return err
	}
	w.transition(State{Phase: PhaseSucceeded, ComplaintID: complaintID})
	return nil
}

// Close disposes the workflow. In-flight requests are detached: their
// eventual completions mutate nothing.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	w.attempt++
}

// transition applies and publishes a new state. Callers must hold
// w.mu.
func (w *Workflow) transition(next State) {
	w.logger.Debug("Submission workflow transition",
		"from", w.state.Phase,
		"to", next.Phase)
	w.state = next
	if w.observer != nil {
		w.observer(next)
	}
}
