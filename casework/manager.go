// Package casework implements the authority's case management
// workflow: authenticated list and filter, detail fetch, and guarded
// update against server-declared allowed values.
package casework

import (
	"context"
	"log/slog"

	"github.com/ompisal63/smart-pothole-system/api"
	"github.com/ompisal63/smart-pothole-system/session"
)

// Service performs the workflow's remote operations. The api client
// satisfies this.
type Service interface {
	ListComplaints(ctx context.Context) ([]api.Complaint, error)
	GetComplaintDetail(ctx context.Context, complaintID string) (*api.DetailResponse, error)
	UpdateComplaint(ctx context.Context, complaintID, status, assignedTo string) error
}

// Manager drives authority case work. Every operation shares one
// precondition: a stored session token. An unauthorized outcome clears
// the session so the caller returns to the unauthenticated entry
// point; other failures leave previously displayed data untouched.
type Manager struct {
	service  Service
	sessions session.Store
	logger   *slog.Logger
}

// NewManager creates a case management workflow over the given
// service and session store.
func NewManager(service Service, sessions session.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{service: service, sessions: sessions, logger: logger}
}

// List fetches the full complaint summary list for the authority.
// Filtering is a separate, pure local step (see Filter).
func (m *Manager) List(ctx context.Context) ([]api.Complaint, error) {
	complaints, err := m.service.ListComplaints(ctx)
	if err != nil {
		return nil, m.handle(err)
	}
	return complaints, nil
}

// Detail fetches one complaint together with its media reference and
// workflow constraints. The result replaces any prior detail
// wholesale; workflow sets are never carried across complaints.
func (m *Manager) Detail(ctx context.Context, complaintID string) (*api.DetailResponse, error) {
	detail, err := m.service.GetComplaintDetail(ctx, complaintID)
	if err != nil {
		return nil, m.handle(err)
	}
	return detail, nil
}

// Update patches status and assignee for one complaint. Values outside
// the workflow sets retrieved with that same detail fetch are rejected
// client-side before any request is sent. A nil return means the
// server acknowledged the update; the next fetch is authoritative.
func (m *Manager) Update(ctx context.Context, complaintID, status, assignedTo string, workflow api.WorkflowInfo) error {
	if !workflow.AllowsStatus(status) {
		return &api.ValidationError{Field: "status", Reason: "not an allowed status for this complaint"}
	}
	if assignedTo != "" && !workflow.AllowsAssignee(assignedTo) {
		return &api.ValidationError{Field: "assigned_to", Reason: "not an allowed assignee for this complaint"}
	}

	if err := m.service.UpdateComplaint(ctx, complaintID, status, assignedTo); err != nil {
		return m.handle(err)
	}
	return nil
}

// handle applies the cross-cutting unauthorized policy: clear the
// session and pass the sentinel through.
func (m *Manager) handle(err error) error {
	if api.IsUnauthorized(err) {
		if clearErr := m.sessions.Clear(); clearErr != nil {
			m.logger.Warn("Failed to clear session after unauthorized response", "error", clearErr)
		}
		return api.ErrUnauthorized
	}
	return err
}
