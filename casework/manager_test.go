package casework

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ompisal63/smart-pothole-system/api"
	"github.com/ompisal63/smart-pothole-system/session"
)

type stubCaseService struct {
	complaints []api.Complaint
	listErr    error

	detail    *api.DetailResponse
	detailErr error

	updateErr   error
	updateCalls atomic.Int32
	lastUpdate  [3]string
}

func (s *stubCaseService) ListComplaints(ctx context.Context) ([]api.Complaint, error) {
	return s.complaints, s.listErr
}

func (s *stubCaseService) GetComplaintDetail(ctx context.Context, complaintID string) (*api.DetailResponse, error) {
	return s.detail, s.detailErr
}

func (s *stubCaseService) UpdateComplaint(ctx context.Context, complaintID, status, assignedTo string) error {
	s.updateCalls.Add(1)
	s.lastUpdate = [3]string{complaintID, status, assignedTo}
	return s.updateErr
}

func defaultWorkflow() api.WorkflowInfo {
	return api.WorkflowInfo{
		AllowedStatus:    []string{"OPEN", "IN_PROGRESS", "RESOLVED", "REJECTED"},
		AllowedAssignees: []string{"OM", "AKSHATA", "SANKALP", "KHUSHI"},
	}
}

func sessionWithToken(t *testing.T) session.Store {
	t.Helper()
	store := &session.MemStore{}
	require.NoError(t, store.Save("tok123"))
	return store
}

func TestManager_List(t *testing.T) {
	service := &stubCaseService{
		complaints: []api.Complaint{{ComplaintID: "C1", Status: "OPEN"}},
	}
	m := NewManager(service, sessionWithToken(t), nil)

	complaints, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, "C1", complaints[0].ComplaintID)
}

func TestManager_UnauthorizedClearsSession(t *testing.T) {
	service := &stubCaseService{listErr: api.ErrUnauthorized}
	store := sessionWithToken(t)
	m := NewManager(service, store, nil)

	_, err := m.List(context.Background())
	assert.True(t, api.IsUnauthorized(err))

	_, ok := store.Current()
	assert.False(t, ok, "unauthorized response destroys the session")
}

func TestManager_OtherFailuresKeepSession(t *testing.T) {
	service := &stubCaseService{listErr: &api.ServerError{Status: 500, Body: "boom"}}
	store := sessionWithToken(t)
	m := NewManager(service, store, nil)

	_, err := m.List(context.Background())
	assert.True(t, api.IsServer(err))

	_, ok := store.Current()
	assert.True(t, ok, "a transient failure must not log the authority out")
}

func TestManager_Detail(t *testing.T) {
	service := &stubCaseService{
		detail: &api.DetailResponse{
			Complaint: api.ComplaintDetail{ComplaintID: "C1"},
			Workflow:  defaultWorkflow(),
		},
	}
	m := NewManager(service, sessionWithToken(t), nil)

	detail, err := m.Detail(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, "C1", detail.Complaint.ComplaintID)
}

func TestManager_Update(t *testing.T) {
	service := &stubCaseService{}
	m := NewManager(service, sessionWithToken(t), nil)

	err := m.Update(context.Background(), "C1", "IN_PROGRESS", "OM", defaultWorkflow())
	require.NoError(t, err)
	assert.Equal(t, [3]string{"C1", "IN_PROGRESS", "OM"}, service.lastUpdate)
}

func TestManager_Update_RejectsValuesOutsideWorkflow(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		assignedTo string
		wantField  string
	}{
		{"unknown status", "CLOSED", "OM", "status"},
		{"unknown assignee", "OPEN", "NOBODY", "assigned_to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubCaseService{}
			m := NewManager(service, sessionWithToken(t), nil)

			err := m.Update(context.Background(), "C1", tt.status, tt.assignedTo, defaultWorkflow())
			require.Error(t, err)

			var ve *api.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, int32(0), service.updateCalls.Load(), "rejected before any request")
		})
	}
}

func TestManager_Update_EmptyAssigneeAllowed(t *testing.T) {
	service := &stubCaseService{}
	m := NewManager(service, sessionWithToken(t), nil)

	err := m.Update(context.Background(), "C1", "OPEN", "", defaultWorkflow())
	assert.NoError(t, err)
	assert.Equal(t, int32(1), service.updateCalls.Load())
}

func TestManager_Update_UnauthorizedClearsSession(t *testing.T) {
	service := &stubCaseService{updateErr: api.ErrUnauthorized}
	store := sessionWithToken(t)
	m := NewManager(service, store, nil)

	err := m.Update(context.Background(), "C1", "OPEN", "OM", defaultWorkflow())
	assert.True(t, api.IsUnauthorized(err))

	_, ok := store.Current()
	assert.False(t, ok)
}
