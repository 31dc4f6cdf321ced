package api

import "strconv"

// Complaint is the summary record shown on the authority dashboard.
type Complaint struct {
	ComplaintID         string `json:"complaint_id"`
	FullName            string `json:"full_name"`
	Mobile              string `json:"mobile"`
	LocationDescription string `json:"location_description"`
	Status              string `json:"status"`
	Timestamp           string `json:"timestamp"`
}

// ComplaintDetail is the full record for one complaint, a superset of
// the summary plus assignment metadata. It is replaced wholesale on
// each fetch.
type ComplaintDetail struct {
	ComplaintID         string `json:"complaint_id"`
	FullName            string `json:"full_name"`
	Email               string `json:"email"`
	Mobile              string `json:"mobile"`
	Latitude            string `json:"latitude"`
	Longitude           string `json:"longitude"`
	LocationDescription string `json:"location_description"`
	Timestamp           string `json:"timestamp"`
	Status              string `json:"status"`
	AssignedTo          string `json:"assigned_to"`
	AssignedBy          string `json:"assigned_by"`
	AssignedAt          string `json:"assigned_at"`
	LastUpdated         string `json:"last_updated"`
}

// MediaInfo carries the evidence image reference. It is opaque to the
// client and only used for display.
type MediaInfo struct {
	ImageURL string `json:"image_url"`
}

// WorkflowInfo is the server-declared set of legal update values for
// one complaint. Update operations must restrict their chosen status
// and assignee to these sets. It is supplied fresh with each detail
// fetch and never cached across complaints.
type WorkflowInfo struct {
	AllowedStatus    []string `json:"allowed_status"`
	AllowedAssignees []string `json:"allowed_assignees"`
}

// AllowsStatus reports whether s is in the allowed status set.
func (w WorkflowInfo) AllowsStatus(s string) bool {
	for _, v := range w.AllowedStatus {
		if v == s {
			return true
		}
	}
	return false
}

// AllowsAssignee reports whether a is in the allowed assignee set.
func (w WorkflowInfo) AllowsAssignee(a string) bool {
	for _, v := range w.AllowedAssignees {
		if v == a {
			return true
		}
	}
	return false
}

// DetailResponse is the full detail fetch payload.
type DetailResponse struct {
	AuthorityID string          `json:"authority_id"`
	Complaint   ComplaintDetail `json:"complaint"`
	Media       MediaInfo       `json:"media"`
	Workflow    WorkflowInfo    `json:"workflow"`
}

// Verdict is the remote classifier's pothole determination.
type Verdict struct {
	Confidence float64 `json:"confidence"`
	IsPothole  bool    `json:"is_pothole"`
}

// ComplaintSubmission is the full set of draft fields posted when
// registering a complaint.
type ComplaintSubmission struct {
	FullName            string
	Email               string
	Mobile              string
	Latitude            string
	Longitude           string
	LocationDescription string
	ImagePath           string
}

// LocationCandidate is one ranked geocoder result. Latitude and
// longitude arrive as strings on the wire.
type LocationCandidate struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Coordinates parses the candidate's latitude and longitude.
func (c LocationCandidate) Coordinates() (lat, lon float64, err error) {
	lat, err = strconv.ParseFloat(c.Lat, 64)
	if err != nil {
		return 0, 0, NewDecodeError("lat", err)
	}
	lon, err = strconv.ParseFloat(c.Lon, 64)
	if err != nil {
		return 0, 0, NewDecodeError("lon", err)
	}
	return lat, lon, nil
}
