package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// Login exchanges authority credentials for a bearer token. The
// citizen flow never calls this; it is the entry point of every
// authority workflow.
func (c *Client) Login(ctx context.Context, authorityID, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"authority_id": authorityID,
		"password":     password,
	})
	if err != nil {
		return "", fmt.Errorf("encode login payload: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPost, "/authority/login", bytes.NewReader(payload), "application/json", false)
	if err != nil {
		return "", err
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", NewDecodeError("access_token", err)
	}
	if body.AccessToken == "" {
		return "", NewDecodeError("access_token", nil)
	}
	return body.AccessToken, nil
}

// Predict uploads an image and returns the classifier's verdict.
// Both fields are mandatory in the response; absence of either is a
// decode error. No retry and no caching of a prior verdict.
func (c *Client) Predict(ctx context.Context, imagePath string) (Verdict, error) {
	body, contentType, err := imageForm(imagePath, "file", nil)
	if err != nil {
		return Verdict{}, err
	}

	resp, err := c.DoUpload(ctx, http.MethodPost, "/predict", body, contentType, false)
	if err != nil {
		return Verdict{}, err
	}

	var decoded struct {
		Confidence *float64 `json:"confidence"`
		IsPothole  *bool    `json:"is_pothole"`
	}
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return Verdict{}, NewDecodeError("verdict", err)
	}
	if decoded.Confidence == nil {
		return Verdict{}, NewDecodeError("confidence", nil)
	}
	if decoded.IsPothole == nil {
		return Verdict{}, NewDecodeError("is_pothole", nil)
	}
	return Verdict{Confidence: *decoded.Confidence, IsPothole: *decoded.IsPothole}, nil
}

// SubmitComplaint registers a complaint with all draft fields as a
// multipart payload. The citizen flow requires no login. Returns the
// server-generated complaint id.
func (c *Client) SubmitComplaint(ctx context.Context, sub ComplaintSubmission) (string, error) {
	fields := map[string]string{
		"full_name":            sub.FullName,
		"email":                sub.Email,
		"mobile":               sub.Mobile,
		"latitude":             sub.Latitude,
		"longitude":            sub.Longitude,
		"location_description": sub.LocationDescription,
	}

	body, contentType, err := imageForm(sub.ImagePath, "image", fields)
	if err != nil {
		return "", err
	}

	resp, err := c.DoUpload(ctx, http.MethodPost, "/authority/complaint", body, contentType, false)
	if err != nil {
		return "", err
	}

	var decoded struct {
		ComplaintID string `json:"complaint_id"`
	}
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return "", NewDecodeError("complaint_id", err)
	}
	if decoded.ComplaintID == "" {
		return "", NewDecodeError("complaint_id", nil)
	}
	return decoded.ComplaintID, nil
}

// ListComplaints fetches the full summary list for the authority.
func (c *Client) ListComplaints(ctx context.Context) ([]Complaint, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/authority/complaints", nil, "", true)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Complaints []Complaint `json:"complaints"`
	}
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, NewDecodeError("complaints", err)
	}
	for i := range decoded.Complaints {
		if decoded.Complaints[i].Status == "" {
			decoded.Complaints[i].Status = "OPEN"
		}
	}
	return decoded.Complaints, nil
}

// GetComplaintDetail fetches one complaint with its media reference
// and workflow constraints.
func (c *Client) GetComplaintDetail(ctx context.Context, complaintID string) (*DetailResponse, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/authority/complaint/"+complaintID, nil, "", true)
	if err != nil {
		return nil, err
	}

	var decoded DetailResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, NewDecodeError("complaint", err)
	}
	if decoded.Complaint.ComplaintID == "" {
		return nil, NewDecodeError("complaint_id", nil)
	}
	return &decoded, nil
}

// UpdateComplaint patches status and assignee for one complaint. The
// response body is opaque; only the 2xx status is inspected and the
// next detail fetch is authoritative.
func (c *Client) UpdateComplaint(ctx context.Context, complaintID, status, assignedTo string) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("status", status); err != nil {
		return fmt.Errorf("write form: %w", err)
	}
	if err := form.WriteField("assigned_to", assignedTo); err != nil {
		return fmt.Errorf("write form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}

	_, err := c.Do(ctx, http.MethodPatch, "/authority/complaint/"+complaintID, &buf, form.FormDataContentType(), true)
	return err
}

// imageForm builds a multipart body with the given text fields plus
// the image file under fileField.
func imageForm(imagePath, fileField string, fields map[string]string) (io.Reader, string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", name, err)
		}
	}

	part, err := form.CreateFormFile(fileField, filepath.Base(imagePath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return &buf, form.FormDataContentType(), nil
}
