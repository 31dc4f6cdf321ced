package submit

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ompisal63/smart-pothole-system/api"
)

var (
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern  = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

// Coordinate is the picked complaint location.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Draft is the in-progress, not-yet-submitted complaint record. It is
// owned exclusively by one workflow attempt and discarded on success
// or abandonment.
type Draft struct {
	FullName            string
	Email               string
	Mobile              string
	Coordinate          *Coordinate
	LocationDescription string
	ImagePath           string
}

// Validate applies the local form gate. The draft is not submittable
// until every field passes; the first failing field is reported and
// nothing reaches the network.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.FullName) == "" {
		return &api.ValidationError{Field: "full_name", Reason: "name must not be empty"}
	}
	if !mobilePattern.MatchString(d.Mobile) {
		return &api.ValidationError{Field: "mobile", Reason: "mobile number must be exactly 10 digits"}
	}
	if !emailPattern.MatchString(d.Email) {
		return &api.ValidationError{Field: "email", Reason: "not a valid email address"}
	}
	if d.Coordinate == nil {
		return &api.ValidationError{Field: "location", Reason: "no location coordinate picked"}
	}
	if strings.TrimSpace(d.LocationDescription) == "" {
		return &api.ValidationError{Field: "location_description", Reason: "location description must not be empty"}
	}
	return nil
}

// submission converts the draft into the wire payload.
func (d Draft) submission() api.ComplaintSubmission {
	sub := api.ComplaintSubmission{
		FullName:            d.FullName,
		Email:               d.Email,
		Mobile:              d.Mobile,
		LocationDescription: d.LocationDescription,
		ImagePath:           d.ImagePath,
	}
	if d.Coordinate != nil {
		sub.Latitude = strconv.FormatFloat(d.Coordinate.Latitude, 'f', -1, 64)
		sub.Longitude = strconv.FormatFloat(d.Coordinate.Longitude, 'f', -1, 64)
	}
	return sub
}
