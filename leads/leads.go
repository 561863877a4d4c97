package leads

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
)

// Lead is the summary returned when listing an agent's leads.
type Lead struct {
	ID          string `json:"id"`
	AgentID     string `json:"agentId,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DOB         string `json:"dob,omitempty"`
}

// NewLead is the payload submitted by the create-lead form.
type NewLead struct {
	AgentID           string `json:"agentId"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	DOB               string `json:"dob,omitempty"` // YYYY-MM-DD
	Gender            string `json:"gender,omitempty"`
	FatherName        string `json:"fatherName,omitempty"`
	AdharNumber       string `json:"adharNumber,omitempty"`
	PanNumber         string `json:"panNumber,omitempty"`
	ReferenceName     string `json:"referenceName,omitempty"`
	RelationToSubject string `json:"relationToSubject,omitempty"`
	SubjectOccupation string `json:"subjectOccupation,omitempty"`
	SubjectAddress    string `json:"subjectAddress,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
}

func (n NewLead) Validate() error {
	if n.AgentID == "" {
		return fmt.Errorf("%w: agentId is required", apperrors.ErrInvalidRequest)
	}
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrInvalidRequest)
	}
	if n.DOB != "" {
		if _, err := time.Parse(time.DateOnly, n.DOB); err != nil {
			return fmt.Errorf("%w: dob must be YYYY-MM-DD", apperrors.ErrInvalidRequest)
		}
	}
	return nil
}

// LeadOption is one entry of the lead picker on the upload and custom insight forms.
type LeadOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
