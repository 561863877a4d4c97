package leads

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
)

// DocumentType enumerates the artefacts a lead can own.
type DocumentType string

const (
	DocumentAadhar        DocumentType = "AADHAR"
	DocumentPAN           DocumentType = "PAN"
	DocumentReferenceCall DocumentType = "REFERENCE_CALL"
)

var documentAliases = map[string]DocumentType{
	"aadhar":         DocumentAadhar,
	"aadhaar":        DocumentAadhar,
	"pan":            DocumentPAN,
	"reference_call": DocumentReferenceCall,
	"reference call": DocumentReferenceCall,
	"referencecall":  DocumentReferenceCall,
	"audio":          DocumentReferenceCall,
}

// ParseDocumentType accepts both the canonical names and the spellings the
// backend uses in insight summaries ("Aadhaar", "Pan", "Reference Call").
func ParseDocumentType(s string) (DocumentType, error) {
	if t, ok := documentAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown document type %q", apperrors.ErrInvalidRequest, s)
}

// IsAudio reports whether the type is resolved through the audio endpoints.
func (t DocumentType) IsAudio() bool {
	return t == DocumentReferenceCall
}

// Label is the display name used by the dashboard.
func (t DocumentType) Label() string {
	switch t {
	case DocumentAadhar:
		return "Aadhaar"
	case DocumentPAN:
		return "Pan"
	case DocumentReferenceCall:
		return "Reference Call"
	default:
		return string(t)
	}
}

var documentOrder = []DocumentType{DocumentReferenceCall, DocumentAadhar, DocumentPAN}

var documentDescriptions = map[DocumentType]string{
	DocumentAadhar:        "Government-issued identification with biometric details",
	DocumentPAN:           "Permanent Account Number for tax identification",
	DocumentReferenceCall: "Recorded conversation between lead and agent",
}

// Description is the help text shown next to a document type option.
func (t DocumentType) Description() string {
	if d, ok := documentDescriptions[t]; ok {
		return d
	}
	return "Document verification insight"
}

// DocumentTypeOption is one selectable document type on a form.
type DocumentTypeOption struct {
	Value       DocumentType `json:"value"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
}

// InsightPath is the report view of this document type for a lead. Reference
// calls go through the same route; the report is resolved from the lead's
// most recent recording.
func (o DocumentTypeOption) InsightPath(leadID string) string {
	return fmt.Sprintf("/documents/%s/%s", url.PathEscape(leadID), o.Value)
}

func optionFor(t DocumentType, label string) DocumentTypeOption {
	if label == "" {
		label = t.Label()
	}
	return DocumentTypeOption{Value: t, Label: label, Description: t.Description()}
}

// UploadDocumentTypes are the types accepted by the upload form.
func UploadDocumentTypes() []DocumentTypeOption {
	out := make([]DocumentTypeOption, 0, len(documentOrder))
	for _, t := range documentOrder {
		out = append(out, optionFor(t, ""))
	}
	return out
}

// DocumentTypeOptions converts the backend's value to label map into options
// in display order. Values the dashboard cannot report on are skipped; when
// several values parse to the same type the first in sorted order wins.
func DocumentTypeOptions(labels map[string]string) []DocumentTypeOption {
	seen := make(map[DocumentType]string, len(labels))
	for _, value := range slices.Sorted(maps.Keys(labels)) {
		t, err := ParseDocumentType(value)
		if err != nil {
			continue
		}
		if _, ok := seen[t]; !ok {
			seen[t] = strings.TrimSpace(labels[value])
		}
	}
	out := make([]DocumentTypeOption, 0, len(seen))
	for _, t := range documentOrder {
		if label, ok := seen[t]; ok {
			out = append(out, optionFor(t, label))
		}
	}
	return out
}

// Reference ties a document type of a lead to the backend resource holding it.
// It is created per navigation and never persisted.
type Reference struct {
	LeadID     string       `json:"leadId"`
	Type       DocumentType `json:"documentType"`
	ResourceID string       `json:"resourceId,omitempty"`
}

// Resolved reports whether the backend has assigned a resource identifier.
func (r Reference) Resolved() bool {
	return r.ResourceID != ""
}

// Resolve returns a copy bound to resourceID.
func (r Reference) Resolve(resourceID string) Reference {
	r.ResourceID = resourceID
	return r
}
