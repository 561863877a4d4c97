package leads_test

import (
	"testing"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/leads"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentType(t *testing.T) {
	tests := map[string]leads.DocumentType{
		"AADHAR":         leads.DocumentAadhar,
		"Aadhaar":        leads.DocumentAadhar,
		"pan":            leads.DocumentPAN,
		"Reference Call": leads.DocumentReferenceCall,
		"REFERENCE_CALL": leads.DocumentReferenceCall,
	}
	for input, want := range tests {
		got, err := leads.ParseDocumentType(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got)
	}

	_, err := leads.ParseDocumentType("passport")
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}

func TestReference_Resolved(t *testing.T) {
	ref := leads.Reference{LeadID: "L1", Type: leads.DocumentAadhar}
	require.False(t, ref.Resolved())

	resolved := ref.Resolve("doc-9")
	require.True(t, resolved.Resolved())
	require.False(t, ref.Resolved(), "Resolve must not mutate the original")
}

func TestInsight_RiskLevel(t *testing.T) {
	tests := []struct {
		name    string
		insight leads.Insight
		want    leads.RiskLevel
		label   string
	}{
		{"pending status", leads.Insight{Status: "Pending", Score: score(1.0)}, leads.RiskPending, "Not uploaded"},
		{"no score", leads.Insight{Status: "Completed"}, leads.RiskPending, "Not uploaded"},
		{"low", leads.Insight{Status: "Completed", Score: score(4.99)}, leads.RiskLow, "Low risk"},
		{"boundary is medium", leads.Insight{Status: "Completed", Score: score(5.0)}, leads.RiskMedium, "Needs review"},
		{"high score", leads.Insight{Status: "Uploaded", Score: score(8.2)}, leads.RiskMedium, "Needs review"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.insight.RiskLevel())
			require.Equal(t, tt.label, tt.insight.RiskLevel().Label())
		})
	}
}

func TestInsight_ReportPath(t *testing.T) {
	require.Equal(t, "/upload", leads.Insight{DocType: "Aadhaar", Status: "Pending"}.ReportPath("L1"))
	require.Equal(t, "/documents/L1/AADHAR",
		leads.Insight{DocType: "Aadhaar", Status: "Completed", Score: score(2.0)}.ReportPath("L1"))
	require.Equal(t, "/audio/call-7",
		leads.Insight{ID: "call-7", DocType: "Reference Call", Status: "Completed", Score: score(2.0)}.ReportPath("L1"))
}

func TestDecorate(t *testing.T) {
	views := leads.Decorate("L1", []leads.Insight{
		{DocType: "Reference Call", Status: "Pending"},
		{DocType: "Pan", Status: "Completed", Score: score(3.5), Description: "Fields match."},
	})
	require.Len(t, views, 2)
	require.Contains(t, views[0].Summary, "Reference call has not been uploaded")
	require.Equal(t, "Document verification completed with a score of 3.5. Fields match.", views[1].Summary)
	require.Equal(t, leads.RiskLow, views[1].RiskLevel)
}

func TestDocumentTypeOptions(t *testing.T) {
	options := leads.DocumentTypeOptions(map[string]string{
		"PAN":      "PAN Card",
		"Pan":      "Pan",
		"AADHAR":   "",
		"PASSPORT": "Passport",
	})
	require.Equal(t, []leads.DocumentTypeOption{
		{Value: leads.DocumentAadhar, Label: "Aadhaar", Description: leads.DocumentAadhar.Description()},
		{Value: leads.DocumentPAN, Label: "PAN Card", Description: leads.DocumentPAN.Description()},
	}, options)

	require.Empty(t, leads.DocumentTypeOptions(nil))
	require.Len(t, leads.UploadDocumentTypes(), 3)
}

func TestDocumentTypeOption_InsightPath(t *testing.T) {
	pan := leads.DocumentTypeOption{Value: leads.DocumentPAN}
	require.Equal(t, "/documents/L1/PAN", pan.InsightPath("L1"))
	require.Equal(t, "/documents/L%2F1/PAN", pan.InsightPath("L/1"))

	call := leads.DocumentTypeOption{Value: leads.DocumentReferenceCall}
	require.Equal(t, "/documents/L1/REFERENCE_CALL", call.InsightPath("L1"))
}

func TestNewLead_Validate(t *testing.T) {
	require.NoError(t, leads.NewLead{AgentID: "a1", Name: "Ravi", DOB: "1990-04-12"}.Validate())
	require.ErrorIs(t, leads.NewLead{Name: "Ravi"}.Validate(), apperrors.ErrInvalidRequest)
	require.ErrorIs(t, leads.NewLead{AgentID: "a1"}.Validate(), apperrors.ErrInvalidRequest)
	require.ErrorIs(t, leads.NewLead{AgentID: "a1", Name: "Ravi", DOB: "12/04/1990"}.Validate(), apperrors.ErrInvalidRequest)
}

func score(v float64) *float64 {
	return &v
}
