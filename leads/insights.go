package leads

import (
	"fmt"
	"net/url"
)

const StatusPending = "Pending"

type RiskLevel string

const (
	RiskPending RiskLevel = "pending"
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
)

// lowRiskBelow is the score under which a completed check counts as low risk.
const lowRiskBelow = 5.0

func (r RiskLevel) Label() string {
	switch r {
	case RiskPending:
		return "Not uploaded"
	case RiskLow:
		return "Low risk"
	case RiskMedium:
		return "Needs review"
	default:
		return "Unknown"
	}
}

// Insight is one row of a lead's verification summary as computed by the backend.
type Insight struct {
	ID           string   `json:"id,omitempty"`
	DocType      string   `json:"doctype"`
	DocumentName string   `json:"documentName,omitempty"`
	Status       string   `json:"status"`
	Score        *float64 `json:"score"`
	Description  string   `json:"description,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

func (i Insight) Pending() bool {
	return i.Status == StatusPending || i.Score == nil
}

// ScoreValue returns the score, or zero when the backend has not scored the item.
func (i Insight) ScoreValue() float64 {
	if i.Score == nil {
		return 0
	}
	return *i.Score
}

func (i Insight) RiskLevel() RiskLevel {
	if i.Pending() {
		return RiskPending
	}
	if i.ScoreValue() < lowRiskBelow {
		return RiskLow
	}
	return RiskMedium
}

// ReportPath is the dashboard view an insight links to. Pending items lead
// to the upload view.
func (i Insight) ReportPath(leadID string) string {
	if i.Pending() {
		return "/upload"
	}
	docType, err := ParseDocumentType(i.DocType)
	if err != nil {
		return fmt.Sprintf("/risk-assessment/%s", url.PathEscape(leadID))
	}
	if docType.IsAudio() && i.ID != "" {
		return "/audio/" + url.PathEscape(i.ID)
	}
	return fmt.Sprintf("/documents/%s/%s", url.PathEscape(leadID), docType)
}

// Summary is the one-line description shown on an insight card.
func (i Insight) Summary() string {
	docType, _ := ParseDocumentType(i.DocType)
	if i.Pending() {
		if docType.IsAudio() {
			return "Reference call has not been uploaded yet. Please upload to proceed with verification."
		}
		return "This document has not been uploaded yet. Please upload to proceed with verification."
	}
	subject := "Document"
	if docType.IsAudio() {
		subject = "Reference call"
	}
	return fmt.Sprintf("%s verification completed with a score of %g. %s", subject, i.ScoreValue(), i.Description)
}

// InsightView is an Insight decorated for display.
type InsightView struct {
	Insight
	RiskLevel  RiskLevel `json:"riskLevel"`
	RiskLabel  string    `json:"riskLabel"`
	Summary    string    `json:"summary"`
	ReportPath string    `json:"reportPath"`
}

func Decorate(leadID string, insights []Insight) []InsightView {
	views := make([]InsightView, 0, len(insights))
	for _, insight := range insights {
		level := insight.RiskLevel()
		views = append(views, InsightView{
			Insight:    insight,
			RiskLevel:  level,
			RiskLabel:  level.Label(),
			Summary:    insight.Summary(),
			ReportPath: insight.ReportPath(leadID),
		})
	}
	return views
}
