package model

import "time"

// FieldStatus is the per-field reconciliation verdict.
type FieldStatus string

const (
	FieldMatch    FieldStatus = "MATCH"
	FieldPartial  FieldStatus = "PARTIAL"
	FieldMismatch FieldStatus = "MISMATCH"
)

// FieldResult reports how one canonical field reconciled across sources.
// Reference is "-" when no system-of-record value exists for the field.
type FieldResult struct {
	Field     string            `json:"field"`
	Status    FieldStatus       `json:"status"`
	Reference string            `json:"reference"`
	Documents map[string]string `json:"documents"`
	Consensus string            `json:"consensus,omitempty"`
	Issue     string            `json:"issue,omitempty"`
	Note      string            `json:"note,omitempty"`
}

// RecommendationAction is the discrete action a case score maps to.
type RecommendationAction string

const (
	ActionApprove RecommendationAction = "APPROVE"
	ActionReview  RecommendationAction = "REVIEW"
	ActionReject  RecommendationAction = "REJECT"
)

// Recommendation pairs an action with a confidence label and reviewer notes.
type Recommendation struct {
	Action     RecommendationAction `json:"action"`
	Confidence string               `json:"confidence"`
	Notes      string               `json:"notes"`
}

// ValidationSummary is the headline block of a CaseReport.
type ValidationSummary struct {
	TenantID     string `json:"tenant_id"`
	CaseID       string `json:"case_id"`
	ChecklistID  string `json:"checklist_id,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
	Status       string `json:"status"`
	Score        int    `json:"score"`
	Threshold    int    `json:"threshold"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
	Note         string `json:"note,omitempty"`
}

// ReportCounts aggregates field statuses for quick display.
type ReportCounts struct {
	TotalFields int      `json:"total_fields"`
	Matched     int      `json:"matched"`
	Partial     int      `json:"partial"`
	Failed      int      `json:"failed"`
	Issues      []string `json:"issues"`
}

// CaseReport is the immutable per-case reconciliation artifact. It is created
// once per consensus run and persisted to object storage.
type CaseReport struct {
	ValidationSummary  ValidationSummary `json:"validation_summary"`
	DocumentsValidated []string          `json:"documents_validated"`
	FieldResults       []FieldResult     `json:"field_results"`
	Summary            ReportCounts      `json:"summary"`
	Recommendation     Recommendation    `json:"recommendation"`
}

// VerificationResult is the per-document artifact written when the pipeline
// reaches Done, regardless of pass/fail.
type VerificationResult struct {
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	FailureType string    `json:"type,omitempty"`
	Stage       string    `json:"stage,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// BorrowerReference is the system-of-record row a case's documents are
// reconciled against. Empty strings mean the column is unset; reconciliation
// skips unset fields rather than treating them as mismatches.
type BorrowerReference struct {
	TenantID      string
	CaseID        string
	FirstName     string
	MiddleName    string
	LastName      string
	DateOfBirth   string
	PlaceOfBirth  string
	LicenseNumber string
	LicenseState  string
}

// Fields returns the reference as canonical-field → value, omitting unset
// columns so the ConsensusEngine only compares what the record actually has.
func (b BorrowerReference) Fields() map[string]string {
	out := make(map[string]string, 7)
	put := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	put("firstName", b.FirstName)
	put("middleName", b.MiddleName)
	put("lastName", b.LastName)
	put("dateOfBirth", b.DateOfBirth)
	put("placeOfBirth", b.PlaceOfBirth)
	put("licenseNumber", b.LicenseNumber)
	put("licenseState", b.LicenseState)
	return out
}
