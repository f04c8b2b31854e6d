package model

// CaseContext identifies the borrower/loan case a document belongs to.
// It is created at ingestion and never mutated afterwards; every pipeline
// stage and the reconciler read it, nobody writes it.
type CaseContext struct {
	TenantID     string `json:"tenant_id"`
	CaseID       string `json:"case_id"`
	ChecklistID  string `json:"checklist_id,omitempty"`
	DocumentName string `json:"document_name"`
}

// Valid reports whether the context carries the identifiers required to key
// system-of-record updates. A context failing this check is a fatal error for
// the single document, not for the worker loop.
func (c CaseContext) Valid() bool {
	return c.TenantID != "" && c.CaseID != "" && c.DocumentName != ""
}
