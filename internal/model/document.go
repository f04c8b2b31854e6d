package model

import "time"

// Status tracks a document's position in the verification pipeline.
type Status string

const (
	StatusIngested      Status = "ingested"
	StatusTamperChecked Status = "tamper_checked"
	StatusExtracted     Status = "extracted"
	StatusClassified    Status = "classified"
	StatusValidated     Status = "validated"
	StatusDone          Status = "done"
)

// Outcome is the terminal pipeline result for one document.
type Outcome string

const (
	OutcomePass        Outcome = "pass"
	OutcomeFail        Outcome = "fail"
	OutcomeHumanReview Outcome = "human_review"
)

// TamperStatus is the TamperGate verdict. Escalation only ever moves down
// this list within a single run; it never downgrades.
type TamperStatus string

const (
	TamperOK         TamperStatus = "OK"
	TamperSuspicious TamperStatus = "SUSPICIOUS"
	TamperTampered   TamperStatus = "TAMPERED"
	TamperError      TamperStatus = "ERROR"
)

// TamperResult carries the gate verdict plus the signals that produced it.
type TamperResult struct {
	Status  TamperStatus `json:"status"`
	Reasons []string     `json:"reasons,omitempty"`
}

// ForcesReview reports whether the tamper verdict alone mandates human
// escalation. SUSPICIOUS is recorded but does not block downstream stages.
func (t TamperResult) ForcesReview() bool {
	return t.Status == TamperTampered || t.Status == TamperError
}

// DocumentRecord is one uploaded file moving through the pipeline. Stages
// enrich it append-only: later stages never erase earlier stage outputs.
// Once Outcome is set the record is terminal.
type DocumentRecord struct {
	Case        CaseContext `json:"case"`
	StorageKey  string      `json:"storage_key"`
	MetadataKey string      `json:"metadata_key,omitempty"`
	// ClaimedName is the document name the requester declared at upload time.
	ClaimedName string `json:"claimed_name"`
	// SidecarName is the document name recorded in the sidecar metadata JSON,
	// checked against ClaimedName during classification.
	SidecarName string `json:"sidecar_name,omitempty"`
	// DetectedType is the canonical type derived from document content.
	DetectedType string `json:"detected_type,omitempty"`
	// ExpectedCategory is the coarse category the requester's checklist expects.
	ExpectedCategory string `json:"expected_category,omitempty"`

	Status  Status       `json:"status"`
	Tamper  TamperResult `json:"tamper"`
	Outcome Outcome      `json:"outcome,omitempty"`

	// RawFields is the unconstrained extraction output; CleanFields is the
	// normalized map and never contains an empty or placeholder value.
	RawFields   map[string]any    `json:"raw_fields,omitempty"`
	CleanFields map[string]string `json:"clean_fields,omitempty"`

	ArtifactKey string    `json:"artifact_key,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
