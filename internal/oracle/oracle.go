// Package oracle wraps the LLM behind small purpose-built interfaces so the
// pipeline and the reconciler never talk to the model API directly. Every
// method is best-effort: callers are expected to degrade to deterministic
// fallbacks when an oracle returns an error.
package oracle

import "context"

// Classifier labels a document from an OCR text summary. The returned label
// should come from the canonical type vocabulary but is not guaranteed to.
type Classifier interface {
	ClassifyDocument(ctx context.Context, summary string) (string, error)
}

// Extractor pulls the expected fields for a document type out of raw OCR
// output. Missing fields come back as empty strings; the oracle must not
// invent keys outside the expected list.
type Extractor interface {
	ExtractFields(ctx context.Context, docType string, expected []string, input map[string]any) (map[string]any, error)
}

// Profile is the identity slice of one document used during reconciliation:
// the standard borrower fields plus whatever else the document carries.
type Profile struct {
	Standard   map[string]string `json:"standard_fields"`
	Additional map[string]string `json:"additional_fields"`
}

// ProfileExtractor distills a stored verification artifact into a Profile.
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, documentName string, data map[string]any) (Profile, error)
}

// Comparison is the verdict on one reference-vs-document value pair.
type Comparison struct {
	Match  bool   `json:"match"`
	Reason string `json:"reason"`
}

// Comparer decides semantic equivalence of two field values: case, format,
// abbreviation, and nickname differences all count as matches.
type Comparer interface {
	CompareValues(ctx context.Context, field, reference, value, documentName string) (Comparison, error)
}

// Consensus summarizes agreement on one field across several documents.
type Consensus struct {
	Value          string `json:"consensus"`
	AgreementCount int    `json:"agreement_count"`
	TotalDocuments int    `json:"total_documents"`
	AllMatch       bool   `json:"all_match"`
	Issue          string `json:"issue,omitempty"`
}

// ConsensusFinder picks the most likely correct value for a field given the
// per-document values, accounting for semantic equivalence.
type ConsensusFinder interface {
	FindConsensus(ctx context.Context, field string, values map[string]string) (Consensus, error)
}
