// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"
	"encoding/json"

	"docverify/internal/model"
)

// CaseKey identifies one borrower case across its documents.
type CaseKey struct {
	TenantID string
	CaseID   string
}

// CaseDocument is one verified document row as the reconciler sees it.
type CaseDocument struct {
	DocumentName string
	ChecklistID  string
	ArtifactKey  string
	CleanFields  map[string]string
	Verification json.RawMessage
}

// RecordRepository defines persistence for document verification state using
// SQL queries only. No business logic here. All writes are keyed partial
// updates on (tenant_id, case_id, document_name): replaying a pipeline stage
// rewrites the same columns and is therefore idempotent.
type RecordRepository interface {
	// UpsertIngested creates the row for a freshly ingested document, or
	// resets its pipeline columns when the same document is re-uploaded.
	UpsertIngested(ctx context.Context, rec *model.DocumentRecord) error

	// UpdateStatus advances the pipeline status column.
	UpdateStatus(ctx context.Context, cc model.CaseContext, status model.Status) error

	// SetTamper records the gate verdict. Any non-OK verdict raises
	// needs_reconcile immediately, before the pipeline finishes.
	SetTamper(ctx context.Context, cc model.CaseContext, res model.TamperResult) error

	// SetOutcome finalizes the document: terminal outcome, artifact pointer,
	// verification payload, cleaned fields, and the reconcile flag.
	SetOutcome(ctx context.Context, cc model.CaseContext, outcome model.Outcome,
		artifactKey string, verification json.RawMessage, cleanFields map[string]string,
		needsReconcile bool) error

	// ReadyCases returns the cases whose documents have all reached a
	// terminal status, with at least one flagged for reconciliation, and
	// which have not been verified yet.
	ReadyCases(ctx context.Context) ([]CaseKey, error)

	// CaseDocuments lists the verified document rows of one case.
	CaseDocuments(ctx context.Context, key CaseKey) ([]CaseDocument, error)

	// BorrowerReference fetches the system-of-record row for a case.
	// Returns (nil, nil) when the case has no reference data.
	BorrowerReference(ctx context.Context, key CaseKey) (*model.BorrowerReference, error)

	// MarkVerified stamps every row of the case with the reconciliation
	// verdict and the report pointer.
	MarkVerified(ctx context.Context, key CaseKey, passed bool, reportKey string) error
}
