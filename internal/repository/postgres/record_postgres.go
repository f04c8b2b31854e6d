package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"docverify/internal/model"
	"docverify/internal/repository"
)

// RecordPostgres is a PostgreSQL implementation of repository.RecordRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type RecordPostgres struct {
	db *sql.DB
}

// NewRecordPostgres creates a new RecordPostgres repository.
func NewRecordPostgres(db *sql.DB) *RecordPostgres {
	return &RecordPostgres{db: db}
}

var _ repository.RecordRepository = (*RecordPostgres)(nil)

// UpsertIngested inserts the document row, or resets its pipeline columns when
// the same document is re-uploaded for the case.
func (r *RecordPostgres) UpsertIngested(ctx context.Context, rec *model.DocumentRecord) error {
	const q = `
		INSERT INTO case_documents (
			tenant_id, case_id, document_name, checklist_id,
			storage_key, metadata_key, status, uploaded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, case_id, document_name) DO UPDATE SET
			checklist_id   = EXCLUDED.checklist_id,
			storage_key    = EXCLUDED.storage_key,
			metadata_key   = EXCLUDED.metadata_key,
			status         = EXCLUDED.status,
			outcome        = NULL,
			tamper_status  = NULL,
			clean_fields   = NULL,
			verification   = NULL,
			artifact_key   = NULL,
			needs_reconcile = FALSE,
			verified       = FALSE,
			report_key     = NULL,
			uploaded_at    = EXCLUDED.uploaded_at,
			updated_at     = NOW()
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.Case.TenantID,
		rec.Case.CaseID,
		rec.Case.DocumentName,
		rec.Case.ChecklistID,
		rec.StorageKey,
		rec.MetadataKey,
		rec.Status,
		rec.UploadedAt,
	)
	return err
}

// UpdateStatus advances the pipeline status column for one document row.
func (r *RecordPostgres) UpdateStatus(ctx context.Context, cc model.CaseContext, status model.Status) error {
	const q = `
		UPDATE case_documents
		SET status = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND case_id = $2 AND document_name = $3
	`
	res, err := r.db.ExecContext(ctx, q, cc.TenantID, cc.CaseID, cc.DocumentName, status)
	if err != nil {
		return err
	}
	return requireRow(res, cc)
}

// SetTamper records the gate verdict. Any non-OK verdict raises
// needs_reconcile right away, so the case reaches a reviewer even when a later
// stage fails before the document finishes.
func (r *RecordPostgres) SetTamper(ctx context.Context, cc model.CaseContext, tr model.TamperResult) error {
	const q = `
		UPDATE case_documents
		SET tamper_status = $4,
		    needs_reconcile = needs_reconcile OR $5,
		    updated_at = NOW()
		WHERE tenant_id = $1 AND case_id = $2 AND document_name = $3
	`
	res, err := r.db.ExecContext(ctx, q,
		cc.TenantID, cc.CaseID, cc.DocumentName,
		tr.Status, tr.Status != model.TamperOK,
	)
	if err != nil {
		return err
	}
	return requireRow(res, cc)
}

// SetOutcome finalizes the document row with its terminal outcome and the
// pointers the reconciler needs.
func (r *RecordPostgres) SetOutcome(ctx context.Context, cc model.CaseContext, outcome model.Outcome,
	artifactKey string, verification json.RawMessage, cleanFields map[string]string,
	needsReconcile bool) error {

	fields, err := json.Marshal(cleanFields)
	if err != nil {
		return fmt.Errorf("encode clean fields: %w", err)
	}
	const q = `
		UPDATE case_documents
		SET status = $4,
		    outcome = $5,
		    artifact_key = $6,
		    verification = $7,
		    clean_fields = $8,
		    needs_reconcile = needs_reconcile OR $9,
		    updated_at = NOW()
		WHERE tenant_id = $1 AND case_id = $2 AND document_name = $3
	`
	res, err := r.db.ExecContext(ctx, q,
		cc.TenantID, cc.CaseID, cc.DocumentName,
		model.StatusDone, outcome, artifactKey,
		[]byte(verification), fields, needsReconcile,
	)
	if err != nil {
		return err
	}
	return requireRow(res, cc)
}

// ReadyCases returns cases whose documents are all terminal, with at least one
// needing reconciliation, and which have not been verified yet.
func (r *RecordPostgres) ReadyCases(ctx context.Context) ([]repository.CaseKey, error) {
	const q = `
		SELECT tenant_id, case_id
		FROM case_documents
		GROUP BY tenant_id, case_id
		HAVING BOOL_AND(status = $1)
		   AND BOOL_OR(needs_reconcile)
		   AND NOT BOOL_OR(verified)
		ORDER BY tenant_id, case_id
	`
	rows, err := r.db.QueryContext(ctx, q, model.StatusDone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]repository.CaseKey, 0)
	for rows.Next() {
		var k repository.CaseKey
		if err := rows.Scan(&k.TenantID, &k.CaseID); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// CaseDocuments lists the finished document rows for one case.
func (r *RecordPostgres) CaseDocuments(ctx context.Context, key repository.CaseKey) ([]repository.CaseDocument, error) {
	const q = `
		SELECT document_name, checklist_id, COALESCE(artifact_key, ''),
		       COALESCE(clean_fields, '{}'::jsonb), COALESCE(verification, '{}'::jsonb)
		FROM case_documents
		WHERE tenant_id = $1 AND case_id = $2 AND status = $3
		ORDER BY document_name
	`
	rows, err := r.db.QueryContext(ctx, q, key.TenantID, key.CaseID, model.StatusDone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]repository.CaseDocument, 0)
	for rows.Next() {
		var (
			d      repository.CaseDocument
			fields []byte
		)
		if err := rows.Scan(&d.DocumentName, &d.ChecklistID, &d.ArtifactKey, &fields, &d.Verification); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(fields, &d.CleanFields); err != nil {
			return nil, fmt.Errorf("decode clean fields for %q: %w", d.DocumentName, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// BorrowerReference fetches the system-of-record row for a case. Missing rows
// are not an error: reconciliation falls back to document consensus.
func (r *RecordPostgres) BorrowerReference(ctx context.Context, key repository.CaseKey) (*model.BorrowerReference, error) {
	const q = `
		SELECT tenant_id, case_id,
		       COALESCE(first_name, ''), COALESCE(middle_name, ''), COALESCE(last_name, ''),
		       COALESCE(date_of_birth, ''), COALESCE(place_of_birth, ''),
		       COALESCE(license_number, ''), COALESCE(license_state, '')
		FROM borrower_references
		WHERE tenant_id = $1 AND case_id = $2
	`
	row := r.db.QueryRowContext(ctx, q, key.TenantID, key.CaseID)
	var b model.BorrowerReference
	if err := row.Scan(
		&b.TenantID,
		&b.CaseID,
		&b.FirstName,
		&b.MiddleName,
		&b.LastName,
		&b.DateOfBirth,
		&b.PlaceOfBirth,
		&b.LicenseNumber,
		&b.LicenseState,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// MarkVerified stamps every row of the case with the reconciliation verdict.
func (r *RecordPostgres) MarkVerified(ctx context.Context, key repository.CaseKey, passed bool, reportKey string) error {
	const q = `
		UPDATE case_documents
		SET verified = TRUE,
		    outcome = CASE WHEN $3 THEN outcome ELSE $4 END,
		    report_key = $5,
		    updated_at = NOW()
		WHERE tenant_id = $1 AND case_id = $2
	`
	_, err := r.db.ExecContext(ctx, q,
		key.TenantID, key.CaseID,
		passed, model.OutcomeHumanReview, reportKey,
	)
	return err
}

// requireRow turns a zero-row update into an explicit error so a worker replay
// against a missing row is visible instead of silent.
func requireRow(res sql.Result, cc model.CaseContext) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no row for %s/%s/%s", cc.TenantID, cc.CaseID, cc.DocumentName)
	}
	return nil
}
