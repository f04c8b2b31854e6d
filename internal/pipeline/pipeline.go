// Package pipeline drives one document through verification: tamper gate,
// extraction, classification, validation, artifact write. The pipeline is an
// explicit bounded state machine; each stage depends on the previous stage's
// output, so a run is synchronous and owns its DocumentRecord exclusively.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"docverify/internal/config"
	"docverify/internal/doctype"
	"docverify/internal/fields"
	"docverify/internal/model"
	"docverify/internal/oracle"
	"docverify/internal/queue"
	"docverify/internal/repository"
	"docverify/internal/storage"
	"docverify/internal/tamper"
	"docverify/internal/validate"
)

// ocrInputLimit caps how much document text is handed to the oracle per call.
const ocrInputLimit = 6000

// sidecarAttempts bounds the metadata fetch; the sidecar may land slightly
// after the document that triggered the notification.
const (
	sidecarAttempts = 3
	sidecarDelay    = 2 * time.Second
)

// Sidecar is the metadata JSON uploaded next to each document.
type Sidecar struct {
	DocumentName string    `json:"document_name"`
	Category     string    `json:"category,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// TamperGate is the tamper stage contract; *tamper.Gate satisfies it.
type TamperGate interface {
	Check(path string, meta tamper.Meta) tamper.Result
}

// Pipeline wires the verification stages to their collaborators. Construct one
// per process and reuse it across documents; it holds no per-document state.
type Pipeline struct {
	gate      TamperGate
	extractor oracle.Extractor
	resolver  *doctype.Resolver
	validator *validate.Validator
	store     storage.Storage
	repo      repository.RecordRepository
	metrics   *Metrics
	log       *slog.Logger

	maxRetries int
	now        func() time.Time
}

func New(cfg config.PipelineConfig, gate TamperGate, extractor oracle.Extractor,
	resolver *doctype.Resolver, validator *validate.Validator,
	store storage.Storage, repo repository.RecordRepository,
	metrics *Metrics, log *slog.Logger) *Pipeline {
	return &Pipeline{
		gate:       gate,
		extractor:  extractor,
		resolver:   resolver,
		validator:  validator,
		store:      store,
		repo:       repo,
		metrics:    metrics,
		log:        log.With("component", "pipeline"),
		maxRetries: cfg.MaxExtractionRetries,
		now:        time.Now,
	}
}

// Run processes one upload notification end-to-end. A business failure is a
// normal terminal state and returns nil: the verdict is persisted and the
// message can be committed. A returned error means the outcome could not be
// persisted and the message must be redelivered.
func (p *Pipeline) Run(ctx context.Context, note queue.Notification) error {
	cc := note.CaseContext()
	if !cc.Valid() {
		return fmt.Errorf("notification missing case identifiers: %+v", note)
	}
	log := p.log.With("tenant_id", cc.TenantID, "case_id", cc.CaseID, "document", cc.DocumentName)

	rec := &model.DocumentRecord{
		Case:        cc,
		StorageKey:  note.StorageKey,
		MetadataKey: note.MetadataKey(),
		ClaimedName: cc.DocumentName,
		Status:      model.StatusIngested,
		UploadedAt:  p.uploadedAt(note),
	}
	if err := p.repo.UpsertIngested(ctx, rec); err != nil {
		return fmt.Errorf("record ingestion: %w", err)
	}

	sidecar := p.fetchSidecar(ctx, rec, log)
	rec.SidecarName = sidecar.DocumentName
	rec.ExpectedCategory = sidecar.Category

	path, cleanup, err := storage.DownloadTemp(ctx, p.store, rec.StorageKey)
	if err != nil {
		return fmt.Errorf("download document: %w", err)
	}
	defer cleanup()

	// Tamper gate. Non-OK verdicts keep processing so the fields are still
	// extracted for reconciliation; TAMPERED and ERROR force human review on
	// whatever the later stages conclude.
	res := p.gate.Check(path, tamper.Meta{Created: sidecar.CreatedAt, Modified: sidecar.ModifiedAt})
	rec.Tamper = res.TamperResult
	p.metrics.TamperVerdicts.WithLabelValues(string(res.Status)).Inc()
	if err := p.repo.SetTamper(ctx, cc, res.TamperResult); err != nil {
		return fmt.Errorf("record tamper verdict: %w", err)
	}
	if err := p.advance(ctx, rec, model.StatusTamperChecked); err != nil {
		return err
	}
	if res.Status == model.TamperError {
		log.Error("tamper check failed, continuing with forced review", "reasons", res.Reasons)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	blob := clip(string(text), ocrInputLimit)

	declared := p.resolver.ResolveName(rec.ClaimedName)
	expected := fields.Expected(declared)

	// Extraction / classification loop. Classification failures re-run
	// extraction up to the bound; hard mismatches terminate immediately.
	var raw map[string]any
	for attempt := 0; ; attempt++ {
		raw, err = p.extractor.ExtractFields(ctx, string(declared), expected, map[string]any{
			"document_name": rec.ClaimedName,
			"document_text": blob,
		})
		if err != nil {
			log.Error("field extraction failed", "attempt", attempt, "error", err)
			return p.finish(ctx, rec, model.OutcomeFail, failure{
				Type:        failValidation,
				Stage:       "extraction",
				Reason:      "document content could not be extracted",
				Suggestions: []string{"Upload a clearer copy of the document"},
			}, nil)
		}
		if err := p.advance(ctx, rec, model.StatusExtracted); err != nil {
			return err
		}

		rec.DetectedType = string(p.resolver.ResolveContent(ctx, blob))
		verdict := classify(rec, declared)
		if verdict.ok() {
			break
		}
		if !verdict.hard && attempt < p.maxRetries {
			p.metrics.ExtractionRetries.Inc()
			log.Warn("classification failed, retrying extraction",
				"attempt", attempt, "check", verdict.check, "reason", verdict.reason)
			continue
		}
		log.Warn("classification failed", "check", verdict.check, "reason", verdict.reason)
		p.cleanupMismatch(ctx, rec, log)
		return p.finish(ctx, rec, model.OutcomeFail, failure{
			Type:        verdict.failType,
			Stage:       "classification",
			Reason:      verdict.reason,
			Suggestions: verdict.suggestions(rec.ClaimedName),
		}, nil)
	}
	if err := p.advance(ctx, rec, model.StatusClassified); err != nil {
		return err
	}

	rec.RawFields = raw
	rec.CleanFields = fields.Normalize(raw, expected)

	vres := p.validator.Validate(declared, rec.CleanFields)
	if err := p.advance(ctx, rec, model.StatusValidated); err != nil {
		return err
	}

	switch {
	case !vres.Passed():
		return p.finish(ctx, rec, model.OutcomeHumanReview, failure{
			Type:        validationFailType(vres),
			Stage:       "validation",
			Reason:      strings.Join(vres.Messages(), "; "),
			Suggestions: []string{"Verify the document fields are legible", "Upload a current, unexpired document"},
		}, &vres)
	case rec.Tamper.ForcesReview():
		return p.finish(ctx, rec, model.OutcomeHumanReview, failure{
			Stage:  "tamper",
			Reason: "document flagged by tamper check: " + strings.Join(rec.Tamper.Reasons, "; "),
		}, &vres)
	default:
		return p.finish(ctx, rec, model.OutcomePass, failure{}, &vres)
	}
}

// uploadedAt parses the notification timestamp, defaulting to now. The value
// feeds the deterministic artifact path, so a reprocessed message keeps
// writing to the same location.
func (p *Pipeline) uploadedAt(note queue.Notification) time.Time {
	if note.UploadedAt != "" {
		if ts, err := time.Parse(time.RFC3339, note.UploadedAt); err == nil {
			return ts.UTC()
		}
	}
	return p.now().UTC()
}

// fetchSidecar reads the metadata JSON next to the upload. Missing metadata is
// tolerated: the pipeline proceeds with the notification's own identifiers.
func (p *Pipeline) fetchSidecar(ctx context.Context, rec *model.DocumentRecord, log *slog.Logger) Sidecar {
	var sc Sidecar
	if err := storage.GetJSONRetry(ctx, p.store, rec.MetadataKey, &sc, sidecarAttempts, sidecarDelay); err != nil {
		log.Warn("sidecar metadata unavailable", "key", rec.MetadataKey, "error", err)
		return Sidecar{}
	}
	return sc
}

// advance moves the record to the next pipeline state in memory and in the
// system-of-record.
func (p *Pipeline) advance(ctx context.Context, rec *model.DocumentRecord, status model.Status) error {
	rec.Status = status
	if err := p.repo.UpdateStatus(ctx, rec.Case, status); err != nil {
		return fmt.Errorf("advance to %s: %w", status, err)
	}
	return nil
}

// cleanupMismatch removes a terminally mismatched upload and its sidecar so
// the requester can re-upload to the same location.
func (p *Pipeline) cleanupMismatch(ctx context.Context, rec *model.DocumentRecord, log *slog.Logger) {
	if err := p.store.Delete(ctx, rec.StorageKey); err != nil {
		log.Warn("cleanup of mismatched document failed", "key", rec.StorageKey, "error", err)
	}
	if err := p.store.Delete(ctx, rec.MetadataKey); err != nil {
		log.Warn("cleanup of sidecar metadata failed", "key", rec.MetadataKey, "error", err)
	}
}

// finish writes the verification artifact, persists the terminal outcome, and
// counts the result. All terminal paths go through here, pass or fail.
func (p *Pipeline) finish(ctx context.Context, rec *model.DocumentRecord, outcome model.Outcome,
	f failure, vres *validate.Result) error {

	rec.Outcome = outcome
	rec.ArtifactKey = storage.VerificationKey(rec.Case, rec.UploadedAt)

	verdict := model.VerificationResult{
		Status:      string(outcome),
		Reason:      f.Reason,
		FailureType: f.Type,
		Stage:       f.Stage,
		Suggestions: f.Suggestions,
		Timestamp:   p.now().UTC(),
	}
	art := artifact{
		VerificationResult: verdict,
		DocumentType:       rec.DetectedType,
		Fields:             rec.CleanFields,
		Tamper:             rec.Tamper,
		Validation:         vres,
	}
	if err := storage.PutJSON(ctx, p.store, rec.ArtifactKey, art); err != nil {
		return fmt.Errorf("write verification artifact: %w", err)
	}

	payload, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("encode verification result: %w", err)
	}
	needsReconcile := outcome != model.OutcomeFail
	if err := p.repo.SetOutcome(ctx, rec.Case, outcome, rec.ArtifactKey, payload, rec.CleanFields, needsReconcile); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	rec.Status = model.StatusDone

	p.metrics.DocumentsProcessed.WithLabelValues(string(outcome)).Inc()
	p.log.Info("document processed",
		"tenant_id", rec.Case.TenantID, "case_id", rec.Case.CaseID,
		"document", rec.Case.DocumentName, "outcome", outcome, "stage", f.Stage)
	return nil
}

// artifact is the per-document JSON written to object storage. It carries the
// verdict plus the cleaned fields the reconciler reads back.
type artifact struct {
	model.VerificationResult
	DocumentType string             `json:"document_type,omitempty"`
	Fields       map[string]string  `json:"fields,omitempty"`
	Tamper       model.TamperResult `json:"tamper"`
	Validation   *validate.Result   `json:"validation,omitempty"`
}

// validationFailType buckets a validation failure: expiry findings get their
// own remediation type, everything else is generic.
func validationFailType(r validate.Result) string {
	for _, m := range r.Messages() {
		if strings.Contains(strings.ToLower(m), "expired") {
			return failExpired
		}
	}
	return failValidation
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
