// Package reconcile watches the system-of-record for cases whose documents
// have all finished the pipeline and runs the consensus engine over them. The
// watcher is a fixed-interval poll loop; readiness can stay true indefinitely,
// so processed cases are remembered and re-observations are no-ops.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docverify/internal/config"
	"docverify/internal/consensus"
	"docverify/internal/model"
	"docverify/internal/oracle"
	"docverify/internal/repository"
	"docverify/internal/storage"
)

// Watcher polls for ready cases and reconciles them one at a time.
type Watcher struct {
	repo     repository.RecordRepository
	store    storage.Storage
	profiles oracle.ProfileExtractor
	engine   *consensus.Engine
	log      *slog.Logger

	interval  time.Duration
	processed map[repository.CaseKey]struct{}
	now       func() time.Time
}

func NewWatcher(cfg config.PipelineConfig, repo repository.RecordRepository, store storage.Storage,
	profiles oracle.ProfileExtractor, engine *consensus.Engine, log *slog.Logger) *Watcher {
	interval := cfg.ReconcileInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		repo:      repo,
		store:     store,
		profiles:  profiles,
		engine:    engine,
		log:       log.With("component", "reconciler"),
		interval:  interval,
		processed: make(map[repository.CaseKey]struct{}),
		now:       time.Now,
	}
}

// Run polls until ctx is canceled. A failed case is logged and retried on the
// next tick; it only enters the processed set after a successful run.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.Poll(ctx); err != nil {
			w.log.Error("poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll runs one readiness sweep.
func (w *Watcher) Poll(ctx context.Context) error {
	keys, err := w.repo.ReadyCases(ctx)
	if err != nil {
		return fmt.Errorf("ready cases: %w", err)
	}
	for _, key := range keys {
		if _, done := w.processed[key]; done {
			continue
		}
		if err := w.reconcileCase(ctx, key); err != nil {
			w.log.Error("case reconciliation failed",
				"tenant_id", key.TenantID, "case_id", key.CaseID, "error", err)
			continue
		}
		w.processed[key] = struct{}{}
	}
	return nil
}

// reconcileCase loads every finished document of the case, distills a profile
// from each, runs consensus against the system-of-record reference (or
// cross-document when none exists), and persists the case report.
func (w *Watcher) reconcileCase(ctx context.Context, key repository.CaseKey) error {
	docs, err := w.repo.CaseDocuments(ctx, key)
	if err != nil {
		return fmt.Errorf("case documents: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("case has no finished documents")
	}

	profiles := make([]consensus.DocumentProfile, 0, len(docs))
	names := make([]string, 0, len(docs))
	var checklistID string
	for _, d := range docs {
		if d.ChecklistID != "" {
			checklistID = d.ChecklistID
		}
		profile, err := w.documentProfile(ctx, d)
		if err != nil {
			return fmt.Errorf("profile for %q: %w", d.DocumentName, err)
		}
		profiles = append(profiles, consensus.DocumentProfile{Name: d.DocumentName, Profile: profile})
		names = append(names, d.DocumentName)
	}

	ref, err := w.repo.BorrowerReference(ctx, key)
	if err != nil {
		return fmt.Errorf("borrower reference: %w", err)
	}

	results, score := w.engine.Reconcile(ctx, profiles, ref)

	cc := model.CaseContext{TenantID: key.TenantID, CaseID: key.CaseID, ChecklistID: checklistID}
	hasReference := ref != nil && len(ref.Fields()) > 0
	report := w.engine.BuildReport(cc, names, results, score, hasReference)

	reportKey := storage.ReportKey(cc, w.now().UTC())
	if err := storage.PutJSON(ctx, w.store, reportKey, report); err != nil {
		return fmt.Errorf("write case report: %w", err)
	}

	passed := report.ValidationSummary.Status == "PASS"
	if err := w.repo.MarkVerified(ctx, key, passed, reportKey); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	w.log.Info("case reconciled",
		"tenant_id", key.TenantID, "case_id", key.CaseID,
		"documents", len(names), "score", score, "status", report.ValidationSummary.Status,
		"recommendation", report.Recommendation.Action)
	return nil
}

// documentProfile asks the oracle to distill the document's artifact into
// identity fields. When the oracle is unavailable the cleaned fields stored in
// the system-of-record serve as a degraded profile.
func (w *Watcher) documentProfile(ctx context.Context, d repository.CaseDocument) (oracle.Profile, error) {
	data := make(map[string]any, len(d.CleanFields))
	for k, v := range d.CleanFields {
		data[k] = v
	}
	if d.ArtifactKey != "" {
		var art map[string]any
		if err := storage.GetJSON(ctx, w.store, d.ArtifactKey, &art); err != nil {
			w.log.Warn("artifact unavailable, using stored fields",
				"key", d.ArtifactKey, "error", err)
		} else if fields, ok := art["fields"].(map[string]any); ok {
			for k, v := range fields {
				data[k] = v
			}
		}
	}
	if len(data) == 0 {
		return oracle.Profile{}, fmt.Errorf("document has no extracted fields")
	}

	profile, err := w.profiles.ExtractProfile(ctx, d.DocumentName, data)
	if err != nil {
		w.log.Warn("profile oracle unavailable, using stored fields", "error", err)
		return degradedProfile(d.CleanFields), nil
	}
	return profile, nil
}

// standardFields are the canonical identity columns a degraded profile keeps
// in the standard slice; everything else becomes additional.
var standardFields = map[string]string{
	"firstname":     "firstName",
	"middlename":    "middleName",
	"lastname":      "lastName",
	"dateofbirth":   "dateOfBirth",
	"dob":           "dateOfBirth",
	"licensenumber": "licenseNumber",
	"licensestate":  "licenseState",
	"issuingstate":  "licenseState",
	"placeofbirth":  "placeOfBirth",
}

func degradedProfile(fields map[string]string) oracle.Profile {
	p := oracle.Profile{
		Standard:   map[string]string{},
		Additional: map[string]string{},
	}
	for k, v := range fields {
		if canonical, ok := standardFields[normalizeKey(k)]; ok {
			p.Standard[canonical] = v
		} else {
			p.Additional[k] = v
		}
	}
	return p
}

func normalizeKey(k string) string {
	out := make([]rune, 0, len(k))
	for _, r := range k {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		}
	}
	return string(out)
}
