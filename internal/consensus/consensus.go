// Package consensus reconciles the same canonical field across several
// documents, and optionally one system-of-record reference, into a single
// confidence-weighted verdict. Oracle failures degrade to deterministic
// comparisons instead of failing the run.
package consensus

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"docverify/internal/model"
	"docverify/internal/oracle"
)

// Score weighting and recommendation boundaries.
const (
	referenceWeight  = 70
	additionalWeight = 30

	scoreApproveHigh = 95
	scoreApprove     = 85
	scoreReview      = 70

	partialAgreementPct = 70
)

// DocumentProfile is one document's contribution to reconciliation.
type DocumentProfile struct {
	Name    string
	Profile oracle.Profile
}

// referenceFields fixes the order and display names of the system-of-record
// fields. Iteration order is part of the report contract.
var referenceFields = []struct {
	key     string
	display string
}{
	{"firstName", "First Name"},
	{"middleName", "Middle Name"},
	{"lastName", "Last Name"},
	{"dateOfBirth", "Date of Birth"},
	{"licenseNumber", "License Number"},
	{"licenseState", "License State"},
	{"placeOfBirth", "Place of Birth"},
}

var displayNames = func() map[string]string {
	m := make(map[string]string, len(referenceFields))
	for _, f := range referenceFields {
		m[f.key] = f.display
	}
	return m
}()

// Engine runs the two reconciliation modes and renders case reports.
type Engine struct {
	cmp       oracle.Comparer
	finder    oracle.ConsensusFinder
	threshold int
	log       *slog.Logger
	now       func() time.Time
}

func NewEngine(cmp oracle.Comparer, finder oracle.ConsensusFinder, threshold int, log *slog.Logger) *Engine {
	return &Engine{
		cmp:       cmp,
		finder:    finder,
		threshold: threshold,
		log:       log.With("component", "consensus"),
		now:       time.Now,
	}
}

// Reconcile validates the documents in reference mode when ref has any usable
// fields, otherwise in cross-document mode, and returns the field results with
// the overall score.
func (e *Engine) Reconcile(ctx context.Context, docs []DocumentProfile, ref *model.BorrowerReference) ([]model.FieldResult, int) {
	if ref != nil && len(ref.Fields()) > 0 {
		return e.reconcileWithReference(ctx, docs, *ref)
	}
	return e.reconcileCrossDocument(ctx, docs)
}

// reconcileWithReference scores reference-field agreement at 70% weight and
// additional-field cross-document agreement at 30%.
func (e *Engine) reconcileWithReference(ctx context.Context, docs []DocumentProfile, ref model.BorrowerReference) ([]model.FieldResult, int) {
	refValues := ref.Fields()

	var results []model.FieldResult
	total, matched := 0, 0

	for _, f := range referenceFields {
		refValue, ok := refValues[f.key]
		if !ok {
			continue
		}
		total++

		docValues := make(map[string]string, len(docs))
		allMatch := true
		anyValue := false
		var issues []string

		for _, doc := range docs {
			value := doc.Profile.Standard[f.key]
			if value == "" {
				docValues[doc.Name] = "-"
				continue
			}
			anyValue = true
			docValues[doc.Name] = value

			cmp := e.compare(ctx, f.key, refValue, value, doc.Name)
			if !cmp.Match {
				allMatch = false
				issues = append(issues, fmt.Sprintf("%s: %s", doc.Name, cmp.Reason))
			}
		}

		res := model.FieldResult{
			Field:     f.display,
			Reference: refValue,
			Documents: docValues,
		}
		switch {
		case allMatch || !anyValue:
			// No document carrying the field counts as agreement with the
			// record rather than as a contradiction.
			res.Status = model.FieldMatch
			matched++
		case len(issues) > 0:
			res.Status = model.FieldPartial
			res.Issue = strings.Join(issues, "; ")
		default:
			res.Status = model.FieldMismatch
			res.Issue = "values don't match reference"
		}
		results = append(results, res)
	}

	refContribution := float64(referenceWeight)
	if total > 0 {
		refContribution = float64(matched) / float64(total) * referenceWeight
	}

	additionalResults, additionalContribution := e.reconcileAdditional(ctx, docs)
	results = append(results, additionalResults...)

	score := int(refContribution + additionalContribution)
	e.log.Info("reference reconciliation done",
		"reference_fields", total, "matched", matched, "score", score)
	return results, score
}

// reconcileAdditional finds cross-document consensus on the non-reference
// fields and converts mean agreement into the 30% score share.
func (e *Engine) reconcileAdditional(ctx context.Context, docs []DocumentProfile) ([]model.FieldResult, float64) {
	fields := collectFields(docs, func(p oracle.Profile) map[string]string { return p.Additional })
	if len(fields) == 0 {
		return nil, additionalWeight
	}

	var results []model.FieldResult
	totalAgreement := 0.0

	for _, name := range sortedKeys(fields) {
		docValues := fields[name]
		cons := e.consensus(ctx, name, docValues)

		pct := agreementPct(cons)
		totalAgreement += pct

		status := model.FieldPartial
		if cons.AllMatch {
			status = model.FieldMatch
		}
		results = append(results, model.FieldResult{
			Field:     displayName(name),
			Status:    status,
			Reference: "-",
			Documents: docValues,
			Note:      "cross-document validation",
		})
	}

	avg := totalAgreement / float64(len(fields))
	return results, avg / 100 * additionalWeight
}

// reconcileCrossDocument scores every field equally by its agreement
// percentage; used when no system-of-record reference exists.
func (e *Engine) reconcileCrossDocument(ctx context.Context, docs []DocumentProfile) ([]model.FieldResult, int) {
	fields := collectFields(docs, func(p oracle.Profile) map[string]string {
		merged := make(map[string]string, len(p.Standard)+len(p.Additional))
		for k, v := range p.Standard {
			merged[k] = v
		}
		for k, v := range p.Additional {
			merged[k] = v
		}
		return merged
	})
	if len(fields) == 0 {
		return nil, 0
	}

	var results []model.FieldResult
	totalScore := 0.0

	for _, name := range sortedKeys(fields) {
		docValues := fields[name]
		cons := e.consensus(ctx, name, docValues)
		pct := agreementPct(cons)
		totalScore += pct

		var status model.FieldStatus
		switch {
		case cons.AllMatch:
			status = model.FieldMatch
		case pct >= partialAgreementPct:
			status = model.FieldPartial
		default:
			status = model.FieldMismatch
		}

		formatted := make(map[string]string, len(docs))
		for _, doc := range docs {
			if v, ok := docValues[doc.Name]; ok {
				formatted[doc.Name] = v
			} else {
				formatted[doc.Name] = "-"
			}
		}

		res := model.FieldResult{
			Field:     displayName(name),
			Status:    status,
			Reference: "-",
			Documents: formatted,
			Issue:     cons.Issue,
		}
		if cons.Value != "" {
			res.Consensus = fmt.Sprintf("%s (%d/%d documents)", cons.Value, cons.AgreementCount, cons.TotalDocuments)
		}
		results = append(results, res)
	}

	score := int(totalScore / float64(len(fields)))
	e.log.Info("cross-document reconciliation done", "fields", len(fields), "score", score)
	return results, score
}

// compare asks the oracle, degrading to an exact case-insensitive match when
// the oracle is unavailable.
func (e *Engine) compare(ctx context.Context, field, reference, value, docName string) oracle.Comparison {
	cmp, err := e.cmp.CompareValues(ctx, field, reference, value, docName)
	if err == nil {
		return cmp
	}
	e.log.Warn("comparison oracle unavailable, using exact match", "field", field, "error", err)
	if strings.EqualFold(strings.TrimSpace(reference), strings.TrimSpace(value)) {
		return oracle.Comparison{Match: true, Reason: "exact match"}
	}
	return oracle.Comparison{Match: false, Reason: "values differ (oracle unavailable)"}
}

// consensus asks the oracle, degrading to a majority vote over normalized
// values. The vote tie-breaks on the lexicographically smallest value so the
// result is deterministic.
func (e *Engine) consensus(ctx context.Context, field string, values map[string]string) oracle.Consensus {
	cons, err := e.finder.FindConsensus(ctx, field, values)
	if err == nil {
		return cons
	}
	e.log.Warn("consensus oracle unavailable, using majority vote", "field", field, "error", err)

	counts := map[string]int{}
	for _, v := range values {
		if v != "" {
			counts[strings.ToUpper(strings.TrimSpace(v))]++
		}
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return oracle.Consensus{TotalDocuments: len(values), Issue: "no values found in any document"}
	}

	winner, best := "", 0
	for _, v := range sortedKeys2(counts) {
		if counts[v] > best {
			winner, best = v, counts[v]
		}
	}
	cons = oracle.Consensus{
		Value:          winner,
		AgreementCount: best,
		TotalDocuments: total,
		AllMatch:       best == total,
	}
	if !cons.AllMatch {
		cons.Issue = fmt.Sprintf("only %d/%d documents agree", best, total)
	}
	return cons
}

// BuildReport renders the per-case artifact: summary, counts, and the
// score-driven recommendation.
func (e *Engine) BuildReport(cc model.CaseContext, docNames []string, results []model.FieldResult, score int, hasReference bool) model.CaseReport {
	counts := model.ReportCounts{TotalFields: len(results), Issues: []string{}}
	for _, r := range results {
		switch r.Status {
		case model.FieldMatch:
			counts.Matched++
		case model.FieldPartial:
			counts.Partial++
		case model.FieldMismatch:
			counts.Failed++
		}
		if r.Issue != "" {
			counts.Issues = append(counts.Issues, r.Issue)
		}
	}

	status, message := "PASS", "Identity verified successfully"
	if score < e.threshold {
		status, message = "FAIL", "Validation failed - Manual review required"
	}

	summary := model.ValidationSummary{
		TenantID:     cc.TenantID,
		CaseID:       cc.CaseID,
		ChecklistID:  cc.ChecklistID,
		DocumentName: cc.DocumentName,
		Status:       status,
		Score:        score,
		Threshold:    e.threshold,
		Message:      message,
		Timestamp:    e.now().UTC().Format(time.RFC3339),
	}
	if !hasReference {
		summary.Note = "No reference data in system of record - validated using document consensus"
	}

	return model.CaseReport{
		ValidationSummary:  summary,
		DocumentsValidated: docNames,
		FieldResults:       results,
		Summary:            counts,
		Recommendation:     Recommend(score),
	}
}

// Recommend maps a case score onto the action ladder.
func Recommend(score int) model.Recommendation {
	switch {
	case score >= scoreApproveHigh:
		return model.Recommendation{
			Action:     model.ActionApprove,
			Confidence: "HIGH",
			Notes:      "All critical fields verified. Strong validation score.",
		}
	case score >= scoreApprove:
		return model.Recommendation{
			Action:     model.ActionApprove,
			Confidence: "MEDIUM-HIGH",
			Notes:      "Validation passed. Minor discrepancies detected but within acceptable threshold.",
		}
	case score >= scoreReview:
		return model.Recommendation{
			Action:     model.ActionReview,
			Confidence: "MEDIUM",
			Notes:      "Manual review recommended. Multiple field discrepancies detected.",
		}
	default:
		return model.Recommendation{
			Action:     model.ActionReject,
			Confidence: "LOW",
			Notes:      "Critical mismatches detected. Recommend rejection or thorough manual review.",
		}
	}
}

// agreementPct converts a consensus into a 0-100 agreement percentage.
func agreementPct(c oracle.Consensus) float64 {
	if c.TotalDocuments == 0 {
		return 0
	}
	return float64(c.AgreementCount) / float64(c.TotalDocuments) * 100
}

// collectFields gathers per-field document values, skipping empties.
func collectFields(docs []DocumentProfile, pick func(oracle.Profile) map[string]string) map[string]map[string]string {
	out := map[string]map[string]string{}
	for _, doc := range docs {
		for name, value := range pick(doc.Profile) {
			if value == "" {
				continue
			}
			if out[name] == nil {
				out[name] = map[string]string{}
			}
			out[name][doc.Name] = value
		}
	}
	return out
}

// displayName prettifies a field key for report output.
func displayName(key string) string {
	if d, ok := displayNames[key]; ok {
		return d
	}
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func sortedKeys(m map[string]map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys2(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
