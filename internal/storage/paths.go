package storage

import (
	"fmt"
	"strings"
	"time"

	"docverify/internal/model"
)

// Artifact keys are deterministic so re-verification of the same document
// overwrites its previous artifact instead of accumulating copies:
// results/{tenant}/{yyyy}/{mm}/{dd}/{case}/...

func resultPrefix(cc model.CaseContext, at time.Time) string {
	return fmt.Sprintf("results/%s/%s/%s",
		cc.TenantID, at.UTC().Format("2006/01/02"), cc.CaseID)
}

// VerificationKey is the per-document verification artifact path.
func VerificationKey(cc model.CaseContext, at time.Time) string {
	return fmt.Sprintf("%s/%s.verification.json", resultPrefix(cc, at), slug(cc.DocumentName))
}

// ReportKey is the per-case reconciliation report path.
func ReportKey(cc model.CaseContext, at time.Time) string {
	return fmt.Sprintf("%s/case_report.json", resultPrefix(cc, at))
}

// slug makes a document name safe for use in an object key.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '-' || r == '/':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
