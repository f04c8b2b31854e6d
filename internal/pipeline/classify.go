package pipeline

import (
	"fmt"

	"docverify/internal/doctype"
	"docverify/internal/model"
)

// Failure taxonomy on the verification artifact. The type tells the requester
// what kind of re-upload fixes the problem.
const (
	failDocumentMismatch = "document_mismatch"
	failContentMismatch  = "content_mismatch"
	failExpired          = "expired"
	failValidation       = "validation_failed"
)

// failure describes a terminal non-pass result for the artifact.
type failure struct {
	Type        string
	Stage       string
	Reason      string
	Suggestions []string
}

// classVerdict is the combined result of the three classification checks.
// hard verdicts cannot be fixed by re-running extraction.
type classVerdict struct {
	check    string
	failType string
	reason   string
	hard     bool
}

func (v classVerdict) ok() bool { return v.check == "" }

func (v classVerdict) suggestions(claimedName string) []string {
	switch v.failType {
	case failDocumentMismatch:
		return []string{
			fmt.Sprintf("Upload the document requested by the checklist: %s", claimedName),
			"Check that the uploaded file matches the requested document name",
		}
	default:
		return []string{
			fmt.Sprintf("Upload a document of the requested type: %s", claimedName),
			"Verify the correct file was selected before uploading",
		}
	}
}

// classify runs the three independent mismatch checks. All three must pass.
// The name and category checks do not depend on extraction output, so their
// failures are hard; only the subtype check is worth a re-extraction.
func classify(rec *model.DocumentRecord, declared doctype.Type) classVerdict {
	detected := doctype.Type(rec.DetectedType)

	// Coarse category: requester expectation vs content.
	if expected := doctype.ParseCategory(rec.ExpectedCategory); expected != doctype.CategoryUnknown {
		if got := doctype.CategoryOf(detected); got != expected {
			return classVerdict{
				check:    "category",
				failType: failContentMismatch,
				reason: fmt.Sprintf("document category %q does not match the expected category %q",
					got, expected),
				hard: true,
			}
		}
	}

	// Sidecar name vs system-of-record name.
	if rec.SidecarName != "" {
		resolver := doctype.NewResolver(nil)
		fromSidecar := resolver.ResolveName(rec.SidecarName)
		if doctype.Mismatch(declared, fromSidecar) {
			return classVerdict{
				check:    "document name",
				failType: failDocumentMismatch,
				reason: fmt.Sprintf("uploaded document %q does not match the requested document %q",
					rec.SidecarName, rec.ClaimedName),
				hard: true,
			}
		}
	}

	// Fine-grained subtype compatibility.
	if doctype.Mismatch(declared, detected) {
		return classVerdict{
			check:    "subtype",
			failType: failContentMismatch,
			reason: fmt.Sprintf("declared type %q does not match detected type %q",
				declared, detected),
		}
	}
	return classVerdict{}
}
