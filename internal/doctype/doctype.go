package doctype

import (
	"context"
	"strings"
)

// Type is a canonical document type in the closed vocabulary. Every resolver
// path returns a member of this vocabulary, never free text.
type Type string

const (
	// Core identity documents.
	TypeDrivingLicense       Type = "driving_license"
	TypeMobileDriversLicense Type = "mobile_drivers_license"
	TypeStateID              Type = "state_id"
	TypeRealID               Type = "real_id"

	// Passports.
	TypePassport     Type = "passport"
	TypePassportCard Type = "passport_card"

	// Vital records.
	TypeBirthCertificate    Type = "birth_certificate"
	TypeMarriageCertificate Type = "marriage_certificate"
	TypeDivorceDecree       Type = "divorce_decree"

	TypeSocialSecurityCard Type = "social_security_card"

	// Immigration documents.
	TypePermanentResidentCard Type = "permanent_resident_card"
	TypeNaturalizationCert    Type = "certificate_of_naturalization"
	TypeCitizenshipCert       Type = "certificate_of_citizenship"
	TypeEmploymentAuthDoc     Type = "employment_authorization_document"
	TypeFormI94               Type = "form_i94"
	TypeUSVisa                Type = "us_visa"
	TypeReentryPermit         Type = "reentry_permit"

	// Military and government IDs.
	TypeMilitaryID        Type = "military_id"
	TypeVeteranID         Type = "veteran_id"
	TypeTribalID          Type = "tribal_id"
	TypeGlobalEntryCard   Type = "global_entry_card"
	TypeTSAPrecheckCard   Type = "tsa_precheck_card"
	TypeVoterRegistration Type = "voter_registration"

	// Professional and educational.
	TypeProfessionalLicense Type = "professional_license"
	TypeStudentID           Type = "student_id"

	// Financial and proof-of-residence documents.
	TypeUtilityBill    Type = "utility_bill"
	TypeLeaseAgreement Type = "lease_agreement"
	TypeBankStatement  Type = "bank_statement"
	TypeInsuranceCard  Type = "insurance_card"
	TypeVoidedCheck    Type = "voided_check"
	TypeDirectDeposit  Type = "direct_deposit"

	TypeConsularID Type = "consular_id"
	TypeDigitalID  Type = "digital_id"

	// Generic buckets. These never mismatch against specific types.
	TypeIdentityDocument Type = "identity_document"
	TypeOtherIdentity    Type = "other_identity"
)

// Vocabulary lists every canonical type, generics last.
var Vocabulary = []Type{
	TypeDrivingLicense, TypeMobileDriversLicense, TypeStateID, TypeRealID,
	TypePassport, TypePassportCard,
	TypeBirthCertificate, TypeMarriageCertificate, TypeDivorceDecree,
	TypeSocialSecurityCard,
	TypePermanentResidentCard, TypeNaturalizationCert, TypeCitizenshipCert,
	TypeEmploymentAuthDoc, TypeFormI94, TypeUSVisa, TypeReentryPermit,
	TypeMilitaryID, TypeVeteranID, TypeTribalID, TypeGlobalEntryCard,
	TypeTSAPrecheckCard, TypeVoterRegistration,
	TypeProfessionalLicense, TypeStudentID,
	TypeUtilityBill, TypeLeaseAgreement, TypeBankStatement, TypeInsuranceCard,
	TypeVoidedCheck, TypeDirectDeposit,
	TypeConsularID, TypeDigitalID,
	TypeIdentityDocument, TypeOtherIdentity,
}

var vocabularySet = func() map[Type]struct{} {
	set := make(map[Type]struct{}, len(Vocabulary))
	for _, t := range Vocabulary {
		set[t] = struct{}{}
	}
	return set
}()

// Valid reports whether label is a member of the closed vocabulary.
func Valid(label string) bool {
	_, ok := vocabularySet[Type(label)]
	return ok
}

// IsGeneric reports whether t is one of the catch-all buckets. Generic types
// never participate in subtype mismatches.
func (t Type) IsGeneric() bool {
	return t == TypeIdentityDocument || t == TypeOtherIdentity
}

// Classifier is the oracle fallback: constrained to return one label from the
// closed vocabulary given a compact text summary of the document.
type Classifier interface {
	ClassifyDocument(ctx context.Context, summary string) (string, error)
}

// Resolver maps free-text document labels and OCR content blobs onto the
// canonical vocabulary. The zero value (nil oracle) is usable; it simply skips
// the oracle tier.
type Resolver struct {
	oracle Classifier
}

// NewResolver builds a Resolver. oracle may be nil to run heuristics-only.
func NewResolver(oracle Classifier) *Resolver {
	return &Resolver{oracle: oracle}
}

// rule is one keyword heuristic. Rules are evaluated in declaration order,
// most specific pattern first ("passport card" must fire before "passport").
type rule struct {
	t     Type
	match func(s string) bool
}

func has(s string, words ...string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

func hasAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

var keywordRules = []rule{
	{TypeMobileDriversLicense, func(s string) bool {
		return hasAny(s, "mobile", "mdl") && (has(s, "license") || hasAny(s, "driver", "driving"))
	}},
	{TypeDrivingLicense, func(s string) bool {
		return hasAny(s, "driver", "driving") && has(s, "license")
	}},
	{TypeRealID, func(s string) bool {
		return has(s, "real") && hasAny(s, "id", "identification") && !strings.Contains(s, "driver")
	}},
	{TypeStateID, func(s string) bool {
		return has(s, "state") && hasAny(s, "id", "identification") && !strings.Contains(s, "driver")
	}},
	{TypePassportCard, func(s string) bool { return has(s, "passport", "card") }},
	{TypePassport, func(s string) bool { return has(s, "passport") }},
	{TypeBirthCertificate, func(s string) bool {
		return has(s, "birth", "certificate") || strings.Contains(s, "birth_cert")
	}},
	{TypeMarriageCertificate, func(s string) bool {
		return has(s, "marriage", "certificate") || strings.Contains(s, "marriage_cert")
	}},
	{TypeDivorceDecree, func(s string) bool {
		return has(s, "divorce") && hasAny(s, "decree", "certificate")
	}},
	{TypeSocialSecurityCard, func(s string) bool {
		return has(s, "social", "security") || hasAny(s, "ssn", "ss_card")
	}},
	{TypePermanentResidentCard, func(s string) bool {
		return has(s, "permanent", "resident") || hasAny(s, "green_card", "i-551")
	}},
	{TypeNaturalizationCert, func(s string) bool {
		return has(s, "naturalization", "certificate") || hasAny(s, "n-550", "n-570")
	}},
	{TypeCitizenshipCert, func(s string) bool {
		return has(s, "citizenship", "certificate") || hasAny(s, "n-560", "n-561")
	}},
	{TypeEmploymentAuthDoc, func(s string) bool {
		return has(s, "employment", "authorization") || hasAny(s, "ead", "i-766")
	}},
	{TypeFormI94, func(s string) bool {
		return strings.Contains(s, "i-94") || has(s, "arrival", "departure")
	}},
	{TypeUSVisa, func(s string) bool {
		return (has(s, "visa") && hasAny(s, "us", "american")) || hasAny(s, "h1b", "h-1b")
	}},
	{TypeReentryPermit, func(s string) bool {
		return has(s, "reentry", "permit") || strings.Contains(s, "i-327")
	}},
	{TypeMilitaryID, func(s string) bool {
		return (has(s, "military") && has(s, "id")) || hasAny(s, "cac", "common_access")
	}},
	{TypeVeteranID, func(s string) bool {
		return (has(s, "veteran") && has(s, "id")) || strings.Contains(s, "vic")
	}},
	{TypeTribalID, func(s string) bool {
		return (has(s, "tribal") && has(s, "id")) || strings.Contains(s, "tribal_card")
	}},
	{TypeGlobalEntryCard, func(s string) bool {
		return has(s, "global", "entry") || strings.Contains(s, "nexus")
	}},
	{TypeTSAPrecheckCard, func(s string) bool { return strings.Contains(s, "precheck") }},
	{TypeVoterRegistration, func(s string) bool {
		return has(s, "voter") && hasAny(s, "registration", "card")
	}},
	{TypeProfessionalLicense, func(s string) bool {
		return (has(s, "professional", "license")) ||
			(has(s, "license") && hasAny(s, "medical", "legal", "contractor", "nursing", "teaching"))
	}},
	{TypeStudentID, func(s string) bool {
		return (has(s, "student") && has(s, "id")) || strings.Contains(s, "student_card")
	}},
	{TypeUtilityBill, func(s string) bool {
		return has(s, "utility", "bill") || hasAny(s, "electric", "gas", "water", "internet", "cable")
	}},
	{TypeLeaseAgreement, func(s string) bool {
		return has(s, "lease", "agreement") || strings.Contains(s, "rental_agreement")
	}},
	{TypeBankStatement, func(s string) bool {
		return has(s, "bank", "statement") || strings.Contains(s, "account_statement")
	}},
	{TypeInsuranceCard, func(s string) bool {
		return has(s, "insurance", "card") || hasAny(s, "health_insurance", "auto_insurance")
	}},
	{TypeVoidedCheck, func(s string) bool {
		return has(s, "voided", "check") || strings.Contains(s, "void_check")
	}},
	{TypeDirectDeposit, func(s string) bool {
		return has(s, "direct", "deposit") || strings.Contains(s, "dd_form")
	}},
	{TypeConsularID, func(s string) bool {
		return (has(s, "consular") && has(s, "id")) || strings.Contains(s, "matricula")
	}},
	{TypeDigitalID, func(s string) bool {
		return (has(s, "digital") && has(s, "id")) || hasAny(s, "id.me", "login.gov")
	}},
}

// identityKeywords are the terms that justify downgrading to the generic
// identity bucket when nothing specific fires.
var identityKeywords = []string{"id", "identification", "license", "card", "certificate", "document"}

func matchKeywords(blob string) (Type, bool) {
	for _, r := range keywordRules {
		if r.match(blob) {
			return r.t, true
		}
	}
	return "", false
}

func genericFallback(blob string) Type {
	if hasAny(blob, identityKeywords...) {
		return TypeIdentityDocument
	}
	return TypeOtherIdentity
}

// ResolveName maps a human display name (from metadata or the system-of-record)
// to a canonical type using the keyword heuristics only. Display names are
// short and curated, so the oracle tier is not consulted.
func (r *Resolver) ResolveName(name string) Type {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return TypeOtherIdentity
	}
	if t, ok := matchKeywords(n); ok {
		return t
	}
	return genericFallback(n)
}

// ResolveContent maps an OCR-derived text blob to a canonical type. Resolution
// order is fixed: keyword heuristics, then the oracle constrained to the closed
// vocabulary, then the generic fallback. Each tier is a cheaper approximation
// of the next; an unavailable oracle degrades to the fallback rather than
// failing the caller.
func (r *Resolver) ResolveContent(ctx context.Context, blob string) Type {
	b := strings.ToLower(strings.TrimSpace(blob))
	if b == "" {
		return TypeOtherIdentity
	}
	if t, ok := matchKeywords(b); ok {
		return t
	}
	if r.oracle != nil {
		label, err := r.oracle.ClassifyDocument(ctx, b)
		if err == nil {
			label = strings.ToLower(strings.TrimSpace(label))
			if Valid(label) {
				return Type(label)
			}
			// Out-of-vocabulary oracle answer: keep only its identity-ness.
			if hasAny(label, "id", "license", "card", "certificate") {
				return TypeIdentityDocument
			}
			return TypeOtherIdentity
		}
	}
	return genericFallback(b)
}
