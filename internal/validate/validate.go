// Package validate checks cleaned document fields against per-type rules:
// required fields, expiry windows, cross-field date logic, and format
// constraints. A finding never rejects a document outright; it flags the
// document for human verification.
package validate

import (
	"fmt"
	"time"

	"docverify/internal/doctype"
)

// Result collects validation findings. Errors and warnings both fail the
// check; info lines are advisory only.
type Result struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Info     []string `json:"info,omitempty"`
}

// Passed reports whether the document cleared validation. Warnings count as
// failures because they require a human to look.
func (r Result) Passed() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// Messages flattens every finding, errors first.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors)+len(r.Warnings)+len(r.Info))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	out = append(out, r.Info...)
	return out
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validator routes a document to its type-specific rule set. The clock is
// injectable so expiry windows are testable.
type Validator struct {
	now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorAt fixes the validator's clock, for tests.
func NewValidatorAt(now time.Time) *Validator {
	return &Validator{now: func() time.Time { return now }}
}

// Validate applies the rule set for t to the cleaned field map. Types without
// a dedicated rule set get the generic identity checks.
func (v *Validator) Validate(t doctype.Type, fields map[string]string) Result {
	switch t {
	case doctype.TypeDrivingLicense, doctype.TypeMobileDriversLicense:
		return v.drivingLicense(fields)
	case doctype.TypeStateID, doctype.TypeRealID:
		return v.stateID(fields)
	case doctype.TypePassport, doctype.TypePassportCard:
		return v.passport(fields)
	case doctype.TypeSocialSecurityCard:
		return v.socialSecurityCard(fields)
	case doctype.TypeBirthCertificate:
		return v.birthCertificate(fields)
	case doctype.TypePermanentResidentCard:
		return v.permanentResidentCard(fields)
	case doctype.TypeEmploymentAuthDoc:
		return v.employmentAuthorization(fields)
	case doctype.TypeMilitaryID, doctype.TypeVeteranID:
		return v.militaryID(fields)
	default:
		return v.genericIdentity(fields)
	}
}

func (v *Validator) requireFields(r *Result, fields map[string]string, names ...string) {
	for _, n := range names {
		if fields[n] == "" {
			r.errorf("required field missing: %s", n)
		}
	}
}

// checkExpiry adds an error for an expired document and a warning when the
// expiry falls inside the lookahead window.
func (v *Validator) checkExpiry(r *Result, expiration, label string, lookaheadDays int) {
	if expiration == "" {
		return
	}
	now := v.now()
	if isExpired(expiration, now) {
		r.errorf("%s is expired (expiration date: %s)", label, expiration)
		return
	}
	if expiringSoon(expiration, now, lookaheadDays) {
		r.warnf("%s is expiring soon (expiration date: %s)", label, expiration)
	}
}

func (v *Validator) checkDateLogic(r *Result, issue, expiration string) {
	if issue == "" || expiration == "" {
		return
	}
	if !dateLogicOK(issue, expiration) {
		r.errorf("issue date (%s) must be before expiration date (%s)", issue, expiration)
	}
}

func (v *Validator) drivingLicense(fields map[string]string) Result {
	var r Result
	v.requireFields(&r, fields, "firstName", "lastName", "dob", "licenseNumber", "expirationDate", "issuingState")

	v.checkExpiry(&r, fields["expirationDate"], "driver's license", 30)
	v.checkDateLogic(&r, fields["issueDate"], fields["expirationDate"])

	if dob := fields["dob"]; dob != "" {
		if ok, msg := checkAge(dob, v.now(), 16, 120); !ok {
			r.errorf("%s", msg)
		}
	}
	state := fields["issuingState"]
	if state == "" {
		state = fields["state"]
	}
	if ok, msg := checkState(state); !ok {
		r.warnf("%s", msg)
	}
	if ok, msg := checkZIP(fields["zip"]); !ok {
		r.warnf("%s", msg)
	}
	return r
}

func (v *Validator) stateID(fields map[string]string) Result {
	var r Result
	v.requireFields(&r, fields, "firstName", "lastName", "dob", "idNumber", "expirationDate", "issuingState")

	v.checkExpiry(&r, fields["expirationDate"], "state ID", 30)
	v.checkDateLogic(&r, fields["issueDate"], fields["expirationDate"])

	if dob := fields["dob"]; dob != "" {
		if ok, msg := checkAge(dob, v.now(), 0, 120); !ok {
			r.errorf("%s", msg)
		}
	}
	state := fields["issuingState"]
	if state == "" {
		state = fields["state"]
	}
	if ok, msg := checkState(state); !ok {
		r.warnf("%s", msg)
	}
	return r
}

func (v *Validator) passport(fields map[string]string) Result {
	var r Result
	v.requireFields(&r, fields, "passportNumber", "firstName", "lastName", "dateOfBirth", "expirationDate", "issuingCountry")

	// Many countries require six months of remaining validity.
	v.checkExpiry(&r, fields["expirationDate"], "passport", 180)
	v.checkDateLogic(&r, fields["issueDate"], fields["expirationDate"])

	if dob := fields["dateOfBirth"]; dob != "" {
		if ok, msg := checkAge(dob, v.now(), 0, 120); !ok {
			r.errorf("%s", msg)
		}
	}
	if num := fields["passportNumber"]; num != "" {
		if len(num) < 6 || len(num) > 12 {
			r.warnf("passport number length seems unusual: %s", num)
		}
	}
	return r
}

func (v *Validator) socialSecurityCard(fields map[string]string) Result {
	var r Result
	v.requireFields(&r, fields, "firstName", "lastName")

	ssn := fields["socialSecurityNumber"]
	if ssn == "" {
		ssn = fields["number"]
	}
	if ssn == "" {
		r.errorf("social security number is missing")
		return r
	}
	if ok, msg := checkSSN(ssn); !ok {
		r.errorf("%s", msg)
	}
	return r
}

func (v *Validator) birthCertificate(fields map[string]string) Result {
	var r Result
	v.requireFields(&r, fields, "firstName", "lastName", "dateOfBirth", "stateOfBirth")

	if dob := fields["dateOfBirth"]; dob != "" {
		if t, ok := ParseDate(dob); ok {
			if t.After(v.now()) {
				r.errorf("date of birth cannot be in the future: %s", dob)
			}
			if ok, msg := checkAge(dob, v.now(), 0, 120); !ok {
				r.errorf("%s", msg)
			}
		}
	}
	if ok, msg := checkState(fields["stateOfBirth"]); !ok {
		r.warnf("%s", msg)
	}
	return r
}

func (v *Validator) permanentResidentCard(fields map[string]string) Result {
	var r Result
	v.requireFields(&r, fields, "firstName", "lastName", "dateOfBirth", "alienNumber", "cardNumber", "expirationDate")

	v.checkExpiry(&r, fields["expirationDate"], "green card", 180)
	if dob := fields["dateOfBirth"]; dob != "" {
		if ok, msg := checkAge(dob, v.now(), 0, 120); !ok {
			r.errorf("%s", msg)
		}
	}
	return r
}

func (v *Validator) employmentAuthorization(fields map[string]string) Result {
	var r Result
	v.requireFields(&r, fields, "firstName", "lastName", "dateOfBirth", "cardNumber", "expirationDate")

	v.checkExpiry(&r, fields["expirationDate"], "employment authorization document", 90)
	if dob := fields["dateOfBirth"]; dob != "" {
		if ok, msg := checkAge(dob, v.now(), 0, 120); !ok {
			r.errorf("%s", msg)
		}
	}
	return r
}

func (v *Validator) militaryID(fields map[string]string) Result {
	var r Result
	v.requireFields(&r, fields, "firstName", "lastName", "dateOfBirth", "branch", "expirationDate")

	v.checkExpiry(&r, fields["expirationDate"], "military ID", 60)
	if dob := fields["dateOfBirth"]; dob != "" {
		if ok, msg := checkAge(dob, v.now(), 17, 120); !ok {
			r.errorf("%s", msg)
		}
	}
	return r
}

// genericIdentity covers types without dedicated rules. Everything here is a
// warning: an unfamiliar document should be looked at, not rejected.
func (v *Validator) genericIdentity(fields map[string]string) Result {
	var r Result
	if fields["firstName"] == "" && fields["lastName"] == "" {
		r.warnf("name information is missing or incomplete")
	}
	if exp := fields["expirationDate"]; exp != "" && isExpired(exp, v.now()) {
		r.warnf("document appears to be expired (expiration date: %s)", exp)
	}
	dob := fields["dob"]
	if dob == "" {
		dob = fields["dateOfBirth"]
	}
	if dob != "" {
		if ok, msg := checkAge(dob, v.now(), 0, 120); !ok {
			r.warnf("%s", msg)
		}
	}
	return r
}
