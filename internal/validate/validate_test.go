package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/doctype"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func dateStr(t time.Time) string { return t.Format("01/02/2006") }

func validLicense() map[string]string {
	return map[string]string{
		"firstName":      "John",
		"lastName":       "Smith",
		"dob":            "01/02/1990",
		"licenseNumber":  "D1234567",
		"issuingState":   "CA",
		"issueDate":      "01/02/2022",
		"expirationDate": dateStr(testNow.AddDate(0, 0, 400)),
		"zip":            "94105",
	}
}

func TestParseDate(t *testing.T) {
	cases := []string{
		"01/02/1990",
		"1990-01-02",
		"01-02-1990",
		"Jan 2, 1990",
		"January 2, 1990",
		"2 Jan 1990",
		"1990.01.02",
	}
	want := time.Date(1990, time.January, 2, 0, 0, 0, 0, time.UTC)
	for _, c := range cases {
		got, ok := ParseDate(c)
		require.True(t, ok, c)
		assert.True(t, got.Equal(want), "%s parsed to %v", c, got)
	}

	_, ok := ParseDate("not a date")
	assert.False(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
}

func TestDrivingLicensePasses(t *testing.T) {
	v := NewValidatorAt(testNow)
	r := v.Validate(doctype.TypeDrivingLicense, validLicense())

	assert.True(t, r.Passed(), "findings: %v", r.Messages())
}

func TestDrivingLicenseExpiredYesterday(t *testing.T) {
	v := NewValidatorAt(testNow)
	f := validLicense()
	f["expirationDate"] = dateStr(testNow.AddDate(0, 0, -1))

	r := v.Validate(doctype.TypeDrivingLicense, f)
	require.False(t, r.Passed())
	assert.Contains(t, strings.Join(r.Errors, "\n"), "expired")
}

func TestDrivingLicenseExpiringWithinWindow(t *testing.T) {
	v := NewValidatorAt(testNow)
	f := validLicense()
	f["expirationDate"] = dateStr(testNow.AddDate(0, 0, 10))

	r := v.Validate(doctype.TypeDrivingLicense, f)
	require.False(t, r.Passed())
	assert.Empty(t, r.Errors)
	assert.Contains(t, strings.Join(r.Warnings, "\n"), "expiring soon")
}

func TestDrivingLicenseOutsideWindowIsClean(t *testing.T) {
	v := NewValidatorAt(testNow)
	f := validLicense()
	f["expirationDate"] = dateStr(testNow.AddDate(0, 0, 45))

	r := v.Validate(doctype.TypeDrivingLicense, f)
	assert.True(t, r.Passed(), "findings: %v", r.Messages())
}

func TestDrivingLicenseRequiredFields(t *testing.T) {
	v := NewValidatorAt(testNow)
	f := validLicense()
	delete(f, "licenseNumber")
	delete(f, "dob")

	r := v.Validate(doctype.TypeDrivingLicense, f)
	joined := strings.Join(r.Errors, "\n")
	assert.Contains(t, joined, "required field missing: licenseNumber")
	assert.Contains(t, joined, "required field missing: dob")
}

func TestDrivingLicenseUnderage(t *testing.T) {
	v := NewValidatorAt(testNow)
	f := validLicense()
	f["dob"] = dateStr(testNow.AddDate(-15, 0, 0))

	r := v.Validate(doctype.TypeDrivingLicense, f)
	assert.Contains(t, strings.Join(r.Errors, "\n"), "below minimum required age (16)")
}

func TestDrivingLicenseIssueAfterExpiry(t *testing.T) {
	v := NewValidatorAt(testNow)
	f := validLicense()
	f["issueDate"] = "01/02/2031"
	f["expirationDate"] = "01/02/2030"

	r := v.Validate(doctype.TypeDrivingLicense, f)
	assert.Contains(t, strings.Join(r.Errors, "\n"), "must be before expiration")
}

func TestDrivingLicenseBadStateAndZIPAreWarnings(t *testing.T) {
	v := NewValidatorAt(testNow)
	f := validLicense()
	f["issuingState"] = "XX"
	f["zip"] = "1234"

	r := v.Validate(doctype.TypeDrivingLicense, f)
	assert.Empty(t, r.Errors)
	joined := strings.Join(r.Warnings, "\n")
	assert.Contains(t, joined, "invalid state code")
	assert.Contains(t, joined, "invalid ZIP code")
}

func TestPassportSixMonthWindow(t *testing.T) {
	v := NewValidatorAt(testNow)
	f := map[string]string{
		"passportNumber": "X12345678",
		"firstName":      "John",
		"lastName":       "Smith",
		"dateOfBirth":    "01/02/1990",
		"issuingCountry": "USA",
		"expirationDate": dateStr(testNow.AddDate(0, 0, 150)),
	}

	r := v.Validate(doctype.TypePassport, f)
	assert.Empty(t, r.Errors)
	assert.Contains(t, strings.Join(r.Warnings, "\n"), "expiring soon")
}

func TestPassportNumberLength(t *testing.T) {
	v := NewValidatorAt(testNow)
	f := map[string]string{
		"passportNumber": "X12",
		"firstName":      "John",
		"lastName":       "Smith",
		"dateOfBirth":    "01/02/1990",
		"issuingCountry": "USA",
		"expirationDate": dateStr(testNow.AddDate(2, 0, 0)),
	}

	r := v.Validate(doctype.TypePassportCard, f)
	assert.Contains(t, strings.Join(r.Warnings, "\n"), "length seems unusual")
}

func TestCheckSSN(t *testing.T) {
	valid := []string{"123-45-6789", "123456789", "123 45 6789"}
	for _, s := range valid {
		ok, msg := checkSSN(s)
		assert.True(t, ok, "%s: %s", s, msg)
	}

	invalid := map[string]string{
		"":            "missing",
		"12-34-5678":  "format",
		"abcdefghi":   "format",
		"000-12-3456": "area number cannot be 000",
		"666-12-3456": "area number cannot be 666",
		"912-34-5678": "cannot start with 9",
		"123-00-4567": "group number cannot be 00",
		"123-45-0000": "serial number cannot be 0000",
	}
	for s, want := range invalid {
		ok, msg := checkSSN(s)
		require.False(t, ok, s)
		assert.Contains(t, msg, want)
	}
}

func TestSocialSecurityCard(t *testing.T) {
	v := NewValidatorAt(testNow)

	r := v.Validate(doctype.TypeSocialSecurityCard, map[string]string{
		"firstName": "John", "lastName": "Smith", "socialSecurityNumber": "123-45-6789",
	})
	assert.True(t, r.Passed())

	r = v.Validate(doctype.TypeSocialSecurityCard, map[string]string{
		"firstName": "John", "lastName": "Smith", "number": "123456789",
	})
	assert.True(t, r.Passed(), "fallback number field: %v", r.Messages())

	r = v.Validate(doctype.TypeSocialSecurityCard, map[string]string{
		"firstName": "John", "lastName": "Smith",
	})
	assert.Contains(t, strings.Join(r.Errors, "\n"), "social security number is missing")
}

func TestBirthCertificateFutureDOB(t *testing.T) {
	v := NewValidatorAt(testNow)
	r := v.Validate(doctype.TypeBirthCertificate, map[string]string{
		"firstName":    "Baby",
		"lastName":     "Smith",
		"dateOfBirth":  dateStr(testNow.AddDate(1, 0, 0)),
		"stateOfBirth": "CA",
	})
	assert.Contains(t, strings.Join(r.Errors, "\n"), "cannot be in the future")
}

func TestExpiryWindowsPerType(t *testing.T) {
	v := NewValidatorAt(testNow)
	in := func(days int) string { return dateStr(testNow.AddDate(0, 0, days)) }

	tests := []struct {
		name    string
		typ     doctype.Type
		fields  map[string]string
		warning bool
	}{
		{"green card 150d warns", doctype.TypePermanentResidentCard, map[string]string{
			"firstName": "A", "lastName": "B", "dateOfBirth": "01/02/1990",
			"alienNumber": "A123", "cardNumber": "C456", "expirationDate": in(150),
		}, true},
		{"green card 200d clean", doctype.TypePermanentResidentCard, map[string]string{
			"firstName": "A", "lastName": "B", "dateOfBirth": "01/02/1990",
			"alienNumber": "A123", "cardNumber": "C456", "expirationDate": in(200),
		}, false},
		{"ead 80d warns", doctype.TypeEmploymentAuthDoc, map[string]string{
			"firstName": "A", "lastName": "B", "dateOfBirth": "01/02/1990",
			"cardNumber": "C456", "expirationDate": in(80),
		}, true},
		{"military 50d warns", doctype.TypeMilitaryID, map[string]string{
			"firstName": "A", "lastName": "B", "dateOfBirth": "01/02/1990",
			"branch": "Army", "expirationDate": in(50),
		}, true},
		{"military 70d clean", doctype.TypeVeteranID, map[string]string{
			"firstName": "A", "lastName": "B", "dateOfBirth": "01/02/1990",
			"branch": "Navy", "expirationDate": in(70),
		}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := v.Validate(tc.typ, tc.fields)
			if tc.warning {
				assert.NotEmpty(t, r.Warnings)
			} else {
				assert.True(t, r.Passed(), "findings: %v", r.Messages())
			}
		})
	}
}

func TestGenericIdentityWarnsOnly(t *testing.T) {
	v := NewValidatorAt(testNow)

	r := v.Validate(doctype.TypeUtilityBill, map[string]string{})
	assert.Empty(t, r.Errors)
	assert.NotEmpty(t, r.Warnings)

	r = v.Validate(doctype.TypeIdentityDocument, map[string]string{
		"firstName":      "John",
		"expirationDate": dateStr(testNow.AddDate(0, 0, -30)),
	})
	assert.Empty(t, r.Errors)
	assert.Contains(t, strings.Join(r.Warnings, "\n"), "appears to be expired")
}
