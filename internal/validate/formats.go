package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ssnSeparators = regexp.MustCompile(`[-\s]`)
	nineDigits    = regexp.MustCompile(`^\d{9}$`)
	zipPattern    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// checkSSN validates Social Security Number format and range.
// Accepts XXX-XX-XXXX or nine bare digits; rejects the reserved ranges.
func checkSSN(ssn string) (bool, string) {
	if ssn == "" {
		return false, "SSN is missing"
	}
	clean := ssnSeparators.ReplaceAllString(ssn, "")
	if !nineDigits.MatchString(clean) {
		return false, fmt.Sprintf("invalid SSN format: %s, expected XXX-XX-XXXX or 9 digits", ssn)
	}
	area, group, serial := clean[:3], clean[3:5], clean[5:]
	switch {
	case area == "000":
		return false, "invalid SSN: area number cannot be 000"
	case area == "666":
		return false, "invalid SSN: area number cannot be 666"
	case area[0] == '9':
		return false, "invalid SSN: area number cannot start with 9"
	case group == "00":
		return false, "invalid SSN: group number cannot be 00"
	case serial == "0000":
		return false, "invalid SSN: serial number cannot be 0000"
	}
	return true, ""
}

// checkZIP validates a US ZIP code. Empty is fine, the field is optional.
func checkZIP(zip string) (bool, string) {
	zip = strings.TrimSpace(zip)
	if zip == "" || zipPattern.MatchString(zip) {
		return true, ""
	}
	return false, fmt.Sprintf("invalid ZIP code format: %s, expected XXXXX or XXXXX-XXXX", zip)
}

// usStates includes DC and the inhabited territories.
var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true,
	"DC": true, "PR": true, "VI": true, "GU": true, "AS": true, "MP": true,
}

// checkState validates a two-letter US state or territory code. Empty passes.
func checkState(state string) (bool, string) {
	if state == "" {
		return true, ""
	}
	if usStates[strings.ToUpper(strings.TrimSpace(state))] {
		return true, ""
	}
	return false, fmt.Sprintf("invalid state code: %s, expected 2-letter US state abbreviation", state)
}

// checkAge bounds the age implied by dob. Unparseable dates pass.
func checkAge(dob string, now time.Time, minAge, maxAge int) (bool, string) {
	t, ok := ParseDate(dob)
	if !ok {
		return true, ""
	}
	age := ageYears(t, now)
	if age < minAge {
		return false, fmt.Sprintf("age (%d) is below minimum required age (%d)", age, minAge)
	}
	if age > maxAge {
		return false, fmt.Sprintf("age (%d) seems unrealistic (maximum %d)", age, maxAge)
	}
	return true, ""
}
