package doctype

// Group is a named set of canonical types allowed to be confused for one
// another without raising a mismatch. Membership decides compatibility;
// ordering of the table is cosmetic.
type Group struct {
	Name    string
	Members []Type
}

// CompatibleGroups is the mismatch-policy exception table. Keep it as data:
// call sites consult Compatible/Mismatch rather than inlining membership.
var CompatibleGroups = []Group{
	{"drivers-licenses", []Type{TypeDrivingLicense, TypeMobileDriversLicense}},
	{"card-format-ids", []Type{TypeStateID, TypeRealID, TypePassportCard}},
	{"passports", []Type{TypePassport, TypePassportCard}},
	{"citizenship-certificates", []Type{TypeNaturalizationCert, TypeCitizenshipCert}},
	{"military-ids", []Type{TypeMilitaryID, TypeVeteranID}},
	{"proof-of-residence", []Type{TypeUtilityBill, TypeLeaseAgreement, TypeBankStatement}},
	{"immigration-cards", []Type{TypeEmploymentAuthDoc, TypePermanentResidentCard}},
	{"international-ids", []Type{TypeConsularID, TypeIdentityDocument}},
}

var groupIndex = func() map[Type][]int {
	idx := make(map[Type][]int)
	for i, g := range CompatibleGroups {
		for _, t := range g.Members {
			idx[t] = append(idx[t], i)
		}
	}
	return idx
}()

// Compatible reports whether a and b may differ without being flagged: equal
// types, membership in a common group, or either side being generic.
func Compatible(a, b Type) bool {
	if a == b {
		return true
	}
	if a.IsGeneric() || b.IsGeneric() {
		return true
	}
	for _, ga := range groupIndex[a] {
		for _, gb := range groupIndex[b] {
			if ga == gb {
				return true
			}
		}
	}
	return false
}

// Mismatch reports whether a declared type and a detected type conflict.
// Two types mismatch only when both are specific and share no compatible
// group; the relation is symmetric.
func Mismatch(declared, detected Type) bool {
	return !Compatible(declared, detected)
}
