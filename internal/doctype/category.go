package doctype

import "strings"

// Category is the coarse routing bucket a document falls into. The pipeline's
// first classification check compares the requester's expected category with
// the one derived from content.
type Category string

const (
	CategoryIdentity      Category = "identity"
	CategoryBankStatement Category = "bank_statement"
	CategoryProperty      Category = "property"
	CategoryEntity        Category = "entity"
	CategoryLoan          Category = "loan"
	CategoryUnknown       Category = "unknown"
)

// ParseCategory normalizes a free-text category label, defaulting to unknown.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryIdentity:
		return CategoryIdentity
	case CategoryBankStatement:
		return CategoryBankStatement
	case CategoryProperty:
		return CategoryProperty
	case CategoryEntity:
		return CategoryEntity
	case CategoryLoan:
		return CategoryLoan
	default:
		return CategoryUnknown
	}
}

// CategoryOf buckets a canonical type into its coarse category. Financial
// statements route to their own bucket; every other vocabulary member is an
// identity-adjacent proof document.
func CategoryOf(t Type) Category {
	switch t {
	case TypeBankStatement:
		return CategoryBankStatement
	case "":
		return CategoryUnknown
	default:
		return CategoryIdentity
	}
}
