// Package fields canonicalizes raw extracted key/value maps: case-insensitive
// schema matching, alias collapsing, empty-value pruning. Everything here is a
// pure function; unknown keys are silently dropped because oracle output is
// inherently noisy.
package fields

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// placeholders are the string values treated as empty, compared case-insensitively
// after trimming. Every downstream stage relies on this exact set.
var placeholders = map[string]struct{}{
	"":     {},
	"n/a":  {},
	"na":   {},
	"none": {},
	"null": {},
}

// IsEmpty reports whether v carries no usable content: nil, a placeholder
// string, or a collection with zero elements.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch x := v.(type) {
	case string:
		_, ok := placeholders[strings.ToLower(strings.TrimSpace(x))]
		return ok
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	}
	return false
}

// aliasGroups lists keys that name the same concept. Order within a group is
// priority: the first non-empty member survives, the rest are dropped.
var aliasGroups = [][]string{
	{"dob", "dateOfBirth"},
	{"issueDate", "dateIssued"},
}

// AliasGroups exposes the configured alias priority lists.
func AliasGroups() [][]string {
	out := make([][]string, len(aliasGroups))
	for i, g := range aliasGroups {
		out[i] = append([]string(nil), g...)
	}
	return out
}

// stringify renders a raw value for the cleaned map. Scalars print plainly;
// composite values are JSON-encoded so nothing is lost.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

// Normalize produces the cleaned field map for one document: exactly the
// expected keys are considered (matched case-insensitively, returned in
// canonical casing), alias groups are collapsed to their highest-priority
// non-empty member, and every empty value is pruned from the output.
func Normalize(raw map[string]any, expected []string) map[string]string {
	lower := make(map[string]any, len(raw))
	for k, v := range raw {
		lower[strings.ToLower(k)] = v
	}

	// Complete the schema first: every expected field, empty when absent.
	complete := make(map[string]any, len(expected))
	for _, f := range expected {
		if v, ok := lower[strings.ToLower(f)]; ok {
			complete[f] = v
		} else {
			complete[f] = ""
		}
	}

	// Collapse alias groups: first non-empty member wins, others are removed
	// even when they also carry values.
	for _, group := range aliasGroups {
		keep := ""
		for _, k := range group {
			if v, ok := complete[k]; ok && !IsEmpty(v) {
				keep = k
				break
			}
		}
		for _, k := range group {
			if k != keep {
				delete(complete, k)
			}
		}
	}

	// Prune empties last so the output never represents absence.
	out := make(map[string]string, len(complete))
	for k, v := range complete {
		if IsEmpty(v) {
			continue
		}
		out[k] = stringify(v)
	}
	return out
}
