package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/doctype"
)

func TestIsEmpty(t *testing.T) {
	empty := []any{
		nil,
		"",
		"   ",
		"n/a",
		"N/A",
		"na",
		"NONE",
		"null",
		" Null ",
		[]string{},
		map[string]any{},
		[]any{},
	}
	for _, v := range empty {
		assert.True(t, IsEmpty(v), "expected empty: %#v", v)
	}

	nonEmpty := []any{
		"0",
		"false",
		"n / a",
		"nan",
		"x",
		" joe ",
		[]string{""},
		map[string]any{"k": ""},
		0,
		false,
	}
	for _, v := range nonEmpty {
		assert.False(t, IsEmpty(v), "expected non-empty: %#v", v)
	}
}

func TestNormalizeCaseInsensitiveKeys(t *testing.T) {
	raw := map[string]any{
		"FIRSTNAME":  "John",
		"lastname":   "Smith",
		"middlename": "n/a",
	}
	got := Normalize(raw, []string{"firstName", "middleName", "lastName"})

	assert.Equal(t, map[string]string{
		"firstName": "John",
		"lastName":  "Smith",
	}, got)
}

func TestNormalizeDropsUnknownKeys(t *testing.T) {
	raw := map[string]any{
		"firstName":   "John",
		"ocrNoise":    "garbage",
		"confidence":  0.93,
		"vendorNotes": []string{"x"},
	}
	got := Normalize(raw, []string{"firstName", "lastName"})

	assert.Equal(t, map[string]string{"firstName": "John"}, got)
}

func TestNormalizeAliasPriority(t *testing.T) {
	expected := []string{"firstName", "dob", "dateOfBirth", "issueDate", "dateIssued"}

	t.Run("first member wins when both set", func(t *testing.T) {
		got := Normalize(map[string]any{
			"dob":         "01/02/1990",
			"dateOfBirth": "1990-01-02",
		}, expected)
		assert.Equal(t, "01/02/1990", got["dob"])
		_, ok := got["dateOfBirth"]
		assert.False(t, ok)
	})

	t.Run("later member survives when first empty", func(t *testing.T) {
		got := Normalize(map[string]any{
			"dob":        "none",
			"dateIssued": "2020-05-05",
		}, expected)
		_, ok := got["dob"]
		assert.False(t, ok)
		assert.Equal(t, "2020-05-05", got["dateIssued"])
		_, ok = got["issueDate"]
		assert.False(t, ok)
	})
}

func TestNormalizeStringifiesComposites(t *testing.T) {
	got := Normalize(map[string]any{
		"restrictions": []any{"B", "C"},
	}, []string{"restrictions"})

	require.Contains(t, got, "restrictions")
	assert.JSONEq(t, `["B","C"]`, got["restrictions"])
}

func TestNormalizePrunesAllEmpties(t *testing.T) {
	got := Normalize(map[string]any{
		"firstName": "  ",
		"lastName":  nil,
		"suffix":    []string{},
	}, []string{"firstName", "lastName", "suffix", "dob"})

	assert.Empty(t, got)
}

func TestExpectedKnownAndFallback(t *testing.T) {
	dl := Expected(doctype.TypeDrivingLicense)
	assert.Contains(t, dl, "licenseNumber")
	assert.Contains(t, dl, "dob")

	fb := Expected(doctype.Type("no_such_type"))
	assert.Equal(t, Expected(doctype.TypeOtherIdentity), fb)

	// Returned slices are copies; mutating one must not poison the table.
	fb[0] = "mutated"
	assert.NotEqual(t, "mutated", Expected(doctype.TypeOtherIdentity)[0])
}
