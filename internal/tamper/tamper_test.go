package tamper

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func hashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestCheckCleanFile(t *testing.T) {
	data := []byte("statement line one\nstatement line two\n")
	path := writeFile(t, "statement.txt", data)

	g := NewGate(BaselineSet{"statement.txt": {Hash: hashOf(data)}}, testLogger())
	res := g.Check(path, Meta{})

	assert.Equal(t, model.TamperOK, res.Status)
	assert.Empty(t, res.Reasons)
	assert.Equal(t, hashOf(data), res.Hash)
}

func TestCheckFirstScanRecordsMissingBaseline(t *testing.T) {
	path := writeFile(t, "new.txt", []byte("hello"))

	g := NewGate(nil, testLogger())
	res := g.Check(path, Meta{})

	assert.Equal(t, model.TamperOK, res.Status)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "no baseline")
}

func TestCheckPDFStructureAnomalies(t *testing.T) {
	pdf := []byte("%PDF-1.7\n1 0 obj\n<< /Annots [2 0 R] /JS (app.alert) >>\nendobj\n")
	path := writeFile(t, "license.pdf", pdf)

	g := NewGate(BaselineSet{"license.pdf": {Hash: hashOf(pdf)}}, testLogger())
	res := g.Check(path, Meta{})

	assert.Equal(t, model.TamperSuspicious, res.Status)
	joined := strings.Join(res.Reasons, "\n")
	assert.Contains(t, joined, "annotations")
	assert.Contains(t, joined, "JavaScript")
}

func TestCheckModifiedBeforeCreated(t *testing.T) {
	data := []byte("x")
	path := writeFile(t, "doc.txt", data)

	g := NewGate(BaselineSet{"doc.txt": {Hash: hashOf(data)}}, testLogger())
	now := time.Now()
	res := g.Check(path, Meta{Created: now, Modified: now.Add(-time.Hour)})

	assert.Equal(t, model.TamperSuspicious, res.Status)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "earlier than creation")
}

func TestCheckBaselineMismatchIsTampered(t *testing.T) {
	baselineText := "name: John Smith\ndob: 01/02/1990"
	current := []byte("name: John Smyth\ndob: 01/02/1990")
	path := writeFile(t, "id.txt", current)

	g := NewGate(BaselineSet{"id.txt": {Hash: "different", Text: baselineText}}, testLogger())
	res := g.Check(path, Meta{})

	assert.Equal(t, model.TamperTampered, res.Status)
	assert.True(t, res.ForcesReview())
	joined := strings.Join(res.Reasons, "\n")
	assert.Contains(t, joined, "differs from baseline")
	assert.Contains(t, joined, "-name: John Smith")
	assert.Contains(t, joined, "+name: John Smyth")
}

func TestCheckEscalationNeverDowngrades(t *testing.T) {
	pdf := []byte("%PDF-1.7\n<< /Annots [] >>\n")
	path := writeFile(t, "doc.pdf", pdf)

	// Baseline mismatch must win over the earlier SUSPICIOUS signal.
	g := NewGate(BaselineSet{"doc.pdf": {Hash: "stale"}}, testLogger())
	res := g.Check(path, Meta{})

	assert.Equal(t, model.TamperTampered, res.Status)
}

func TestCheckUnreadableFileIsError(t *testing.T) {
	g := NewGate(nil, testLogger())
	res := g.Check(filepath.Join(t.TempDir(), "gone.pdf"), Meta{})

	assert.Equal(t, model.TamperError, res.Status)
	assert.True(t, res.ForcesReview())
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "error analyzing file")
}

func TestSuspiciousDoesNotForceReview(t *testing.T) {
	assert.False(t, model.TamperResult{Status: model.TamperSuspicious}.ForcesReview())
	assert.False(t, model.TamperResult{Status: model.TamperOK}.ForcesReview())
}

func TestLoadBaselines(t *testing.T) {
	t.Run("missing file is empty set", func(t *testing.T) {
		set, err := LoadBaselines(filepath.Join(t.TempDir(), "none.json"))
		require.NoError(t, err)
		assert.Empty(t, set)
	})

	t.Run("round trip", func(t *testing.T) {
		path := writeFile(t, "baseline.json", []byte(`{"a.pdf":{"hash":"h1"}}`))
		set, err := LoadBaselines(path)
		require.NoError(t, err)
		assert.Equal(t, "h1", set["a.pdf"].Hash)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, "bad.json", []byte("{"))
		_, err := LoadBaselines(path)
		assert.Error(t, err)
	})
}

func TestUnifiedDiff(t *testing.T) {
	assert.Empty(t, unifiedDiff("same\ntext", "same\ntext", 3))

	d := unifiedDiff("a\nb\nc", "a\nx\nc", 1)
	assert.Contains(t, d, "--- baseline")
	assert.Contains(t, d, "-b")
	assert.Contains(t, d, "+x")
	assert.Contains(t, d, " a")
}
