// Package tamper classifies a local document copy as OK, SUSPICIOUS, TAMPERED,
// or ERROR from structural and hash signals. The gate is advisory for most
// statuses; the pipeline decides what blocks processing.
package tamper

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docverify/internal/model"
)

// Baseline holds known-good fingerprints keyed by file name. Text is optional
// and only used to produce a diff when a hash mismatch is found.
type Baseline struct {
	Hash string `json:"hash"`
	Text string `json:"text,omitempty"`
}

// BaselineSet maps file names to their recorded baselines.
type BaselineSet map[string]Baseline

// LoadBaselines reads a baseline JSON file. A missing file is not an error;
// it just means every document is being scanned for the first time.
func LoadBaselines(path string) (BaselineSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BaselineSet{}, nil
		}
		return nil, fmt.Errorf("read baselines: %w", err)
	}
	var set BaselineSet
	if err := json.Unmarshal(b, &set); err != nil {
		return nil, fmt.Errorf("parse baselines: %w", err)
	}
	return set, nil
}

// Meta carries the timestamps the gate compares. Created comes from upload
// metadata, Modified from the file itself.
type Meta struct {
	Created  time.Time
	Modified time.Time
}

// Result is the gate verdict for one file plus the content hash that fed the
// baseline comparison.
type Result struct {
	model.TamperResult
	Hash string
}

var severity = map[model.TamperStatus]int{
	model.TamperOK:         0,
	model.TamperSuspicious: 1,
	model.TamperTampered:   2,
	model.TamperError:      3,
}

// escalate never downgrades within one run.
func escalate(cur, next model.TamperStatus) model.TamperStatus {
	if severity[next] > severity[cur] {
		return next
	}
	return cur
}

// Gate evaluates tamper signals against an optional baseline set.
type Gate struct {
	baselines BaselineSet
	log       *slog.Logger
}

func NewGate(baselines BaselineSet, log *slog.Logger) *Gate {
	if baselines == nil {
		baselines = BaselineSet{}
	}
	return &Gate{baselines: baselines, log: log.With("component", "tamper")}
}

// pdf structure markers that have no business in an ID or a statement.
var pdfMarkers = []struct {
	token  string
	reason string
}{
	{"/Annots", "document has annotations (possible edit marks)"},
	{"/JavaScript", "embedded JavaScript detected (potential malicious edit)"},
	{"/JS", "embedded JavaScript detected (potential malicious edit)"},
	{"/URI", "document contains hyperlinks (unusual for IDs or statements)"},
}

var textExts = map[string]bool{".txt": true, ".csv": true, ".json": true}

// Check analyzes the file at path. Signals are independent: any one trigger
// escalates the status, and an internal failure yields ERROR.
func (g *Gate) Check(path string, meta Meta) Result {
	res := Result{}
	res.Status = model.TamperOK

	data, err := os.ReadFile(path)
	if err != nil {
		res.Status = model.TamperError
		res.Reasons = append(res.Reasons, fmt.Sprintf("error analyzing file: %v", err))
		return res
	}

	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))

	var text string
	switch {
	case ext == ".pdf" || bytes.HasPrefix(data, []byte("%PDF")):
		seen := map[string]bool{}
		for _, m := range pdfMarkers {
			if bytes.Contains(data, []byte(m.token)) && !seen[m.reason] {
				seen[m.reason] = true
				res.Status = escalate(res.Status, model.TamperSuspicious)
				res.Reasons = append(res.Reasons, m.reason)
			}
		}
	case textExts[ext]:
		text = string(data)
	}

	sum := sha256.Sum256(data)
	res.Hash = hex.EncodeToString(sum[:])

	if !meta.Created.IsZero() && !meta.Modified.IsZero() && meta.Modified.Before(meta.Created) {
		res.Status = escalate(res.Status, model.TamperSuspicious)
		res.Reasons = append(res.Reasons,
			"file modified timestamp is earlier than creation time, possible manual date manipulation")
	}

	base, ok := g.baselines[name]
	switch {
	case ok && base.Hash != res.Hash:
		res.Status = escalate(res.Status, model.TamperTampered)
		res.Reasons = append(res.Reasons, "file hash differs from baseline, content modified")
		if text != "" && base.Text != "" {
			if d := unifiedDiff(base.Text, text, 3); d != "" {
				res.Reasons = append(res.Reasons, "text changes detected:\n"+clip(d, 800))
			}
		}
	case !ok:
		res.Reasons = append(res.Reasons, "no baseline found (first time scanned)")
	}

	g.log.Info("tamper check done", "file", name, "status", string(res.Status), "reasons", len(res.Reasons))
	return res
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
