// Package queue consumes document upload notifications. The broker-facing
// consumer is deliberately thin: it decodes, filters backlog, and hands
// messages to the worker, which owns processing and commit ordering.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"docverify/internal/model"
)

// Notification is one upload event published when a document lands in
// object storage.
type Notification struct {
	TenantID     string `json:"tenant_id"`
	CaseID       string `json:"case_id"`
	ChecklistID  string `json:"checklist_id,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
	StorageKey   string `json:"storage_key"`
	UploadedAt   string `json:"uploaded_at,omitempty"`
}

// decode parses a notification payload and checks the required keys.
func decode(value []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(value, &n); err != nil {
		return Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	if n.TenantID == "" || n.CaseID == "" || n.StorageKey == "" {
		return Notification{}, fmt.Errorf("notification missing required keys: %+v", n)
	}
	return n, nil
}

// CaseContext builds the pipeline case identity. A missing document name
// falls back to the storage key's file name without its extension.
func (n Notification) CaseContext() model.CaseContext {
	name := n.DocumentName
	if name == "" {
		base := path.Base(n.StorageKey)
		name = strings.TrimSuffix(base, path.Ext(base))
	}
	return model.CaseContext{
		TenantID:     n.TenantID,
		CaseID:       n.CaseID,
		ChecklistID:  n.ChecklistID,
		DocumentName: name,
	}
}

// MetadataKey is the sidecar JSON path uploaded alongside the document:
// .../document/<file> pairs with .../metadata/<file>.json, and flat uploads
// get a metadata/ directory next to the file.
func (n Notification) MetadataKey() string {
	dir := path.Dir(n.StorageKey)
	file := path.Base(n.StorageKey)
	if path.Base(dir) == "document" {
		return path.Join(path.Dir(dir), "metadata", file+".json")
	}
	return path.Join(dir, "metadata", file+".json")
}

// Message is a notification plus the broker bookkeeping needed to commit it.
type Message struct {
	Note      Notification
	Timestamp time.Time

	rec *kgo.Record
}

// Consumer hands upload notifications to the worker one at a time. Commits
// are explicit: the worker commits only after the document outcome is
// persisted, so a crash replays the message.
type Consumer interface {
	Fetch(ctx context.Context) (Message, error)
	Commit(ctx context.Context, msg Message) error
	Close()
}
