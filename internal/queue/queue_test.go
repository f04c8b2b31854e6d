package queue

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestDecode(t *testing.T) {
	n, err := decode([]byte(`{
		"tenant_id": "3580",
		"case_id": "9921",
		"checklist_id": "371",
		"document_name": "Driver's License",
		"storage_key": "3580/2025/10/13/9921/upload/document/license.pdf"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "3580", n.TenantID)
	assert.Equal(t, "Driver's License", n.DocumentName)

	_, err = decode([]byte("not json"))
	assert.Error(t, err)

	_, err = decode([]byte(`{"tenant_id": "3580"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required keys")
}

func TestCaseContextNameFallback(t *testing.T) {
	n := Notification{
		TenantID:   "t",
		CaseID:     "c",
		StorageKey: "t/2025/10/13/c/upload/document/bank_statement.pdf",
	}
	cc := n.CaseContext()
	assert.Equal(t, "bank_statement", cc.DocumentName)
	require.True(t, cc.Valid())

	n.DocumentName = "Bank Statement"
	assert.Equal(t, "Bank Statement", n.CaseContext().DocumentName)
}

func TestMetadataKey(t *testing.T) {
	n := Notification{StorageKey: "3580/upload/document/license.pdf"}
	assert.Equal(t, "3580/upload/metadata/license.pdf.json", n.MetadataKey())

	n.StorageKey = "3580/upload/license.pdf"
	assert.Equal(t, "3580/upload/metadata/license.pdf.json", n.MetadataKey())
}

func TestAdmit(t *testing.T) {
	c := &KafkaConsumer{
		start: time.Now(),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	good := []byte(`{"tenant_id":"t","case_id":"c","storage_key":"t/upload/document/id.pdf"}`)

	t.Run("fresh valid record admitted", func(t *testing.T) {
		msg, _, ok := c.admit(&kgo.Record{Value: good, Timestamp: c.start.Add(time.Second)})
		require.True(t, ok)
		assert.Equal(t, "t", msg.Note.TenantID)
	})

	t.Run("backlog skipped", func(t *testing.T) {
		_, reason, ok := c.admit(&kgo.Record{Value: good, Timestamp: c.start.Add(-time.Minute)})
		assert.False(t, ok)
		assert.Contains(t, reason, "backlog")
	})

	t.Run("malformed skipped", func(t *testing.T) {
		_, reason, ok := c.admit(&kgo.Record{Value: []byte("{"), Timestamp: c.start.Add(time.Second)})
		assert.False(t, ok)
		assert.Contains(t, reason, "decode notification")
	})

	t.Run("sidecar upload skipped", func(t *testing.T) {
		sidecar := []byte(`{"tenant_id":"t","case_id":"c","storage_key":"t/upload/metadata/id.pdf.json"}`)
		_, reason, ok := c.admit(&kgo.Record{Value: sidecar, Timestamp: c.start.Add(time.Second)})
		assert.False(t, ok)
		assert.Contains(t, reason, "sidecar")
	})
}

func TestCommitNilRecordIsNoop(t *testing.T) {
	c := &KafkaConsumer{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	assert.NoError(t, c.Commit(t.Context(), Message{}))
}
