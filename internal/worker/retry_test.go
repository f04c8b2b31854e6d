package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docverify/internal/queue"
	queuemocks "docverify/internal/queue/mocks"
)

// flakyProcessor fails its first n runs, then succeeds.
type flakyProcessor struct {
	failures int
	calls    int
}

func (p *flakyProcessor) Run(context.Context, queue.Notification) error {
	p.calls++
	if p.calls <= p.failures {
		return assert.AnError
	}
	return nil
}

func shortRetryDelay(t *testing.T) {
	t.Helper()
	old := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = old })
}

func retryMessage() queue.Message {
	return queue.Message{Note: queue.Notification{
		TenantID:     "3580",
		CaseID:       "9921",
		DocumentName: "dl",
		StorageKey:   "3580/9921/document/dl.pdf",
	}}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerRetriesUntilOutcomePersists(t *testing.T) {
	shortRetryDelay(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg := retryMessage()
	consumer := new(queuemocks.MockConsumer)
	consumer.On("Fetch", mock.Anything).Return(msg, nil).Once()
	consumer.On("Fetch", mock.Anything).Return(queue.Message{}, context.Canceled)
	consumer.On("Commit", mock.Anything, msg).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil).Once()

	proc := &flakyProcessor{failures: 2}
	err := New(consumer, proc, quietLogger()).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, proc.calls)
	consumer.AssertExpectations(t)
}

func TestRunnerAbandonsDocumentAfterAttemptsSpent(t *testing.T) {
	shortRetryDelay(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg := retryMessage()
	consumer := new(queuemocks.MockConsumer)
	consumer.On("Fetch", mock.Anything).Return(msg, nil).Once()
	consumer.On("Fetch", mock.Anything).Return(queue.Message{}, context.Canceled)
	// The abandoned record is still committed so the loop moves on cleanly.
	consumer.On("Commit", mock.Anything, msg).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil).Once()

	proc := &flakyProcessor{failures: processAttempts * 2}
	err := New(consumer, proc, quietLogger()).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, processAttempts, proc.calls)
	consumer.AssertExpectations(t)
}
