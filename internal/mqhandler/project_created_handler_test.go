package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checklistapp/contracts/mq"
)

type fakeNotifier struct {
	calls   int
	name    string
	creator string
	err     error
}

func (f *fakeNotifier) NotifyProjectCreated(ctx context.Context, projectName, creator string) error {
	f.calls++
	f.name = projectName
	f.creator = creator
	return f.err
}

type fakeDeduper struct {
	first bool
	key   string
}

func (f *fakeDeduper) AcquireOnce(ctx context.Context, handler string, eventKey string) bool {
	f.key = eventKey
	return f.first
}

func payloadBytes(t *testing.T, p mq.ProjectCreatedPayload) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return b
}

func TestHandleSendsNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	deduper := &fakeDeduper{first: true}
	h := NewProjectCreatedHandler(notifier, deduper, zap.NewNop())

	err := h.Handle(context.Background(), payloadBytes(t, mq.ProjectCreatedPayload{
		ProjectID: "proj-1",
		Name:      "Shop API",
		Creator:   "ana@example.com",
	}))

	require.NoError(t, err)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, "Shop API", notifier.name)
	assert.Equal(t, "ana@example.com", notifier.creator)
	assert.Equal(t, "proj-1", deduper.key)
}

func TestHandleSkipsDuplicate(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewProjectCreatedHandler(notifier, &fakeDeduper{first: false}, zap.NewNop())

	err := h.Handle(context.Background(), payloadBytes(t, mq.ProjectCreatedPayload{
		ProjectID: "proj-1",
		Name:      "Shop API",
	}))

	require.NoError(t, err)
	assert.Zero(t, notifier.calls)
}

func TestHandleAcksOnNotifierFailure(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("webhook down")}
	h := NewProjectCreatedHandler(notifier, &fakeDeduper{first: true}, zap.NewNop())

	err := h.Handle(context.Background(), payloadBytes(t, mq.ProjectCreatedPayload{
		ProjectID: "proj-1",
		Name:      "Shop API",
	}))

	assert.NoError(t, err)
}

func TestHandleDropsMalformedPayload(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewProjectCreatedHandler(notifier, &fakeDeduper{first: true}, zap.NewNop())

	err := h.Handle(context.Background(), json.RawMessage(`{not json`))

	assert.NoError(t, err)
	assert.Zero(t, notifier.calls)
}

func TestHandleDropsPayloadWithoutProjectID(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewProjectCreatedHandler(notifier, &fakeDeduper{first: true}, zap.NewNop())

	err := h.Handle(context.Background(), payloadBytes(t, mq.ProjectCreatedPayload{Name: "Shop API"}))

	assert.NoError(t, err)
	assert.Zero(t, notifier.calls)
}
