package generation

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checklistapp/contracts/mq"
	"checklistapp/internal/eventbus"
	"checklistapp/internal/model"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeGenerator struct {
	output string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.output, f.err
}

type fakeProjectStore struct {
	inserted *model.Project
	err      error
}

func (f *fakeProjectStore) Insert(ctx context.Context, p *model.Project) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	p.ID = "proj-1"
	f.inserted = p
	return p.ID, nil
}

type fakeTaskStore struct {
	mu       sync.Mutex
	titles   []string
	failWith map[string]error
}

func (f *fakeTaskStore) Insert(ctx context.Context, t *model.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failWith[t.Title]; ok {
		return "", err
	}
	f.titles = append(f.titles, t.Title)
	return "task-" + t.Title, nil
}

func (f *fakeTaskStore) insertedTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string{}, f.titles...)
	sort.Strings(out)
	return out
}

type fakePublisher struct {
	routingKey string
	payload    any
	err        error
}

func (f *fakePublisher) Publish(routingKey string, payload any) error {
	f.routingKey = routingKey
	f.payload = payload
	return f.err
}

func newTestService(gen *fakeGenerator, tr *fakeTranscriber, ps *fakeProjectStore, ts *fakeTaskStore, pub *fakePublisher) (*Service, eventbus.Bus) {
	bus := eventbus.NewMemoryBus()
	return NewService(tr, gen, ps, ts, pub, bus, zap.NewNop()), bus
}

func TestGenerateHappyPath(t *testing.T) {
	gen := &fakeGenerator{output: `Sure, here it is: ["Set up repo", "Write tests"] enjoy!`}
	ps := &fakeProjectStore{}
	ts := &fakeTaskStore{}
	pub := &fakePublisher{}
	svc, bus := newTestService(gen, &fakeTranscriber{}, ps, ts, pub)

	created := false
	_, err := bus.Subscribe(context.Background(), eventbus.KeyProjectCreated, func(key, value string) {
		created = true
	})
	require.NoError(t, err)

	res, err := svc.Generate(context.Background(), Request{
		OwnerID:      7,
		Creator:      "ana@example.com",
		Period:       "2 weeks",
		TeamType:     "solo",
		Technologies: []string{"Go", "React"},
	})
	require.NoError(t, err)

	assert.Equal(t, "proj-1", res.ProjectID)
	assert.Equal(t, []string{"Set up repo", "Write tests"}, res.Checklist)
	assert.Empty(t, res.Failed)

	require.NotNil(t, ps.inserted)
	assert.Equal(t, DefaultProjectName, ps.inserted.Name)
	assert.Equal(t, 7, ps.inserted.OwnerID)
	assert.Equal(t, []string{"Set up repo", "Write tests"}, ts.insertedTitles())

	assert.Contains(t, gen.prompt, "technologies: Go, React")
	assert.Contains(t, gen.prompt, "period: 2 weeks")
	assert.Contains(t, gen.prompt, "team: solo")

	assert.Equal(t, RoutingKeyProjectCreated, pub.routingKey)
	payload, ok := pub.payload.(mq.ProjectCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, "proj-1", payload.ProjectID)
	assert.Equal(t, "ana@example.com", payload.Creator)
	assert.Equal(t, 2, payload.TaskCount)

	assert.True(t, created)
}

func TestGenerateWithAudioBrief(t *testing.T) {
	gen := &fakeGenerator{output: `["Plan sprint"]`}
	tr := &fakeTranscriber{text: "a two week solo project"}
	ps := &fakeProjectStore{}
	svc, _ := newTestService(gen, tr, ps, &fakeTaskStore{}, &fakePublisher{})

	res, err := svc.Generate(context.Background(), Request{
		OwnerID:       7,
		Technologies:  []string{"Go"},
		Audio:         io.NopCloser(nil),
		AudioFilename: "brief.webm",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, tr.calls)
	assert.Equal(t, "a two week solo project", res.Description)
	assert.Contains(t, gen.prompt, "description: a two week solo project")
}

func TestGenerateTranscriptionFailureAborts(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("upstream down")}
	gen := &fakeGenerator{output: `["never reached"]`}
	ps := &fakeProjectStore{}
	svc, _ := newTestService(gen, tr, ps, &fakeTaskStore{}, &fakePublisher{})

	_, err := svc.Generate(context.Background(), Request{
		OwnerID: 7,
		Audio:   io.NopCloser(nil),
	})
	require.Error(t, err)
	assert.Empty(t, gen.prompt)
	assert.Nil(t, ps.inserted)
}

func TestGenerateNoChecklistInOutput(t *testing.T) {
	gen := &fakeGenerator{output: "I could not come up with anything."}
	ps := &fakeProjectStore{}
	svc, _ := newTestService(gen, &fakeTranscriber{}, ps, &fakeTaskStore{}, &fakePublisher{})

	_, err := svc.Generate(context.Background(), Request{OwnerID: 7})
	require.Error(t, err)
	assert.Nil(t, ps.inserted)
}

func TestGenerateProjectInsertFailure(t *testing.T) {
	gen := &fakeGenerator{output: `["Set up repo"]`}
	ps := &fakeProjectStore{err: errors.New("db down")}
	ts := &fakeTaskStore{}
	svc, _ := newTestService(gen, &fakeTranscriber{}, ps, ts, &fakePublisher{})

	_, err := svc.Generate(context.Background(), Request{OwnerID: 7})
	require.Error(t, err)
	assert.Empty(t, ts.insertedTitles())
}

func TestGeneratePartialTaskFailureKeepsProject(t *testing.T) {
	gen := &fakeGenerator{output: `["Set up repo", "Write tests", "Deploy"]`}
	ps := &fakeProjectStore{}
	ts := &fakeTaskStore{failWith: map[string]error{"Write tests": errors.New("insert failed")}}
	svc, _ := newTestService(gen, &fakeTranscriber{}, ps, ts, &fakePublisher{})

	res, err := svc.Generate(context.Background(), Request{OwnerID: 7})
	require.NoError(t, err)

	assert.Equal(t, "proj-1", res.ProjectID)
	assert.Equal(t, []string{"Set up repo", "Write tests", "Deploy"}, res.Checklist)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "Write tests", res.Failed[0].Title)
	assert.Equal(t, "insert failed", res.Failed[0].Error)
	assert.Equal(t, []string{"Deploy", "Set up repo"}, ts.insertedTitles())
}

func TestGeneratePublishFailureIsNotFatal(t *testing.T) {
	gen := &fakeGenerator{output: `["Set up repo"]`}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, _ := newTestService(gen, &fakeTranscriber{}, &fakeProjectStore{}, &fakeTaskStore{}, pub)

	res, err := svc.Generate(context.Background(), Request{OwnerID: 7})
	require.NoError(t, err)
	assert.Equal(t, "proj-1", res.ProjectID)
}
