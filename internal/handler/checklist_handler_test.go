package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checklistapp/internal/generation"
)

type fakeGenerationService struct {
	req    generation.Request
	result *generation.Result
	err    error
	audio  string
}

func (f *fakeGenerationService) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	f.req = req
	if req.Audio != nil {
		data, _ := io.ReadAll(req.Audio)
		f.audio = string(data)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSlackNotifier struct {
	name    string
	creator string
	err     error
}

func (f *fakeSlackNotifier) NotifyProjectCreated(ctx context.Context, projectName, creator string) error {
	f.name = projectName
	f.creator = creator
	return f.err
}

func checklistRouter(svc GenerationService, notifier ProjectNotifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChecklistHandler(svc, notifier, zap.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(ContextUserIDKey, 7) })
	r.POST("/smart-checklist", h.SmartChecklist)
	r.POST("/smart-checklist/slack-notify", h.SlackNotify)
	return r
}

func TestSmartChecklistJSONBody(t *testing.T) {
	svc := &fakeGenerationService{result: &generation.Result{
		ProjectID:   "proj-1",
		Checklist:   []string{"Set up repo"},
		Description: "a solo project",
	}}
	r := checklistRouter(svc, &fakeSlackNotifier{})

	w := doJSON(t, r, http.MethodPost, "/smart-checklist",
		`{"period":"2 weeks","teamType":"solo","technologies":["Go","React"],"creator":"ana@example.com"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"projectId":"proj-1"`)
	assert.Contains(t, w.Body.String(), `"failedTasks":[]`)

	assert.Equal(t, 7, svc.req.OwnerID)
	assert.Equal(t, []string{"Go", "React"}, svc.req.Technologies)
	assert.Equal(t, "ana@example.com", svc.req.Creator)
	assert.Nil(t, svc.req.Audio)
}

func TestSmartChecklistMultipartWithAudio(t *testing.T) {
	svc := &fakeGenerationService{result: &generation.Result{ProjectID: "proj-1"}}
	r := checklistRouter(svc, &fakeSlackNotifier{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("period", "1 month"))
	require.NoError(t, mw.WriteField("teamType", "team"))
	require.NoError(t, mw.WriteField("technologies", `["Python"]`))
	part, err := mw.CreateFormFile("audio", "brief.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-audio-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/smart-checklist", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1 month", svc.req.Period)
	assert.Equal(t, []string{"Python"}, svc.req.Technologies)
	assert.Equal(t, "brief.webm", svc.req.AudioFilename)
	assert.Equal(t, "fake-audio-bytes", svc.audio)
}

func TestSmartChecklistMalformedTechnologies(t *testing.T) {
	svc := &fakeGenerationService{result: &generation.Result{ProjectID: "proj-1"}}
	r := checklistRouter(svc, &fakeSlackNotifier{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("technologies", `not-json`))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/smart-checklist", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSmartChecklistGenerationFailure(t *testing.T) {
	svc := &fakeGenerationService{err: errors.New("generation request failed: model overloaded")}
	r := checklistRouter(svc, &fakeSlackNotifier{})

	w := doJSON(t, r, http.MethodPost, "/smart-checklist", `{"technologies":["Go"]}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "model overloaded")
}

func TestSmartChecklistReportsFailedTasks(t *testing.T) {
	svc := &fakeGenerationService{result: &generation.Result{
		ProjectID: "proj-1",
		Checklist: []string{"Set up repo", "Write tests"},
		Failed:    []generation.FailedTask{{Title: "Write tests", Error: "insert failed"}},
	}}
	r := checklistRouter(svc, &fakeSlackNotifier{})

	w := doJSON(t, r, http.MethodPost, "/smart-checklist", `{}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Write tests"`)
	assert.Contains(t, w.Body.String(), `"error":"insert failed"`)
}

func TestSlackNotify(t *testing.T) {
	notifier := &fakeSlackNotifier{}
	r := checklistRouter(&fakeGenerationService{}, notifier)

	w := doJSON(t, r, http.MethodPost, "/smart-checklist/slack-notify",
		`{"projectName":"Shop API","creator":"ana@example.com"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, "Shop API", notifier.name)
	assert.Equal(t, "ana@example.com", notifier.creator)
}

func TestSlackNotifyMissingName(t *testing.T) {
	r := checklistRouter(&fakeGenerationService{}, &fakeSlackNotifier{})

	w := doJSON(t, r, http.MethodPost, "/smart-checklist/slack-notify", `{"creator":"ana@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlackNotifyDeliveryFailure(t *testing.T) {
	r := checklistRouter(&fakeGenerationService{}, &fakeSlackNotifier{err: errors.New("webhook down")})

	w := doJSON(t, r, http.MethodPost, "/smart-checklist/slack-notify", `{"projectName":"Shop API"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
