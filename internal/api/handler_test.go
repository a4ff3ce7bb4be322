// Package api_test tests the HTTP boundary with an in-memory generator.
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upskill-audio/text-to-audio-service/internal/api"
	"github.com/upskill-audio/text-to-audio-service/internal/core"
	"github.com/upskill-audio/text-to-audio-service/internal/service"
	"github.com/upskill-audio/text-to-audio-service/internal/synth"
	"github.com/upskill-audio/text-to-audio-service/internal/voices"
)

var (
	errMockSynthesis = errors.New("mock synthesis error")
	errMockMissing   = errors.New("mock object missing")
	errMockUnhealthy = errors.New("mock provider down")
)

// mockSynthesizer returns fixed audio, a fixed error, or blocks.
type mockSynthesizer struct {
	err   error
	block chan struct{}
}

func (m *mockSynthesizer) Synthesize(
	_ context.Context,
	_ core.SynthesisRequest,
) (*core.SynthesisResult, error) {
	if m.block != nil {
		<-m.block
	}

	if m.err != nil {
		return nil, m.err
	}

	audio := bytes.Repeat([]byte{0xFF}, 2048)

	return &core.SynthesisResult{AudioBytes: audio, SizeBytes: len(audio)}, nil
}

// staticLister serves a fixed catalog.
type staticLister struct{}

func (staticLister) ListVoices(_ context.Context) ([]core.Voice, error) {
	return []core.Voice{
		{ShortName: "en-GB-RyanNeural", Locale: "en-GB", Gender: "Male"},
		{ShortName: "en-US-JennyNeural", Locale: "en-US", Gender: "Female"},
		{ShortName: "en-US-AriaNeural", Locale: "en-US", Gender: "Female"},
	}, nil
}

// mockHealth fails on demand.
type mockHealth struct {
	err error
}

func (m *mockHealth) HealthCheck(_ context.Context) error {
	return m.err
}

// mockClipStore holds clips in a map.
type mockClipStore struct {
	mu    sync.Mutex
	clips map[string][]byte
}

func (m *mockClipStore) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.clips[key]
	if !ok {
		return nil, errMockMissing
	}

	return data, nil
}

func (m *mockClipStore) Upload(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clips[key] = data

	return nil
}

type testHarness struct {
	router      *gin.Engine
	generator   *service.Generator
	synthesizer *mockSynthesizer
	health      *mockHealth
	store       *mockClipStore
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	gin.SetMode(gin.TestMode)

	log, err := logger.New(t.TempDir(), "api-test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = log.Close()
	})

	synthesizer := &mockSynthesizer{}
	catalog := voices.NewCatalog(staticLister{}, time.Hour)
	generator := service.NewGenerator(catalog, synthesizer, log)
	health := &mockHealth{}
	store := &mockClipStore{clips: map[string][]byte{}}

	handler := api.NewHandler(generator, health, store, "en-US", true, log)

	return &testHarness{
		router:      handler.Router(),
		generator:   generator,
		synthesizer: synthesizer,
		health:      health,
		store:       store,
	}
}

func (h *testHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, req)

	return recorder
}

func generateBody() map[string]any {
	return map[string]any{
		"text":        "Hello world",
		"voice":       "en-US-JennyNeural",
		"rate_slider": 180,
		"volume":      1.0,
		"filename":    "training_audio.mp3",
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)

	recorder := harness.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	harness.health.err = errMockUnhealthy

	recorder = harness.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestHandleVoices_DefaultPreferences(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)

	recorder := harness.do(t, http.MethodGet, "/api/v1/voices", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Voices []struct {
			Label string     `json:"label"`
			Voice core.Voice `json:"voice"`
		} `json:"voices"`
		DefaultLabel string `json:"default_label"`
	}

	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))

	require.Len(t, resp.Voices, 2, "default en-US female preference filters the catalog")
	assert.Equal(t, "Jenny (Neural) — en-US — Female", resp.DefaultLabel)
}

func TestHandleVoices_AnyRelaxesFilters(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)

	recorder := harness.do(t, http.MethodGet, "/api/v1/voices?language=Any&gender=Any", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Voices []json.RawMessage `json:"voices"`
	}

	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Len(t, resp.Voices, 3)
}

func TestHandleGenerate_Success(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)

	recorder := harness.do(t, http.MethodPost, "/api/v1/generate", generateBody())
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, "audio/mpeg", recorder.Header().Get("Content-Type"))
	assert.Equal(
		t,
		`attachment; filename="training_audio.mp3"`,
		recorder.Header().Get("Content-Disposition"),
	)
	assert.GreaterOrEqual(t, recorder.Body.Len(), 2000)
}

func TestHandleGenerate_BlankText(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)

	body := generateBody()
	body["text"] = "   "

	recorder := harness.do(t, http.MethodPost, "/api/v1/generate", body)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "please enter some text")
}

func TestHandleGenerate_MissingTextFailsBinding(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)

	body := generateBody()
	delete(body, "text")

	recorder := harness.do(t, http.MethodPost, "/api/v1/generate", body)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandleGenerate_UnknownVoice(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)

	body := generateBody()
	body["voice"] = "xx-XX-NobodyNeural"

	recorder := harness.do(t, http.MethodPost, "/api/v1/generate", body)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "unknown voice")
}

func TestHandleGenerate_BusyRejected(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)
	harness.synthesizer.block = make(chan struct{})

	firstDone := make(chan *httptest.ResponseRecorder, 1)

	go func() {
		firstDone <- harness.do(t, http.MethodPost, "/api/v1/generate", generateBody())
	}()

	// Wait until the first request holds the gate, then expect rejection.
	require.Eventually(t, harness.generator.Busy, 5*time.Second, time.Millisecond)

	recorder := harness.do(t, http.MethodPost, "/api/v1/generate", generateBody())
	assert.Equal(t, http.StatusConflict, recorder.Code)

	close(harness.synthesizer.block)

	first := <-firstDone
	assert.Equal(t, http.StatusOK, first.Code)
}

func TestHandleGenerate_TooShortAudio(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)
	harness.synthesizer.err = fmt.Errorf("wrapped: %w", synth.ErrAudioTooShort)

	recorder := harness.do(t, http.MethodPost, "/api/v1/generate", generateBody())
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "try a different voice")
}

func TestHandleGenerate_ProviderFailure(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)
	harness.synthesizer.err = errMockSynthesis

	recorder := harness.do(t, http.MethodPost, "/api/v1/generate", generateBody())
	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestHandleAudio(t *testing.T) {
	t.Parallel()

	harness := newHarness(t)

	clip := bytes.Repeat([]byte{0xFB}, 2500)
	require.NoError(t, harness.store.Upload(context.Background(), "clip-1.mp3", clip))

	recorder := harness.do(t, http.MethodGet, "/api/v1/audio/clip-1.mp3", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "audio/mpeg", recorder.Header().Get("Content-Type"))
	assert.Equal(t, clip, recorder.Body.Bytes())

	recorder = harness.do(t, http.MethodGet, "/api/v1/audio/missing.mp3", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
