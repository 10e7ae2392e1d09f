package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/askd/internal/api/handlers"
	"github.com/cloo-solutions/askd/internal/llm"
	"github.com/cloo-solutions/askd/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

type MockAnswerService struct {
	mock.Mock
}

func (m *MockAnswerService) Ask(ctx context.Context, input service.AskInput) (*service.AnswerOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnswerOutput), args.Error(1)
}

type MockProviderDirectory struct {
	mock.Mock
}

func (m *MockProviderDirectory) Providers() []llm.ProviderInfo {
	args := m.Called()
	return args.Get(0).([]llm.ProviderInfo)
}

func setupRouter() (http.Handler, *MockIngestionService, *MockAnswerService, *MockProviderDirectory) {
	ingestSvc := new(MockIngestionService)
	answerSvc := new(MockAnswerService)
	directory := new(MockProviderDirectory)

	cfg := RouterConfig{
		IngestHandler:    handlers.NewIngestHandler(ingestSvc),
		AskHandler:       handlers.NewAskHandler(answerSvc),
		ProvidersHandler: handlers.NewProvidersHandler(directory),
	}

	router := NewRouter(cfg)
	return router, ingestSvc, answerSvc, directory
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_ProvidersEndpoint(t *testing.T) {
	router, _, _, directory := setupRouter()

	directory.On("Providers").Return([]llm.ProviderInfo{
		{Key: "ollama", Label: "Ollama", DefaultModel: "llama3.1"},
	})

	req := httptest.NewRequest(http.MethodGet, "/providers", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ollama")
	directory.AssertExpectations(t)
}

func TestRouter_AskForwardsOrgHeader(t *testing.T) {
	router, _, answerSvc, _ := setupRouter()

	answerSvc.On("Ask", mock.Anything, mock.MatchedBy(func(input service.AskInput) bool {
		return input.OrgID == "org-789" && input.Question == "q"
	})).Return(&service.AnswerOutput{Answer: "a"}, nil)

	body, _ := json.Marshal(map[string]string{"question": "q"})
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	req.Header.Set("X-Org-ID", "org-789")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	answerSvc.AssertExpectations(t)
}

func TestRouter_IngestWithoutOrgHeader(t *testing.T) {
	router, ingestSvc, _, _ := setupRouter()

	ingestSvc.On("Ingest", mock.Anything, mock.MatchedBy(func(input service.IngestInput) bool {
		return input.OrgID == ""
	})).Return(&service.IngestResult{ChunkCount: 1, Parts: []service.IngestedPart{{ID: "c1"}}}, nil)

	body, _ := json.Marshal(map[string]string{"tier": "domain", "text": "hello world"})
	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	ingestSvc.AssertExpectations(t)
}

func TestRouter_BodyLimitEnforced(t *testing.T) {
	router, ingestSvc, _, _ := setupRouter()

	oversized := bytes.Repeat([]byte("a"), 6*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(oversized))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	ingestSvc.AssertNotCalled(t, "Ingest")
}
