//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/askd/internal/api/handlers"
	"github.com/cloo-solutions/askd/internal/llm"
	"github.com/cloo-solutions/askd/internal/repository"
	"github.com/cloo-solutions/askd/internal/server"
	"github.com/cloo-solutions/askd/internal/service"
	"github.com/cloo-solutions/askd/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

const embeddingDimensions = 1536

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	FakeOllama   *httptest.Server
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a pgvector container,
// a deterministic embedder and a fake Ollama backend.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	fakeOllama := newFakeOllama()

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, fakeOllama.URL, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		FakeOllama:   fakeOllama,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.FakeOllama != nil {
		e.FakeOllama.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, orgID string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, orgID)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, orgID string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, orgID)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, orgID string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if orgID != "" {
		req.Header.Set("X-Org-ID", orgID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// hashEmbedder produces stable embeddings without a remote model. Texts
// sharing words land close together, which is enough for retrieval tests.
type hashEmbedder struct{}

func (hashEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, embeddingDimensions)
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	for i := range vec {
		vec[i] = float32((seed>>(uint(i)%24))&0xff) / 255.0
	}
	return vec, nil
}

func (hashEmbedder) Dimensions() int { return embeddingDimensions }

// newFakeOllama serves /api/generate with a canned response.
func newFakeOllama() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"response": "the answer is grounded in the provided context",
			"done":     true,
		})
	}))
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, pool *pgxpool.Pool, ollamaURL string, port int) (string, func()) {
	chunkRepo := repository.NewChunkRepository(pool)
	embedder := hashEmbedder{}

	llmRouter := llm.NewRouter(llm.Config{OllamaBaseURL: ollamaURL})

	ingestionSvc := service.NewIngestionService(embedder, chunkRepo, service.ChunkConfig{MaxWords: 20, Overlap: 4}, 4)
	answerSvc := service.NewAnswerService(embedder, chunkRepo, llmRouter,
		service.AnswerDefaults{Provider: llm.ProviderOllama},
		service.AnswerTimeouts{Embed: 5 * time.Second, Search: 5 * time.Second, Generation: 10 * time.Second},
	)

	cfg := server.RouterConfig{
		IngestHandler:    handlers.NewIngestHandler(ingestionSvc),
		AskHandler:       handlers.NewAskHandler(answerSvc),
		ProvidersHandler: handlers.NewProvidersHandler(llmRouter),
	}

	router := server.NewRouter(cfg)
	addr := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
