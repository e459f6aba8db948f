package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pox-exporter/client"
	"pox-exporter/config"
	"pox-exporter/handlers"
	"pox-exporter/logger"
	"pox-exporter/models"
	"pox-exporter/pox"
	"pox-exporter/repository"
	"pox-exporter/routers"
)

type mockRepo struct {
	mu        sync.Mutex
	down      bool
	calls     int
	lockCalls int
}

func (m *mockRepo) FetchCycleInfo(ctx context.Context) (*models.CycleInfoRaw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.down {
		return nil, errors.New("connection refused")
	}
	raw := models.NewCycleInfoRaw()
	raw.CurrentCycle.ID = 84
	raw.CurrentBurnchainBlockHeight = 900000
	raw.NextCycle.ID = 85
	raw.NextCycle.BlocksUntilPreparePhase = 50
	raw.NextCycle.BlocksUntilRewardPhase = 150
	return raw, nil
}

func (m *mockRepo) FetchAddressLock(ctx context.Context, address string) (*models.AddressLockInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockCalls++
	return &models.AddressLockInfo{Locked: "1000", UnlockHeight: 900151}, nil
}

func testServer(cfg config.Config) (*mux.Router, *mockRepo) {
	logger.Logger = zap.NewNop()

	mockRepo := &mockRepo{}
	var repoInterface repository.PoxRepositoryInterface = mockRepo
	exporter := pox.NewExporter(cfg, repoInterface)
	handler := handlers.NewHandler(exporter)
	router := mux.NewRouter()
	routers.RegisterRoutes(router, handler)
	return router, mockRepo
}

func TestMetrics_Success(t *testing.T) {
	router, mockRepo := testServer(config.Config{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", res.Header().Get("Content-Type"))

	body := res.Body.String()
	assert.Contains(t, body, "stacks_pox_up 1\n")
	assert.Contains(t, body, "stacks_pox_next_reward_start_block 900150\n")
	assert.Contains(t, body, "stacks_pox_reward_length 2000\n")
	assert.True(t, strings.HasSuffix(body, "stacks_pox_registered_next_cycle -1\n"))
	assert.Equal(t, 1, mockRepo.calls)
	assert.Equal(t, 0, mockRepo.lockCalls)
}

func TestMetrics_Registered(t *testing.T) {
	router, mockRepo := testServer(config.Config{StackerAddresses: []string{"SP1"}})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "stacks_pox_registered_next_cycle 1\n")
	assert.Equal(t, 1, mockRepo.lockCalls)
}

func TestMetrics_NodeDown(t *testing.T) {
	router, mockRepo := testServer(config.Config{StackerAddresses: []string{"SP1"}})
	mockRepo.down = true

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	assert.Contains(t, body, "# TYPE stacks_pox_registered_next_cycle gauge\n")
	assert.True(t, strings.HasSuffix(body, "\nstacks_pox_up 0\n"))
	assert.NotContains(t, body, "stacks_pox_current_cycle 0")
	assert.Equal(t, 0, mockRepo.lockCalls)
}

func TestHealth_NoUpstreamCalls(t *testing.T) {
	router, mockRepo := testServer(config.Config{})
	mockRepo.down = true

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))
	assert.Equal(t, `{"status": "ok"}`, res.Body.String())
	assert.Equal(t, 0, mockRepo.calls)
}

func TestNotFound(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/unknown"},
		{http.MethodGet, "/"},
		{http.MethodPost, "/metrics"},
		{http.MethodDelete, "/health"},
		{http.MethodGet, "//metrics"},
		{http.MethodGet, "/./health"},
		{http.MethodGet, "/health/."},
		{http.MethodGet, "/metrics/"},
	}

	for _, down := range []bool{false, true} {
		router, mockRepo := testServer(config.Config{})
		mockRepo.down = down

		for _, tt := range tests {
			res := httptest.NewRecorder()
			router.ServeHTTP(res, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusNotFound, res.Code, "%s %s (upstream down: %v)", tt.method, tt.path, down)
			assert.Empty(t, res.Header().Get("Location"), "%s %s", tt.method, tt.path)
			assert.Empty(t, res.Body.String(), "%s %s", tt.method, tt.path)
		}
		assert.Equal(t, 0, mockRepo.calls)
	}
}

// TestMetrics_AgainstUpstreams runs the whole stack against fake node and
// indexer servers.
func TestMetrics_AgainstUpstreams(t *testing.T) {
	logger.Logger = zap.NewNop()

	var nodeHits, apiHits int32
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&nodeHits, 1)
		w.Write([]byte(`{"current_cycle":{"id":84},"current_burnchain_block_height":900000,
			"next_cycle":{"id":85,"blocks_until_prepare_phase":50,"blocks_until_reward_phase":150},
			"reward_cycle_length":2100,"prepare_cycle_length":100}`))
	}))
	defer node.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiHits, 1)
		switch r.URL.Path {
		case "/extended/v1/address/SP1/stx":
			w.Write([]byte(`{"locked":"0","burnchain_unlock_height":0}`))
		case "/extended/v1/address/SP2/stx":
			w.Write([]byte(`{"locked":"1000","burnchain_unlock_height":900151}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer api.Close()

	cfg := config.Config{
		NodeURL:          node.URL,
		StackerAddresses: []string{"SP1", "SP2"},
		StackerAPIURL:    api.URL,
	}
	repo := repository.NewPoxRepository(cfg, client.NewHTTPClient(client.DefaultTimeout))
	router := mux.NewRouter()
	routers.RegisterRoutes(router, handlers.NewHandler(pox.NewExporter(cfg, repo)))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&nodeHits))

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, res.Code)

	body := res.Body.String()
	assert.Contains(t, body, "stacks_pox_next_prepare_start_block 900050\n")
	assert.Contains(t, body, `stacks_pox_info{current_cycle="84",next_cycle="85",burn_height="900000"} 1`)
	assert.Contains(t, body, "stacks_pox_registered_next_cycle 1\n")
	assert.Equal(t, int32(1), atomic.LoadInt32(&nodeHits))
	assert.Equal(t, int32(2), atomic.LoadInt32(&apiHits))
}
