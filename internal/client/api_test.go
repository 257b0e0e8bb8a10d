package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/loadboard/internal/adapters/repository"
	"github.com/retailops/loadboard/internal/application/services"
	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/infrastructure/config"
	"github.com/retailops/loadboard/internal/infrastructure/logger"
	"github.com/retailops/loadboard/internal/infrastructure/server"
	"github.com/retailops/loadboard/internal/ports"
)

func apiConfig(auth bool) *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "loadboard", Environment: "test"},
		Server:   config.ServerConfig{Port: 8080, BodyLimit: "1M"},
		Database: config.DatabaseConfig{Driver: config.DriverMemory, QueryTimeout: time.Second},
		Auth: config.AuthConfig{
			Enabled:   auth,
			Secret:    "client-test-secret",
			Issuer:    "loadboard",
			ExpiresIn: time.Hour,
		},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*"},
	}
}

func newAPIServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	srv, err := server.New(cfg, repository.NewMemoryStore(), logger.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_RoundTrip(t *testing.T) {
	ts := newAPIServer(t, apiConfig(false))
	c := New(Options{BaseURL: ts.URL + "/", Timeout: 5 * time.Second})
	ctx := context.Background()

	created, err := c.CreateTask(ctx, ports.CreateTaskRequest{
		Retailer:  "Acme",
		Day:       "Monday",
		FileCount: 5,
		Formats:   entities.Formats{XLSX: 2, CSV: 2, TXT: 1},
		LoadType:  entities.LoadTypeDirect,
		Files:     []entities.TaskFile{{DownloadName: "acme.xlsx", RequiredName: "ACME_IN.xlsx"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.Completed)

	_, err = c.CreateTask(ctx, ports.CreateTaskRequest{Retailer: "Globex", Day: "Friday"})
	require.NoError(t, err)

	tasks, err := c.ListTasks(ctx, Key{})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = c.ListTasks(ctx, Key{Search: "acm", Day: "mon"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)

	completed := true
	require.NoError(t, c.UpdateTask(ctx, created.ID, ports.TaskFields{Completed: &completed}))

	got, err := c.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, created.Files, got.Files)

	require.NoError(t, c.DeleteTask(ctx, created.ID))

	_, err = c.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	err = c.DeleteTask(ctx, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Task not found", apiErr.Message)
}

func TestClient_ValidationError(t *testing.T) {
	ts := newAPIServer(t, apiConfig(false))
	c := New(Options{BaseURL: ts.URL, Timeout: 5 * time.Second})

	_, err := c.CreateTask(context.Background(), ports.CreateTaskRequest{Day: "Monday"})
	assert.ErrorIs(t, err, entities.ErrValidation)
	assert.NotErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestClient_BearerToken(t *testing.T) {
	cfg := apiConfig(true)
	ts := newAPIServer(t, cfg)

	_, err := New(Options{BaseURL: ts.URL, Timeout: 5 * time.Second}).ListTasks(context.Background(), Key{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	token, err := services.NewAuthService(cfg.Auth).IssueToken("dashboard")
	require.NoError(t, err)

	tasks, err := New(Options{BaseURL: ts.URL, Token: token, Timeout: 5 * time.Second}).
		ListTasks(context.Background(), Key{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestClient_ListQuery(t *testing.T) {
	var query atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL, Timeout: time.Second})

	_, err := c.ListTasks(context.Background(), Key{Search: "acme co"})
	require.NoError(t, err)
	assert.Equal(t, "day=all&search=acme+co", query.Load())
}

func TestClient_Retries(t *testing.T) {
	var gets, posts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			posts.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Failed to create task"}`))
			return
		}
		if gets.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"_id":"1","retailer":"Acme"}]`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL, Timeout: 5 * time.Second, RetryCount: 2})
	ctx := context.Background()

	tasks, err := c.ListTasks(ctx, Key{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, int32(2), gets.Load())

	_, err = c.CreateTask(ctx, ports.CreateTaskRequest{Retailer: "Acme", Day: "Monday"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to create task", apiErr.Message)
	assert.Equal(t, int32(1), posts.Load())
}

func TestClient_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(Options{BaseURL: url, Timeout: time.Second}).ListTasks(context.Background(), Key{})
	require.Error(t, err)
	var apiErr *APIError
	assert.NotErrorAs(t, err, &apiErr)
}
