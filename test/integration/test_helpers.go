//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"shop-api/internal/app"
	"shop-api/internal/auth"
	"shop-api/internal/config"
	"shop-api/internal/database"
)

type env struct {
	server *httptest.Server
	db     *database.DB
}

func startMongo(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.PortEndpoint(ctx, "27017/tcp", "mongodb")
	require.NoError(t, err)
	return uri
}

func newEnv(t *testing.T, ttl string) *env {
	t.Helper()

	uri := startMongo(t)
	ctx := context.Background()

	db, err := database.New(ctx, uri, "shop_test", 20, 20*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	require.NoError(t, db.EnsureIndexes(ctx))

	tokens, err := auth.NewTokenManager("integration-secret", ttl)
	require.NoError(t, err)

	cfg := &config.Config{
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		RequestTimeout:   10 * time.Second,
	}

	h, err := app.NewHandler(cfg, db, tokens)
	require.NoError(t, err)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	return &env{server: server, db: db}
}

func (e *env) do(t *testing.T, method string, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, e.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// status sends a JSON request and reports only the status code. It is safe to
// call from goroutines other than the test's own.
func (e *env) status(method string, path string, body any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(method, e.server.URL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (e *env) registerAndLogin(t *testing.T, email string, password string) string {
	t.Helper()

	resp, _ := e.do(t, http.MethodPost, "/api/v1/register", map[string]string{
		"username": email, "email": email, "password": password, "number": "000",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := e.do(t, http.MethodPost, "/api/v1/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token, _ := body["accessToken"].(string)
	require.NotEmpty(t, token)
	return token
}
