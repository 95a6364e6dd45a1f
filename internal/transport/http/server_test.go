package httptransport

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestRouterLogsRequests(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := NewRouter(RouterConfig{Logger: logger})
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusTeapot, rr.Code)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.InfoLevel, entry.Level)
	require.Equal(t, http.StatusTeapot, entry.Data["status"])
	require.Equal(t, "/ping", entry.Data["path"])
	require.NotEmpty(t, entry.Data["request_id"])
}

func TestRouterAnswersCORSPreflight(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	r := NewRouter(RouterConfig{Logger: logger})
	r.Post("/api/users", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	req.Header.Set("Origin", "http://example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterRateLimitsPerIP(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	r := NewRouter(RouterConfig{Logger: logger, RateLimitPerMinute: 1})
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestServeReturnsListenErrors(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	server := NewServer(ServerConfig{Address: occupied.Addr().String()}, http.NotFoundHandler())

	done := make(chan error, 1)
	go func() { done <- Serve(context.Background(), server, time.Second, logger) }()

	select {
	case err := <-done:
		require.ErrorContains(t, err, "listen on")
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after the listener failed")
	}
}

func TestServeShutsDownWhenContextEnds(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	server := NewServer(ServerConfig{Address: "127.0.0.1:0"}, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, server, time.Second, logger) }()

	require.Eventually(t, func() bool {
		return len(hook.AllEntries()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestNewServerAppliesDefaultTimeouts(t *testing.T) {
	server := NewServer(ServerConfig{Address: ":0", WriteTimeout: 3 * time.Second}, http.NotFoundHandler())

	require.Equal(t, 5*time.Second, server.ReadTimeout)
	require.Equal(t, 5*time.Second, server.ReadHeaderTimeout)
	require.Equal(t, 3*time.Second, server.WriteTimeout)
	require.Equal(t, 60*time.Second, server.IdleTimeout)
}
