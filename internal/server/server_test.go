package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/pipeline"
)

func testServer(provider pipeline.DepsProvider) *Server {
	runner := pipeline.NewRunner(provider)
	return New(Config{Port: 10000, DefaultMode: pipeline.ModeIndex}, runner, zap.NewNop())
}

// failingProvider keeps runs short and records that a run happened.
func failingProvider(ran chan<- struct{}) pipeline.DepsProvider {
	return func(context.Context) (*pipeline.Deps, error) {
		if ran != nil {
			ran <- struct{}{}
		}
		return nil, errors.New("document store unavailable")
	}
}

func doRequest(t *testing.T, s *Server, method, target string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	res := rec.Result()
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return res, body
}

func TestHealth(t *testing.T) {
	s := testServer(failingProvider(nil))

	res, body := doRequest(t, s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "index", body["agent_configured"])
}

func TestRunAgent_DefaultMode(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := testServer(failingProvider(ran))

	res, body := doRequest(t, s, http.MethodPost, "/run-agent")
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "Agent started", body["message"])
	assert.Equal(t, "index", body["agent"])

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("run never started")
	}
}

func TestRunAgent_ModeOverride(t *testing.T) {
	s := testServer(failingProvider(nil))

	res, body := doRequest(t, s, http.MethodGet, "/run-agent?agent=matching")
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "matching", body["agent"])
}

func TestRunAgent_InvalidMode(t *testing.T) {
	s := testServer(failingProvider(nil))

	res, body := doRequest(t, s, http.MethodGet, "/run-agent?agent=everything")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, body["error"], "invalid agent mode")
}

func TestRunAgent_ConflictWhileRunning(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := testServer(func(context.Context) (*pipeline.Deps, error) {
		close(started)
		<-release
		return nil, errors.New("held")
	})

	res, _ := doRequest(t, s, http.MethodPost, "/run-agent")
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	<-started

	res, body := doRequest(t, s, http.MethodPost, "/run-agent")
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "Agent is already running", body["message"])

	close(release)
}

func TestStatus_ReportsLastError(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := testServer(failingProvider(ran))

	res, body := doRequest(t, s, http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, false, body["running"])
	assert.Equal(t, "", body["last_run"])
	assert.Equal(t, "index", body["agent_mode"])

	_, _ = doRequest(t, s, http.MethodPost, "/run-agent")
	<-ran

	deadline := time.After(5 * time.Second)
	for {
		_, body = doRequest(t, s, http.MethodGet, "/status")
		if body["running"] == false && body["last_run"] != "" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("status never settled")
		case <-time.After(time.Millisecond):
		}
	}
	assert.Equal(t, "document store unavailable", body["last_error"])
}

func TestUnknownMethodRejected(t *testing.T) {
	s := testServer(failingProvider(nil))

	req := httptest.NewRequest(http.MethodDelete, "/run-agent", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Result().StatusCode)
}
