package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchestra-dev/podium"
	"github.com/orchestra-dev/podium/internal/logging"
	httpAdapter "github.com/orchestra-dev/podium/pkg/adapters/http"
	"github.com/orchestra-dev/podium/pkg/adapters/memory"
	"github.com/orchestra-dev/podium/pkg/config"
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/loop"
)

func newServer(t *testing.T, attach bool) (*httptest.Server, *memory.Orchestrator) {
	t.Helper()

	cfg := config.Config{
		Commands: []domain.CommandDefinition{
			{Name: "Build"},
			{Name: "Tests", Triggers: []string{"command_success:Build"}},
		},
	}
	orch := memory.New(cfg.Commands)
	t.Cleanup(orch.Close)

	ctrl, err := podium.New(cfg, orch, podium.WithWatchers(false))
	require.NoError(t, err)

	if attach {
		l := loop.New()
		l.Start()
		t.Cleanup(l.Stop)
		require.NoError(t, ctrl.Attach(l))
		t.Cleanup(ctrl.Detach)
	}

	srv := httptest.NewServer(httpAdapter.NewHandler(ctrl, logging.NewNop(), nil))
	t.Cleanup(srv.Close)
	return srv, orch
}

func TestHealthz(t *testing.T) {
	srv, _ := newServer(t, true)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestCommandsEndpoint(t *testing.T) {
	srv, orch := newServer(t, true)

	// Complete one run so Build carries a terminal status.
	resp, err := srv.Client().Post(srv.URL+"/api/commands/Build/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 202, resp.StatusCode)

	require.Eventually(t, func() bool {
		return len(orch.History("Build", 1)) == 1
	}, time.Second, 5*time.Millisecond)

	resp, err = srv.Client().Get(srv.URL + "/api/commands")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var status httpAdapter.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.Len(t, status.Commands, 1)
	assert.Equal(t, "Build", status.Commands[0].Name)
	assert.Equal(t, "success", status.Commands[0].Status)
	require.Len(t, status.Commands[0].Children, 1)
	assert.Equal(t, "Tests", status.Commands[0].Children[0].Name)
}

func TestRunUnknownCommand(t *testing.T) {
	srv, _ := newServer(t, true)

	resp, err := srv.Client().Post(srv.URL+"/api/commands/Nope/run", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestRunBeforeAttachIsUnavailable(t *testing.T) {
	srv, _ := newServer(t, false)

	resp, err := srv.Client().Post(srv.URL+"/api/commands/Build/run", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 503, resp.StatusCode)
}

func TestHistoryEndpoint(t *testing.T) {
	srv, orch := newServer(t, true)

	resp, err := srv.Client().Post(srv.URL+"/api/commands/Build/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Eventually(t, func() bool {
		return len(orch.History("Build", 1)) == 1
	}, time.Second, 5*time.Millisecond)

	resp, err = srv.Client().Get(srv.URL + "/api/commands/Build/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var history []domain.RunResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.NotEmpty(t, history)
	assert.Equal(t, domain.StatusSuccess, history[0].Status)

	resp, err = srv.Client().Get(srv.URL + "/api/commands/Nope/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestDiagnosticsEndpoint(t *testing.T) {
	srv, _ := newServer(t, true)

	resp, err := srv.Client().Get(srv.URL + "/api/diagnostics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var v domain.ValidationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, 2, v.CommandsLoaded)
}
