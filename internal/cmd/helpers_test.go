package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/apimpub/internal/config"
	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/output"
)

// isolate points HOME at a temp dir, clears every APIMPUB_* variable and
// captures log output.
func isolate(t *testing.T) (home string, logs *bytes.Buffer) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("APIMPUB_CONFIG", "")
	for _, k := range config.Keys {
		t.Setenv(k.Env, "")
	}

	logs = &bytes.Buffer{}
	output.SetOutput(logs, output.LogConfig{Timestamps: output.BoolPtr(false)})
	t.Cleanup(func() { output.SetupLogging(output.LogConfig{}) })
	return home, logs
}

// execute runs cmd with args and returns its standard output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *oerrors.ExitError
	require.ErrorAs(t, err, &exitErr)
	return exitErr.Code
}

// apimServer is a minimal management API recording every call.
type apimServer struct {
	*httptest.Server

	mu     sync.Mutex
	calls  []string
	bodies map[string]map[string]any

	// lists maps collection paths to the names they return.
	lists map[string][]string

	// status, when set, is returned for every PUT and DELETE.
	status int
}

func newAPIMServer(t *testing.T) *apimServer {
	t.Helper()
	s := &apimServer{bodies: map[string]map[string]any{}, lists: map[string][]string{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *apimServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodGet {
		page := map[string]any{"value": []any{}}
		var items []any
		for _, name := range s.lists[r.URL.Path] {
			items = append(items, map[string]any{"name": name})
		}
		if items != nil {
			page["value"] = items
		}
		_ = json.NewEncoder(w).Encode(page)
		return
	}

	if s.status != 0 {
		w.WriteHeader(s.status)
		_, _ = w.Write([]byte(`{"error":{"code":"Denied","message":"no"}}`))
		return
	}

	if r.Method == http.MethodPut {
		data, _ := io.ReadAll(r.Body)
		var doc map[string]any
		_ = json.Unmarshal(data, &doc)
		s.bodies[r.URL.Path] = doc
	}
	_, _ = w.Write([]byte("{}"))
}

// Calls returns the recorded calls of one method.
func (s *apimServer) Calls(method string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if len(c) > len(method) && c[:len(method)+1] == method+" " {
			out = append(out, c[len(method)+1:])
		}
	}
	return out
}

// Body returns the last document put at path.
func (s *apimServer) Body(path string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[path]
}

// serviceConfig returns a configuration pointing at the server.
func (s *apimServer) serviceConfig() *GlobalConfig {
	cfg := config.DefaultConfig()
	cfg.Service.URL = s.URL
	cfg.Auth.Token = "token"
	cfg.Publish.QPS = 0
	return &GlobalConfig{Config: cfg}
}
