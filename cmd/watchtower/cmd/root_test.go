package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	cfgFile, baseURL, apiKey, logLevel = "", "", "", "error"
	listLimit, listCursor, listAll = 0, "", false
	createFile, createJSON, createExplain = "", "", false
	exportOut = "."
}

// executeCommand runs the CLI with args and returns everything it printed.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	color.Enable = false
	t.Cleanup(func() { color.Enable = true })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// fakeAPI is a canned analysis API; handlers are keyed by "METHOD PATH".
func fakeAPI(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.Method+" "+r.URL.Path]; ok {
			h(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"ok":false,"error":"not found"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestRootCommandStructure(t *testing.T) {
	assert.Equal(t, "watchtower", rootCmd.Use)
	for _, name := range []string{"config", "base-url", "api-key", "log-level"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}

	var sub []string
	for _, c := range runsCmd.Commands() {
		sub = append(sub, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "get", "create", "export"}, sub)
}

func TestExecute(t *testing.T) {
	assert.NotNil(t, Execute)
}

func TestBackendErrorsSurface(t *testing.T) {
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"GET /runs": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		},
	})

	_, err := executeCommand(t, "", "runs", "list", "--base-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502 Bad Gateway")
}

func TestAPIKeyFlagIsSent(t *testing.T) {
	var got string
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"GET /runs": func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("X-API-Key")
			_, _ = io.WriteString(w, `{"ok":true,"runs":[]}`)
		},
	})

	_, err := executeCommand(t, "", "runs", "list", "--base-url", srv.URL, "--api-key", "k-123")
	require.NoError(t, err)
	assert.Equal(t, "k-123", got)
}
