package cmd

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
	"github.com/kieranyoussef/finops-watchtower/internal/services/dashboard"
)

func TestRunsList_OnePage(t *testing.T) {
	var query string
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"GET /runs": func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			_, _ = io.WriteString(w, `{"ok":true,"runs":[
				{"id":"r1","createdAt":"2026-03-01T10:00:00Z","source":"ledger.csv","rowCount":120},
				{"id":"r2"}
			],"nextCursor":"c1"}`)
		},
	})

	out, err := executeCommand(t, "", "runs", "list", "--base-url", srv.URL, "--limit", "2")
	require.NoError(t, err)
	assert.Equal(t, "limit=2", query)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "r1")
	assert.Contains(t, lines[1], "2026-03-01 10:00:00Z")
	assert.Contains(t, lines[1], "ledger.csv")
	assert.Contains(t, lines[1], "120")
	assert.Contains(t, out, "next cursor: c1")
}

func TestRunsList_All(t *testing.T) {
	var cursors []string
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"GET /runs": func(w http.ResponseWriter, r *http.Request) {
			c := r.URL.Query().Get("cursor")
			cursors = append(cursors, c)
			switch c {
			case "":
				_, _ = io.WriteString(w, `{"ok":true,"runs":[{"id":"r1"},{"id":"r2"}],"nextCursor":"c1"}`)
			case "c1":
				_, _ = io.WriteString(w, `{"ok":true,"runs":[{"id":"r3"}]}`)
			}
		},
	})

	out, err := executeCommand(t, "", "runs", "list", "--base-url", srv.URL, "--all")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "c1"}, cursors)
	assert.Less(t, strings.Index(out, "r2"), strings.Index(out, "r3"))
	assert.Contains(t, out, "3 run(s) across 2 page(s)")
	assert.NotContains(t, out, "next cursor")

	_, err = executeCommand(t, "", "runs", "list", "--base-url", srv.URL, "--all", "--cursor", "x")
	assert.Error(t, err)
}

func TestRunsGet(t *testing.T) {
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"GET /runs/r1": jsonBody(`{"ok":true,"run":{
			"id":"r1","explain":true,"explanation":"Vendor acme was paid twice.",
			"coverage":["duplicates"],
			"findings":[
				{"type":"duplicate","reason":"same invoice","row":"{\"invoice\":\"A-1\"}"},
				{"index":9,"type":"outlier","reason":"3 sigma","row":"oops"}
			]}}`),
		"GET /runs/quiet": jsonBody(`{"ok":true,"run":{"id":"quiet","explain":true,"explanation":""}}`),
	})

	out, err := executeCommand(t, "", "runs", "get", "r1", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Vendor acme was paid twice.")
	assert.Contains(t, out, "#0 duplicate: same invoice")
	assert.Contains(t, out, `"invoice": "A-1"`)
	assert.Contains(t, out, "#9 outlier: 3 sigma")
	assert.Contains(t, out, "oops")
	assert.Contains(t, out, "Coverage: duplicates")

	out, err = executeCommand(t, "", "runs", "get", "quiet", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.NotContains(t, out, "Explanation")

	_, err = executeCommand(t, "", "runs", "get", "ghost", "--base-url", srv.URL)
	assert.ErrorIs(t, err, run.ErrNotFound)

	_, err = executeCommand(t, "", "runs", "get", "--base-url", srv.URL)
	assert.ErrorIs(t, err, run.ErrNoRunID)
}

func TestRunsCreate_JSONFromStdin(t *testing.T) {
	var body string
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"POST /run": func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			body = string(b)
			_, _ = io.WriteString(w, `{"ok":true,"runId":"r_json"}`)
		},
	})

	out, err := executeCommand(t, `[{"vendor":"acme","amount":10}]`, "runs", "create", "--json", "-", "--explain", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "created run r_json")
	assert.JSONEq(t, `{"rows":[{"vendor":"acme","amount":10}],"explain":true}`, body)
}

func TestRunsCreate_RejectsNonArrayWithoutRequest(t *testing.T) {
	hits := 0
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"POST /run": func(w http.ResponseWriter, _ *http.Request) {
			hits++
			_, _ = io.WriteString(w, `{"ok":true,"runId":"nope"}`)
		},
	})

	_, err := executeCommand(t, `{"a":1}`, "runs", "create", "--json", "-", "--base-url", srv.URL)
	assert.ErrorIs(t, err, dashboard.ErrNotArray)
	assert.Zero(t, hits)
}

func TestRunsCreate_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("vendor,amount\nacme,10\n"), 0o600))
	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	var filename, explain string
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"POST /run": func(w http.ResponseWriter, r *http.Request) {
			f, hdr, err := r.FormFile("file")
			require.NoError(t, err)
			f.Close()
			filename = hdr.Filename
			explain = r.FormValue("explain")
			_, _ = io.WriteString(w, `{"ok":true,"runId":"r_file"}`)
		},
	})

	out, err := executeCommand(t, "", "runs", "create", "--file", path, "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "created run r_file")
	assert.Equal(t, "ledger.csv", filename)
	assert.Equal(t, "false", explain)

	_, err = executeCommand(t, "", "runs", "create", "--file", empty, "--base-url", srv.URL)
	assert.ErrorIs(t, err, dashboard.ErrEmptyFile)

	_, err = executeCommand(t, "", "runs", "create", "--base-url", srv.URL)
	assert.Error(t, err)
}

func TestRunsExport(t *testing.T) {
	srv := fakeAPI(t, map[string]http.HandlerFunc{
		"GET /runs/r1/export.csv": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			_, _ = io.WriteString(w, "index,type,reason\n0,dup,twice\n")
		},
	})
	dir := filepath.Join(t.TempDir(), "exports")

	out, err := executeCommand(t, "", "runs", "export", "r1", "--out", dir, "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "run-r1.csv")

	data, err := os.ReadFile(filepath.Join(dir, "run-r1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "index,type,reason\n0,dup,twice\n", string(data))

	_, err = executeCommand(t, "", "runs", "export", "ghost", "--out", dir, "--base-url", srv.URL)
	assert.ErrorIs(t, err, run.ErrNotFound)
	_, statErr := os.Stat(filepath.Join(dir, "run-ghost.csv"))
	assert.True(t, os.IsNotExist(statErr))
}
