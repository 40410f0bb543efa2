//go:build e2e

package e2e

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type cfg struct {
	DashboardBase string // http://localhost:8080
	WaitHealthy   time.Duration
}

func loadCfg() cfg {
	return cfg{
		DashboardBase: getenv("E2E_DASHBOARD_BASE", "http://localhost:8080"),
		WaitHealthy:   mustParseDur(getenv("E2E_WAIT_HEALTHY", "30s")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustParseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

// --- helpers

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func read(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func waitHealthy(t *testing.T, c cfg) {
	t.Helper()
	deadline := time.Now().Add(c.WaitHealthy)
	for time.Now().Before(deadline) {
		resp, err := http.Get(c.DashboardBase + "/healthz")
		if err == nil {
			ok := resp.StatusCode == http.StatusOK
			resp.Body.Close()
			if ok {
				return
			}
		}
		t.Log("waiting for dashboard")
		time.Sleep(time.Second)
	}
	t.Fatalf("dashboard at %s not healthy after %s", c.DashboardBase, c.WaitHealthy)
}

// --- the test

func Test_CreateRun_ShowsDetailAndExports(t *testing.T) {
	c := loadCfg()
	waitHealthy(t, c)
	b := newBrowser(t)

	resp, err := b.PostForm(c.DashboardBase+"/runs/json", url.Values{
		"rows": {`[{"vendor":"acme","amount":120.5,"invoice":"A-1"},{"vendor":"acme","amount":120.5,"invoice":"A-1"}]`},
	})
	require.NoError(t, err)
	body := read(t, resp)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode, body)

	loc := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/runs/"), loc)
	id, err := url.PathUnescape(strings.TrimPrefix(loc, "/runs/"))
	require.NoError(t, err)
	t.Logf("run created (id=%s)", id)

	resp, err = b.Get(c.DashboardBase + loc)
	require.NoError(t, err)
	body = read(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	require.Contains(t, body, id)
	require.Contains(t, body, "Findings")

	resp, err = b.Get(c.DashboardBase + loc + "/export.csv")
	require.NoError(t, err)
	csv := read(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "run-"+id+".csv")
	require.NotEmpty(t, csv)

	resp, err = b.Get(c.DashboardBase + "/runs")
	require.NoError(t, err)
	body = read(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, id)
}

func Test_InvalidRowsNeverReachBackend(t *testing.T) {
	c := loadCfg()
	waitHealthy(t, c)
	b := newBrowser(t)

	resp, err := b.PostForm(c.DashboardBase+"/runs/json", url.Values{"rows": {`{"a":1}`}})
	require.NoError(t, err)
	body := read(t, resp)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body, "JSON must be an array of rows")
}

func Test_UnknownRunExportRedirectsWithNotice(t *testing.T) {
	c := loadCfg()
	waitHealthy(t, c)
	b := newBrowser(t)

	resp, err := b.Get(c.DashboardBase + "/runs/does-not-exist/export.csv?from=list")
	require.NoError(t, err)
	read(t, resp)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/runs", resp.Header.Get("Location"))

	resp, err = b.Get(c.DashboardBase + "/runs")
	require.NoError(t, err)
	require.Contains(t, read(t, resp), "Export failed")
}
