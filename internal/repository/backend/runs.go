package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
)

var _ run.Repo = (*Client)(nil)

type listResponse struct {
	envelope
	Runs       []run.Run `json:"runs"`
	NextCursor string    `json:"nextCursor"`
}

type getResponse struct {
	envelope
	Run *run.Run `json:"run"`
}

type createResponse struct {
	envelope
	RunID string `json:"runId"`
}

type createRequest struct {
	Rows    []run.Value `json:"rows"`
	Explain bool        `json:"explain"`
}

// ListRuns fetches one page of runs. Only the parameters that are set end up
// in the query string.
func (cl *Client) ListRuns(ctx context.Context, p run.ListParams) (*run.Page, error) {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Cursor != "" {
		q.Set("cursor", p.Cursor)
	}

	resp, err := cl.do(ctx, request{op: "list_runs", method: http.MethodGet, path: "/runs", query: q})
	if err != nil {
		return nil, err
	}
	var out listResponse
	if err := decode("list_runs", resp, &out); err != nil {
		return nil, err
	}
	if out.Runs == nil {
		out.Runs = []run.Run{}
	}
	return &run.Page{Runs: out.Runs, NextCursor: out.NextCursor}, nil
}

func (cl *Client) GetRun(ctx context.Context, id string) (*run.Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, run.ErrNoRunID
	}

	resp, err := cl.do(ctx, request{op: "get_run", method: http.MethodGet, path: "/runs/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	var out getResponse
	if err := decode("get_run", resp, &out); err != nil {
		return nil, err
	}
	if out.Run == nil {
		return nil, fmt.Errorf("get_run %s: %w", id, run.ErrNotFound)
	}
	return out.Run, nil
}

func (cl *Client) CreateRunFromRows(ctx context.Context, rows []run.Value, explain bool) (string, error) {
	if rows == nil {
		rows = []run.Value{}
	}
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(createRequest{Rows: rows, Explain: explain}); err != nil {
		return "", fmt.Errorf("create_run_rows: encode body: %w", err)
	}

	resp, err := cl.do(ctx, request{
		op:          "create_run_rows",
		method:      http.MethodPost,
		path:        "/run",
		body:        &body,
		contentType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return readRunID("create_run_rows", resp)
}

// CreateRunFromFile uploads r as the multipart "file" field next to the
// stringified explain flag.
func (cl *Client) CreateRunFromFile(ctx context.Context, filename string, r io.Reader, explain bool) (string, error) {
	if r == nil {
		return "", ErrNilFile
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("create_run_file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("create_run_file: read upload: %w", err)
	}
	if err := mw.WriteField("explain", strconv.FormatBool(explain)); err != nil {
		return "", fmt.Errorf("create_run_file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("create_run_file: %w", err)
	}

	resp, err := cl.do(ctx, request{
		op:          "create_run_file",
		method:      http.MethodPost,
		path:        "/run",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return "", err
	}
	return readRunID("create_run_file", resp)
}

func readRunID(op string, resp *http.Response) (string, error) {
	var out createResponse
	if err := decode(op, resp, &out); err != nil {
		return "", err
	}
	if out.RunID == "" {
		return "", fmt.Errorf("%s: %w", op, ErrMissingRunID)
	}
	return out.RunID, nil
}

func (cl *Client) DownloadRunCSV(ctx context.Context, id string) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, run.ErrNoRunID
	}

	resp, err := cl.do(ctx, request{
		op:     "export_csv",
		method: http.MethodGet,
		path:   "/runs/" + url.PathEscape(id) + "/export.csv",
		accept: "text/csv",
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("export_csv: read body: %w", err)
	}
	return data, nil
}

// ExportRunCSV downloads the run's findings and hands them to s. Nothing is
// saved when the download fails.
func (cl *Client) ExportRunCSV(ctx context.Context, id string, s run.Saver) error {
	data, err := cl.DownloadRunCSV(ctx, id)
	if err != nil {
		return err
	}
	return s.Save(ctx, data, run.ExportFilename(strings.TrimSpace(id)))
}
