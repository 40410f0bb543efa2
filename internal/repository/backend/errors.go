package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
)

var (
	ErrNotOK        = errors.New("backend reported failure")
	ErrMissingRunID = errors.New("backend response has no run id")
	ErrNilFile      = errors.New("no file to upload")
)

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is lets callers match a 404 against run.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == run.ErrNotFound && e.Code == http.StatusNotFound
}

const maxErrorBody = 4 << 10

func newStatusError(method, path string, resp *http.Response) *StatusError {
	status := strings.TrimSpace(resp.Status)
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	e := &StatusError{
		Method: method,
		Path:   path,
		Code:   resp.StatusCode,
		Status: status,
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Error
		if e.Message == "" {
			e.Message = payload.Message
		}
	}
	return e
}

type envelope struct {
	OK    *bool  `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (e envelope) failure() error {
	if e.OK == nil || *e.OK {
		return nil
	}
	if e.Error != "" {
		return fmt.Errorf("%w: %s", ErrNotOK, e.Error)
	}
	return ErrNotOK
}

type failureReporter interface {
	failure() error
}

func decode(op string, resp *http.Response, out failureReporter) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	if err := out.failure(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
