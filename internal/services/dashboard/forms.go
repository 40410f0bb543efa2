package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
)

var (
	ErrNoFile      = errors.New("choose a file to upload")
	ErrEmptyFile   = errors.New("the selected file is empty")
	ErrEmptyJSON   = errors.New("paste a JSON array of rows")
	ErrInvalidJSON = errors.New("invalid JSON")
	ErrNotArray    = errors.New("JSON must be an array of rows")

	ErrSubmitInFlight = errors.New("a submission is already in progress")
)

// Draft is the create-run form as the user left it.
type Draft struct {
	JSONText   string
	Explain    bool
	Filename   string
	Submitting bool
}

// ParseRows validates pasted text as a JSON array of rows.
func ParseRows(text string) ([]run.Value, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyJSON
	}
	v, err := run.ParseValue([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if !v.IsArray() {
		return nil, ErrNotArray
	}
	rows := v.Items()
	if rows == nil {
		rows = []run.Value{}
	}
	return rows, nil
}

type RunCreator interface {
	CreateRunFromRows(ctx context.Context, rows []run.Value, explain bool) (string, error)
	CreateRunFromFile(ctx context.Context, filename string, r io.Reader, explain bool) (string, error)
}

// Creator runs the two create-run workflows. Validation happens before
// anything is sent to the backend.
type Creator struct {
	repo RunCreator
	log  *zap.Logger
}

func NewCreator(repo RunCreator) *Creator {
	return &Creator{repo: repo, log: zap.L().With(zap.String("component", "dashboard.creator"))}
}

func (c *Creator) WithLogger(l *zap.Logger) *Creator {
	if l == nil {
		return c
	}
	cp := *c
	cp.log = l.With(zap.String("component", "dashboard.creator"))
	return &cp
}

func (c *Creator) SubmitJSON(ctx context.Context, text string, explain bool) (string, error) {
	rows, err := ParseRows(text)
	if err != nil {
		return "", err
	}
	id, err := c.repo.CreateRunFromRows(ctx, rows, explain)
	if err != nil {
		c.log.Warn("create run from rows", zap.Int("rows", len(rows)), zap.Error(err))
		return "", err
	}
	c.log.Info("run created", zap.String("run_id", id), zap.String("via", "json"), zap.Int("rows", len(rows)))
	return id, nil
}

// SubmitFile uploads r. size is the upload's length when known, or -1.
func (c *Creator) SubmitFile(ctx context.Context, filename string, size int64, r io.Reader, explain bool) (string, error) {
	if r == nil || strings.TrimSpace(filename) == "" {
		return "", ErrNoFile
	}
	if size == 0 {
		return "", ErrEmptyFile
	}
	id, err := c.repo.CreateRunFromFile(ctx, filename, r, explain)
	if err != nil {
		c.log.Warn("create run from file", zap.String("file", filename), zap.Error(err))
		return "", err
	}
	c.log.Info("run created", zap.String("run_id", id), zap.String("via", "file"), zap.String("file", filename))
	return id, nil
}
