package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
)

type RunExporter interface {
	ExportRunCSV(ctx context.Context, id string, s run.Saver) error
}

type Exporter struct {
	repo RunExporter
	log  *zap.Logger
}

func NewExporter(repo RunExporter) *Exporter {
	return &Exporter{repo: repo, log: zap.L().With(zap.String("component", "dashboard.exporter"))}
}

func (e *Exporter) WithLogger(l *zap.Logger) *Exporter {
	if l == nil {
		return e
	}
	cp := *e
	cp.log = l.With(zap.String("component", "dashboard.exporter"))
	return &cp
}

// Export saves the run's CSV through s and reports the outcome as a notice.
func (e *Exporter) Export(ctx context.Context, id string, s run.Saver) Notice {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrorNotice(run.ErrNoRunID)
	}
	if err := e.repo.ExportRunCSV(ctx, id, s); err != nil {
		e.log.Warn("export failed", zap.String("run_id", id), zap.Error(err))
		return ErrorNotice(fmt.Errorf("export failed: %w", err))
	}
	e.log.Info("run exported", zap.String("run_id", id))
	return SuccessNotice("Exported " + run.ExportFilename(id))
}

// AttachmentSaver streams the export back to the browser as a download.
type AttachmentSaver struct {
	W       http.ResponseWriter
	written bool
}

// Written reports whether a response has been sent.
func (a *AttachmentSaver) Written() bool { return a.written }

func (a *AttachmentSaver) Save(_ context.Context, data []byte, filename string) error {
	h := a.W.Header()
	h.Set("Content-Type", "text/csv; charset=utf-8")
	h.Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	a.W.WriteHeader(http.StatusOK)
	a.written = true
	_, err := a.W.Write(data)
	return err
}
