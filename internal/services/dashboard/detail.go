package dashboard

import (
	"context"
	"strings"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
)

type RunGetter interface {
	GetRun(ctx context.Context, id string) (*run.Run, error)
}

// DetailState is the loading -> success | error lifecycle of one run fetch.
type DetailState struct {
	ID     string
	Status Status
	Run    *run.Run
	Err    error
}

// ShowExplanation gates the explanation panel.
func (d DetailState) ShowExplanation() bool {
	return d.Status == StatusSuccess && d.Run.HasExplanation()
}

func (d DetailState) Findings() []FindingRow {
	if d.Run == nil {
		return nil
	}
	return FindingRows(d.Run.Findings)
}

// LoadDetail fetches the run named by id. An empty id fails without a
// request being made.
func LoadDetail(ctx context.Context, g RunGetter, id string) DetailState {
	id = strings.TrimSpace(id)
	st := DetailState{ID: id, Status: StatusLoading}
	if id == "" {
		st.Status, st.Err = StatusError, run.ErrNoRunID
		return st
	}

	r, err := g.GetRun(ctx, id)
	switch {
	case err != nil:
		st.Status, st.Err = StatusError, err
	case r == nil:
		st.Status, st.Err = StatusError, run.ErrNotFound
	default:
		st.Status, st.Run = StatusSuccess, r
	}
	return st
}
