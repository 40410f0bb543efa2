package run

import (
	"context"
	"io"
)

type ListParams struct {
	Limit  int
	Cursor string
}

type Repo interface {
	ListRuns(ctx context.Context, p ListParams) (*Page, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	CreateRunFromRows(ctx context.Context, rows []Value, explain bool) (string, error)
	CreateRunFromFile(ctx context.Context, filename string, r io.Reader, explain bool) (string, error)
	ExportRunCSV(ctx context.Context, id string, s Saver) error
}

// Saver stores an exported file wherever the caller's environment keeps
// downloads: an HTTP attachment, a directory, a test buffer.
type Saver interface {
	Save(ctx context.Context, data []byte, filename string) error
}
