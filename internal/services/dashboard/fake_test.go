package dashboard

import (
	"context"
	"io"
	"sync"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
)

// fakeRepo serves pages keyed by cursor and records every call.
type fakeRepo struct {
	mu sync.Mutex

	pages   map[string]run.Page
	listErr error
	runs    map[string]*run.Run
	getErr  error
	csv     map[string][]byte

	createdID string
	createErr error

	listCalls   []run.ListParams
	getCalls    []string
	rowsCalls   [][]run.Value
	fileCalls   []string
	fileBodies  []string
	explains    []bool
	exportCalls []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pages:     map[string]run.Page{},
		runs:      map[string]*run.Run{},
		csv:       map[string][]byte{},
		createdID: "r_new",
	}
}

func (f *fakeRepo) ListRuns(_ context.Context, p run.ListParams) (*run.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, p)
	if f.listErr != nil {
		return nil, f.listErr
	}
	pg := f.pages[p.Cursor]
	return &pg, nil
}

func (f *fakeRepo) GetRun(_ context.Context, id string) (*run.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, id)
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.runs[id]
	if !ok {
		return nil, run.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) CreateRunFromRows(_ context.Context, rows []run.Value, explain bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rowsCalls = append(f.rowsCalls, rows)
	f.explains = append(f.explains, explain)
	return f.createdID, f.createErr
}

func (f *fakeRepo) CreateRunFromFile(_ context.Context, filename string, r io.Reader, explain bool) (string, error) {
	b, _ := io.ReadAll(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileCalls = append(f.fileCalls, filename)
	f.fileBodies = append(f.fileBodies, string(b))
	f.explains = append(f.explains, explain)
	return f.createdID, f.createErr
}

func (f *fakeRepo) ExportRunCSV(ctx context.Context, id string, s run.Saver) error {
	f.mu.Lock()
	f.exportCalls = append(f.exportCalls, id)
	data, ok := f.csv[id]
	f.mu.Unlock()
	if !ok {
		return run.ErrNotFound
	}
	return s.Save(ctx, data, run.ExportFilename(id))
}

type recordingSaver struct {
	calls    int
	data     []byte
	filename string
}

func (s *recordingSaver) Save(_ context.Context, data []byte, filename string) error {
	s.calls++
	s.data = data
	s.filename = filename
	return nil
}

func intPtr(n int) *int { return &n }
