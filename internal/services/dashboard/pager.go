package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
)

var (
	ErrFetchInFlight = errors.New("a page is already loading")
	ErrNoMorePages   = errors.New("no more pages")
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// ListState is the accumulated run listing: every page fetched so far, the
// state of the latest fetch and its error.
type ListState struct {
	Pages  []run.Page
	Status Status
	Err    error
}

type Action interface{ isAction() }

type (
	FetchStarted struct{}
	PageLoaded   struct{ Page run.Page }
	FetchFailed  struct{ Err error }
	Reset        struct{}
)

func (FetchStarted) isAction() {}
func (PageLoaded) isAction() {}
func (FetchFailed) isAction() {}
func (Reset) isAction() {}

// Reduce applies a to s. Failed fetches keep the pages already loaded.
func Reduce(s ListState, a Action) ListState {
	switch a := a.(type) {
	case Reset:
		return ListState{}
	case FetchStarted:
		s.Status = StatusLoading
		s.Err = nil
	case PageLoaded:
		pages := make([]run.Page, len(s.Pages), len(s.Pages)+1)
		copy(pages, s.Pages)
		s.Pages = append(pages, a.Page)
		s.Status = StatusSuccess
		s.Err = nil
	case FetchFailed:
		s.Status = StatusError
		s.Err = a.Err
	}
	return s
}

// Runs flattens the loaded pages in server order.
func (s ListState) Runs() []run.Run {
	n := 0
	for _, p := range s.Pages {
		n += len(p.Runs)
	}
	out := make([]run.Run, 0, n)
	for _, p := range s.Pages {
		out = append(out, p.Runs...)
	}
	return out
}

// NextCursor is the cursor of the most recently loaded page.
func (s ListState) NextCursor() string {
	if len(s.Pages) == 0 {
		return ""
	}
	return s.Pages[len(s.Pages)-1].NextCursor
}

// HasMore reports whether "load more" should be offered.
func (s ListState) HasMore() bool { return s.NextCursor() != "" }

func (s ListState) Loaded() bool { return len(s.Pages) > 0 }

type RunLister interface {
	ListRuns(ctx context.Context, p run.ListParams) (*run.Page, error)
}

// Pager drives ListState against the backend. Fetches are sequential: the
// next page is only requested once the previous page's cursor is known.
type Pager struct {
	lister RunLister
	limit  int

	mu    sync.Mutex
	state ListState
	gen   uint64
}

func NewPager(l RunLister, limit int) *Pager {
	return &Pager{lister: l, limit: limit}
}

func (p *Pager) State() ListState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LoadFirst drops whatever was loaded and fetches the first page. A fetch
// still in flight from before the reset is discarded when it returns.
func (p *Pager) LoadFirst(ctx context.Context) error {
	p.mu.Lock()
	p.gen++
	p.state = Reduce(Reduce(p.state, Reset{}), FetchStarted{})
	gen := p.gen
	p.mu.Unlock()

	return p.fetch(ctx, gen, "")
}

// LoadMore fetches the page after the last one loaded.
func (p *Pager) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if p.state.Status == StatusLoading {
		p.mu.Unlock()
		return ErrFetchInFlight
	}
	if !p.state.Loaded() {
		p.mu.Unlock()
		return p.LoadFirst(ctx)
	}
	cursor := p.state.NextCursor()
	if cursor == "" {
		p.mu.Unlock()
		return ErrNoMorePages
	}
	p.state = Reduce(p.state, FetchStarted{})
	gen := p.gen
	p.mu.Unlock()

	return p.fetch(ctx, gen, cursor)
}

func (p *Pager) fetch(ctx context.Context, gen uint64, cursor string) error {
	page, err := p.lister.ListRuns(ctx, run.ListParams{Limit: p.limit, Cursor: cursor})
	if err == nil && page == nil {
		page = &run.Page{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return nil
	}
	if err != nil {
		p.state = Reduce(p.state, FetchFailed{Err: err})
		return err
	}
	p.state = Reduce(p.state, PageLoaded{Page: *page})
	return nil
}
