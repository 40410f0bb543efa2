package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
	"github.com/kieranyoussef/finops-watchtower/internal/obs"
)

const maxUploadBytes = 32 << 20

// Server renders the dashboard pages on top of a run.Repo.
type Server struct {
	log      *zap.Logger
	repo     run.Repo
	sessions *Store
	creator  *Creator
	exporter *Exporter
}

func NewServer(log *zap.Logger, repo run.Repo, sessions *Store) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "dashboard.http"))
	return &Server{
		log:      log,
		repo:     repo,
		sessions: sessions,
		creator:  NewCreator(repo).WithLogger(log),
		exporter: NewExporter(repo).WithLogger(log),
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, obs.InstrumentHTTP(route, h))
	}

	handle("GET /{$}", "index", s.index)
	handle("GET /runs", "list", s.listRuns)
	handle("POST /runs/file", "create_file", s.createFromFile)
	handle("POST /runs/json", "create_json", s.createFromJSON)
	handle("GET /runs/{$}", "detail", s.runDetail)
	handle("GET /runs/{id}", "detail", s.runDetail)
	handle("GET /runs/{id}/export.csv", "export", s.exportRun)

	mux.Handle("GET /metrics", obs.MetricsHandler())
	mux.HandleFunc("GET /healthz", obs.HealthHandler(nil))
	return mux
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/runs", http.StatusFound)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	log := obs.RequestLogger(r, s.log)
	sess := s.sessions.Get(w, r)
	notice := TakeFlash(w, r)

	sess.Lock()
	var err error
	if r.URL.Query().Get("more") == "1" {
		err = sess.Pager.LoadMore(r.Context())
	} else {
		err = sess.Pager.LoadFirst(r.Context())
	}
	state := sess.Pager.State()
	draft := sess.Draft
	sess.Unlock()

	if err != nil && !errors.Is(err, ErrNoMorePages) {
		log.Warn("list runs", zap.Error(err))
	}

	status := http.StatusOK
	if state.Status == StatusError && !state.Loaded() {
		status = http.StatusBadGateway
	}
	s.renderList(w, status, notice, state, draft, "")
}

func (s *Server) renderList(w http.ResponseWriter, status int, n Notice, state ListState, d Draft, formErr string) {
	render(w, s.log, listTmpl, status, listPage{
		Notice:    n,
		List:      state,
		Runs:      state.Runs(),
		Draft:     d,
		FormError: formErr,
	})
}

// formFailed re-renders the list with the draft intact and the pages already
// loaded. Nothing is refetched.
func (s *Server) formFailed(w http.ResponseWriter, sess *Session, err error) {
	sess.Lock()
	state := sess.Pager.State()
	draft := sess.Draft
	sess.Unlock()

	s.renderList(w, formStatus(err), Notice{}, state, draft, ErrorNotice(err).Message)
}

// errBadUpload marks a multipart body that could not be read.
var errBadUpload = errors.New("read upload")

func formStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, ErrSubmitInFlight):
		return http.StatusConflict
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadUpload):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoFile), errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrEmptyJSON), errors.Is(err, ErrInvalidJSON), errors.Is(err, ErrNotArray):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// beginSubmit marks the session's form as in flight. update edits the draft
// under the same lock.
func beginSubmit(sess *Session, update func(*Draft)) error {
	sess.Lock()
	defer sess.Unlock()
	update(&sess.Draft)
	if sess.Draft.Submitting {
		return ErrSubmitInFlight
	}
	sess.Draft.Submitting = true
	return nil
}

func endSubmit(sess *Session, ok bool) {
	sess.Lock()
	defer sess.Unlock()
	sess.Draft.Submitting = false
	if ok {
		sess.Draft = Draft{}
	}
}

func (s *Server) created(w http.ResponseWriter, r *http.Request, id string) {
	SetFlash(w, SuccessNotice("Run "+id+" created"))
	http.Redirect(w, r, "/runs/"+url.PathEscape(id), http.StatusSeeOther)
}

func (s *Server) createFromFile(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, hdr, ferr := r.FormFile("file")
	explain := parseExplain(r.FormValue("explain"))
	if err := beginSubmit(sess, func(d *Draft) { d.Explain = explain }); err != nil {
		if file != nil {
			_ = file.Close()
		}
		s.formFailed(w, sess, err)
		return
	}

	id, err := func() (string, error) {
		if ferr != nil {
			if errors.Is(ferr, http.ErrMissingFile) {
				return "", ErrNoFile
			}
			return "", fmt.Errorf("%w: %w", errBadUpload, ferr)
		}
		defer file.Close()
		sess.Lock()
		sess.Draft.Filename = hdr.Filename
		sess.Unlock()
		return s.creator.SubmitFile(r.Context(), hdr.Filename, hdr.Size, file, explain)
	}()
	endSubmit(sess, err == nil)
	if err != nil {
		s.formFailed(w, sess, err)
		return
	}
	s.created(w, r, id)
}

func (s *Server) createFromJSON(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(w, r)
	text := r.PostFormValue("rows")
	explain := parseExplain(r.PostFormValue("explain"))

	if err := beginSubmit(sess, func(d *Draft) {
		d.JSONText = text
		d.Explain = explain
	}); err != nil {
		s.formFailed(w, sess, err)
		return
	}

	id, err := s.creator.SubmitJSON(r.Context(), text, explain)
	endSubmit(sess, err == nil)
	if err != nil {
		s.formFailed(w, sess, err)
		return
	}
	s.created(w, r, id)
}

func (s *Server) runDetail(w http.ResponseWriter, r *http.Request) {
	notice := TakeFlash(w, r)
	st := LoadDetail(r.Context(), s.repo, r.PathValue("id"))
	if st.Err != nil {
		obs.RequestLogger(r, s.log).Warn("get run", zap.String("run_id", st.ID), zap.Error(st.Err))
	}
	render(w, s.log, detailTmpl, detailStatus(st), detailPage{Notice: notice, Detail: st})
}

func detailStatus(st DetailState) int {
	switch {
	case st.Err == nil:
		return http.StatusOK
	case errors.Is(st.Err, run.ErrNoRunID):
		return http.StatusBadRequest
	case errors.Is(st.Err, run.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) exportRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	saver := &AttachmentSaver{W: w}
	notice := s.exporter.Export(r.Context(), id, saver)
	if saver.Written() {
		return
	}

	back := "/runs/" + url.PathEscape(id)
	if r.URL.Query().Get("from") == "list" {
		back = "/runs"
	}
	SetFlash(w, notice)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func parseExplain(v string) bool {
	switch v {
	case "true", "on", "1":
		return true
	}
	return false
}
