// Package session is the orchestration core. A Session owns the navigation
// state machine and the live cancellation token, and turns user actions into
// cache lookups, backend calls, store writes and view transitions.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/amishk599/jobfit/internal/abort"
	"github.com/amishk599/jobfit/internal/client"
	"github.com/amishk599/jobfit/internal/extract"
	"github.com/amishk599/jobfit/internal/model"
	"github.com/amishk599/jobfit/internal/state"
)

// Backend is the remote job-assistant service. *client.Client implements it.
type Backend interface {
	GetResumeJSON(tok *abort.Token, creds client.Credentials, resumeContent string) (*client.ResumeResult, error)
	GenerateSearchQuery(tok *abort.Token, creds client.Credentials, resumeJSON string) (string, error)
	AnalyzeJobPosting(tok *abort.Token, creds client.Credentials, req client.AnalyzeRequest) (*client.AnalyzeResult, error)
	GenerateCoverLetter(tok *abort.Token, creds client.Credentials, req client.CoverLetterRequest) (string, error)
	TailorResume(tok *abort.Token, creds client.Credentials, req client.TailorRequest) (*client.TailorResult, error)
}

var _ Backend = (*client.Client)(nil)

// Downloader saves a generated document and returns where it went.
type Downloader interface {
	Save(filename string, data []byte) (string, error)
}

// Progress is told when an operation starts and stops. Stop may arrive for an
// operation that has already been superseded; opID tells them apart.
type Progress interface {
	Start(op model.ViewState, opID string)
	Stop(opID string)
}

// Extractor turns an uploaded résumé file into plain text.
type Extractor func(ctx context.Context, fileName string, data []byte) (string, error)

// ErrNothingToRetry is returned by Retry when the current screen has no
// result and no failed operation.
var ErrNothingToRetry = errors.New("nothing to retry on this screen")

// Options configures a Session. Store and Backend are required.
type Options struct {
	Store      model.CacheStore
	Backend    Backend
	Downloader Downloader
	Progress   Progress
	Extract    Extractor
	Logger     *slog.Logger
}

// retryContext holds what is needed to repeat an operation.
type retryContext struct {
	state    model.ViewState
	jobID    string
	input    string // job posting text, analysis only
	previous string // previous output, retry with feedback only
	feedback string
}

// Session is safe for concurrent use. At most one of Analyze,
// GenerateCoverLetter, TailorResume and ImportResume is live at a time;
// starting one aborts the other.
type Session struct {
	store      model.CacheStore
	backend    Backend
	downloader Downloader
	progress   Progress
	extract    Extractor
	logger     *slog.Logger

	mu           sync.Mutex
	machine      *state.Machine
	active       *abort.Token
	failed       *retryContext
	errorPushed  bool // failed's error screen was pushed onto the history
	seq          uint64
	view         model.View
	listeners    map[int]func(model.View)
	nextListener int

	publishMu sync.Mutex
	published uint64 // seq of the last view handed to listeners
}

// New creates a Session showing the instructions screen.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ext := opts.Extract
	if ext == nil {
		ext = extract.Text
	}
	return &Session{
		store:      opts.Store,
		backend:    opts.Backend,
		downloader: opts.Downloader,
		progress:   opts.Progress,
		extract:    ext,
		logger:     logger,
		machine:    state.NewMachine(),
		view:       model.View{State: model.ViewInstructions},
		listeners:  make(map[int]func(model.View)),
	}
}

// Subscribe registers fn to receive every view published after a
// transition. The returned func removes it.
func (s *Session) Subscribe(fn func(model.View)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// View returns the current view.
func (s *Session) View() model.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Refresh re-derives the current view from the store and publishes it.
func (s *Session) Refresh(ctx context.Context) error {
	data, err := s.store.GetUserData(ctx)
	if err != nil {
		return err
	}
	s.update(func() {
		s.view = s.projectLocked(data)
	})
	return nil
}

// Abort cancels the live operation, if any. The screen does not change.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.logger.Info("operation aborted", "op_id", s.active.ID())
		s.active.Abort()
		s.active = nil
	}
}

// GoBack aborts the live operation and returns to the previous screen, or to
// instructions when there is no history.
func (s *Session) GoBack(ctx context.Context) error {
	data, err := s.store.GetUserData(ctx)
	if err != nil {
		return err
	}
	s.update(func() {
		s.abortLocked()
		s.failed = nil
		if _, ok := s.machine.Back(); !ok {
			s.machine.Set(model.ViewInstructions, true, "")
		}
		s.view = s.projectLocked(data)
	})
	return nil
}

// ShowJob opens the cached analysis of jobID.
func (s *Session) ShowJob(ctx context.Context, jobID string) error {
	data, err := s.store.GetUserData(ctx)
	if err != nil {
		return err
	}
	if data.JobPostingCache.Get(jobID) == nil {
		return model.InvalidInputError("No analyzed job posting found for "+jobID, nil)
	}
	s.update(func() {
		s.abortLocked()
		s.failed = nil
		s.machine.Set(model.ViewAnalysis, false, jobID)
		s.view = s.projectLocked(data)
	})
	return nil
}

// JobSummary describes one cached job.
type JobSummary struct {
	ID             string
	CompanyName    string
	HasAnalysis    bool
	HasCoverLetter bool
	HasResume      bool
}

// Jobs lists cached jobs in the order they were first analyzed.
func (s *Session) Jobs(ctx context.Context) ([]JobSummary, error) {
	data, err := s.store.GetUserData(ctx)
	if err != nil {
		return nil, err
	}
	var out []JobSummary
	for _, id := range data.JobPostingCache.IDs() {
		rec := data.JobPostingCache.Get(id)
		out = append(out, JobSummary{
			ID:             id,
			CompanyName:    rec.CompanyName,
			HasAnalysis:    rec.Analysis != "",
			HasCoverLetter: rec.CoverLetter != nil,
			HasResume:      rec.TailoredResume != nil,
		})
	}
	return out, nil
}

// ResetJobs clears every cached job and starts navigation over.
func (s *Session) ResetJobs(ctx context.Context) error {
	var err error
	s.update(func() {
		s.abortLocked()
		if err = s.store.ResetJobCache(ctx); err != nil {
			return
		}
		s.resetNavigationLocked(ctx)
	})
	return err
}

// begin aborts the live operation and installs a fresh token for op.
func (s *Session) begin(ctx context.Context, op model.ViewState) *abort.Token {
	tok := abort.New(ctx)
	s.mu.Lock()
	s.abortLocked()
	s.active = tok
	s.mu.Unlock()

	s.logger.Debug("operation started", "op", op, "op_id", tok.ID())
	if s.progress != nil {
		s.progress.Start(op, tok.ID())
	}
	return tok
}

// finish stops progress and clears tok if it is still the live token.
func (s *Session) finish(tok *abort.Token) {
	if s.progress != nil {
		s.progress.Stop(tok.ID())
	}
	s.mu.Lock()
	if s.active == tok {
		s.active = nil
	}
	s.mu.Unlock()
	tok.Abort()
}

func (s *Session) abortLocked() {
	if s.active != nil {
		s.active.Abort()
		s.active = nil
	}
}

// commit runs fn under the session lock unless tok has been aborted, then
// publishes the resulting view.
func (s *Session) commit(tok *abort.Token, fn func() error) error {
	s.mu.Lock()
	if tok.Aborted() {
		s.mu.Unlock()
		return abort.ErrAborted
	}
	err := fn()
	v, ls, seq := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(ls, v, seq)
	return err
}

// update runs fn under the session lock and publishes the resulting view.
func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	v, ls, seq := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(ls, v, seq)
}

// snapshotLocked captures the view to publish and numbers it.
func (s *Session) snapshotLocked() (model.View, []func(model.View), uint64) {
	s.seq++
	ls := make([]func(model.View), 0, len(s.listeners))
	for _, fn := range s.listeners {
		ls = append(ls, fn)
	}
	return s.view, ls, s.seq
}

// publish hands v to listeners unless a later view has already been
// published, so listeners never end on a stale view. Listeners must not
// start session operations synchronously.
func (s *Session) publish(ls []func(model.View), v model.View, seq uint64) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if seq <= s.published {
		return
	}
	s.published = seq
	for _, fn := range ls {
		fn(v)
	}
}

// resetNavigationLocked drops the history after the job cache was cleared.
func (s *Session) resetNavigationLocked(ctx context.Context) {
	s.machine = state.NewMachine()
	s.failed = nil
	data, err := s.store.GetUserData(ctx)
	if err != nil {
		s.view = model.View{State: model.ViewInstructions, Err: err}
		return
	}
	s.view = s.projectLocked(data)
}

func (s *Session) projectLocked(data *model.UserRelevantData) model.View {
	return project(s.machine.Current(), data, s.machine.Depth() > 0)
}
