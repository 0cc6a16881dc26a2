package session

import (
	"context"
	"errors"
	"strings"

	"github.com/amishk599/jobfit/internal/abort"
	"github.com/amishk599/jobfit/internal/client"
	"github.com/amishk599/jobfit/internal/model"
	"github.com/amishk599/jobfit/internal/resolver"
)

// Analyze analyzes a job posting against the résumé. A posting that resolves
// to a cached analysis is shown without a network call.
func (s *Session) Analyze(ctx context.Context, text string) error {
	return s.analyze(ctx, retryContext{state: model.ViewAnalysis, input: text}, true)
}

// GenerateCoverLetter drafts, or shows the cached, cover letter for jobID.
func (s *Session) GenerateCoverLetter(ctx context.Context, jobID string) error {
	return s.coverLetter(ctx, retryContext{state: model.ViewCoverLetter, jobID: jobID}, true)
}

// TailorResume renders, or shows the cached, tailored résumé for jobID.
func (s *Session) TailorResume(ctx context.Context, jobID string) error {
	return s.tailorResume(ctx, retryContext{state: model.ViewResumePreview, jobID: jobID}, true)
}

// Retry repeats the operation behind the current screen and never consults
// the cache. From an error screen it re-runs the failed inputs; a non-empty
// feedback replaces the feedback they carried. From a result screen it
// re-runs the operation with the shown output and feedback.
func (s *Session) Retry(ctx context.Context, feedback string) error {
	feedback = strings.TrimSpace(feedback)

	s.mu.Lock()
	failed := s.failed
	entry := s.machine.Current()
	s.mu.Unlock()

	var rc retryContext
	if failed != nil {
		rc = *failed
		if feedback != "" {
			rc.feedback = feedback
		}
	} else {
		if entry.State == model.ViewInstructions {
			return ErrNothingToRetry
		}
		data, err := s.store.GetUserData(ctx)
		if err != nil {
			return err
		}
		rec := data.JobPostingCache.Get(entry.JobID)
		if rec == nil {
			return ErrNothingToRetry
		}
		rc = retryContext{state: entry.State, jobID: entry.JobID, feedback: feedback}
		switch entry.State {
		case model.ViewAnalysis:
			rc.input = rec.JobPostingText
			rc.previous = rec.Analysis
		case model.ViewCoverLetter:
			if rec.CoverLetter != nil {
				rc.previous = rec.CoverLetter.Content
			}
		case model.ViewResumePreview:
			if rec.TailoredResume != nil {
				rc.previous = rec.TailoredResume.ResumeJSON
			}
		}
	}

	switch rc.state {
	case model.ViewAnalysis:
		return s.analyze(ctx, rc, false)
	case model.ViewCoverLetter:
		return s.coverLetter(ctx, rc, false)
	case model.ViewResumePreview:
		return s.tailorResume(ctx, rc, false)
	}
	return ErrNothingToRetry
}

func (s *Session) analyze(ctx context.Context, rc retryContext, useCache bool) error {
	tok := s.begin(ctx, model.ViewAnalysis)
	defer s.finish(tok)

	text := strings.TrimSpace(rc.input)
	if text == "" {
		return model.EmptyInputError("Select or paste a job posting to analyze.")
	}
	rc.input = text

	data, err := s.store.GetUserData(tok.Context())
	if err != nil {
		return s.fail(tok, rc, err)
	}
	if !data.HasResume() {
		return s.settingsIncomplete(tok, data)
	}

	if useCache {
		if id, rec, ok := resolver.Resolve(data.JobPostingCache, text); ok && rec.Analysis != "" {
			s.logger.Info("analysis served from cache", "job_id", id, "op_id", tok.ID())
			return s.show(tok, model.ViewAnalysis, id, data)
		}
	}

	res, err := s.backend.AnalyzeJobPosting(tok, client.CredentialsFrom(data), client.AnalyzeRequest{
		JobPostingText:     text,
		ResumeJSON:         string(data.ResumeJSON),
		JobSpecificContext: rc.feedback,
		PreviousAnalysis:   rc.previous,
	})
	if err != nil {
		return s.fail(tok, rc, err)
	}

	s.logger.Info("job analyzed", "job_id", res.JobID, "op_id", tok.ID())
	return s.commitJob(tok, rc, res.JobID, func(r *model.JobPostingCacheRecord) {
		r.JobPostingText = text
		r.CompanyName = res.CompanyName
		r.Analysis = res.JobAnalysis
		if rc.feedback != "" {
			r.JobSpecificContext = rc.feedback
		}
		r.SetFeedback(model.ViewAnalysis, rc.feedback)
	})
}

func (s *Session) coverLetter(ctx context.Context, rc retryContext, useCache bool) error {
	tok := s.begin(ctx, model.ViewCoverLetter)
	defer s.finish(tok)

	data, rec, err := s.loadJob(tok, rc)
	if err != nil || rec == nil {
		return err
	}
	if useCache && rec.CoverLetter != nil {
		return s.show(tok, model.ViewCoverLetter, rc.jobID, data)
	}

	content, err := s.backend.GenerateCoverLetter(tok, client.CredentialsFrom(data), client.CoverLetterRequest{
		JobPostingText:     rec.JobPostingText,
		JobSpecificContext: rec.JobSpecificContext,
		ResumeJSON:         string(data.ResumeJSON),
		CurrentContent:     rc.previous,
		RetryFeedback:      rc.feedback,
	})
	if err != nil {
		return s.fail(tok, rc, err)
	}

	filename := documentFilename(data.ResumeJSON, rc.jobID, rec, "Cover_Letter", ".txt")
	s.logger.Info("cover letter generated", "job_id", rc.jobID, "op_id", tok.ID())
	return s.commitJob(tok, rc, rc.jobID, func(r *model.JobPostingCacheRecord) {
		r.CoverLetter = &model.CoverLetter{Filename: filename, Content: content}
		r.SetFeedback(model.ViewCoverLetter, rc.feedback)
	})
}

func (s *Session) tailorResume(ctx context.Context, rc retryContext, useCache bool) error {
	tok := s.begin(ctx, model.ViewResumePreview)
	defer s.finish(tok)

	data, rec, err := s.loadJob(tok, rc)
	if err != nil || rec == nil {
		return err
	}
	if useCache && rec.TailoredResume != nil {
		return s.show(tok, model.ViewResumePreview, rc.jobID, data)
	}

	filename := documentFilename(data.ResumeJSON, rc.jobID, rec, "Resume", ".pdf")
	res, err := s.backend.TailorResume(tok, client.CredentialsFrom(data), client.TailorRequest{
		JobPostingText:    rec.JobPostingText,
		ResumeJSON:        string(data.ResumeJSON),
		Theme:             data.Theme,
		Filename:          filename,
		CurrentResumeData: rc.previous,
		RetryFeedback:     rc.feedback,
	})
	if err != nil {
		return s.fail(tok, rc, err)
	}

	s.logger.Info("résumé tailored", "job_id", rc.jobID, "pdf_bytes", len(res.PDF), "op_id", tok.ID())
	return s.commitJob(tok, rc, rc.jobID, func(r *model.JobPostingCacheRecord) {
		r.TailoredResume = &model.TailoredResume{
			Filename:   filename,
			PDFBase64:  res.PDFBase64,
			ResumeJSON: res.ResumeJSON,
		}
		r.SetFeedback(model.ViewResumePreview, rc.feedback)
	})
}

// loadJob validates a job-scoped operation. A nil record with a nil error
// means the operation was aborted.
func (s *Session) loadJob(tok *abort.Token, rc retryContext) (*model.UserRelevantData, *model.JobPostingCacheRecord, error) {
	if strings.TrimSpace(rc.jobID) == "" {
		return nil, nil, model.EmptyInputError("No job selected. Analyze a job posting first.")
	}
	data, err := s.store.GetUserData(tok.Context())
	if err != nil {
		return nil, nil, s.fail(tok, rc, err)
	}
	if !data.HasResume() {
		return nil, nil, s.settingsIncomplete(tok, data)
	}
	rec := data.JobPostingCache.Get(rc.jobID)
	if rec == nil {
		return nil, nil, model.InvalidInputError("No analyzed job posting found for "+rc.jobID, nil)
	}
	return data, rec, nil
}

// show transitions to a cached result.
func (s *Session) show(tok *abort.Token, st model.ViewState, jobID string, data *model.UserRelevantData) error {
	err := s.commit(tok, func() error {
		s.enterLocked(st, jobID)
		s.view = s.projectLocked(data)
		return nil
	})
	if errors.Is(err, abort.ErrAborted) {
		return nil
	}
	return err
}

// commitJob writes a successful result and transitions to it. Nothing is
// written or shown if tok was aborted.
func (s *Session) commitJob(tok *abort.Token, rc retryContext, jobID string, mutate func(*model.JobPostingCacheRecord)) error {
	err := s.commit(tok, func() error {
		data, err := s.store.UpdateJobCache(context.WithoutCancel(tok.Context()), jobID, mutate)
		if err != nil {
			s.failLocked(rc, err)
			return err
		}
		s.enterLocked(rc.state, jobID)
		s.view = s.projectLocked(data)
		return nil
	})
	if errors.Is(err, abort.ErrAborted) {
		return nil
	}
	return err
}

// enterLocked moves to a result screen. An error screen that the failed
// operation pushed is replaced rather than kept in the history.
func (s *Session) enterLocked(st model.ViewState, jobID string) {
	replace := s.failed != nil && s.errorPushed &&
		s.machine.Current() == model.NavigationEntry{State: st, JobID: s.failed.jobID}
	s.failed = nil
	s.errorPushed = false
	s.machine.Set(st, replace, jobID)
}

// fail moves to the error presentation of rc's screen. Aborted operations
// return nil and change nothing.
func (s *Session) fail(tok *abort.Token, rc retryContext, err error) error {
	if errors.Is(err, abort.ErrAborted) || tok.Aborted() {
		return nil
	}
	s.logger.Error("operation failed", "op", rc.state, "job_id", rc.jobID, "op_id", tok.ID(), "error", err)
	cerr := s.commit(tok, func() error {
		s.failLocked(rc, err)
		return nil
	})
	if errors.Is(cerr, abort.ErrAborted) {
		return nil
	}
	return err
}

func (s *Session) failLocked(rc retryContext, err error) {
	before := s.machine.Depth()
	s.machine.Set(rc.state, false, rc.jobID)
	s.failed = &rc
	// Only an error entry pushed by this failure may be replaced later; a
	// failed retry leaves the result screen it ran from in place.
	s.errorPushed = s.machine.Depth() > before
	s.view = model.View{
		State:     rc.state,
		JobID:     rc.jobID,
		Feedback:  rc.feedback,
		Err:       err,
		CanRetry:  true,
		CanGoBack: true,
	}
}

func (s *Session) settingsIncomplete(tok *abort.Token, data *model.UserRelevantData) error {
	err := s.commit(tok, func() error {
		s.failed = nil
		s.machine.Set(model.ViewInstructions, false, "")
		s.view = s.projectLocked(data)
		return nil
	})
	if errors.Is(err, abort.ErrAborted) {
		return nil
	}
	return model.SettingsIncompleteError(settingsNotice)
}
