package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/amishk599/jobfit/internal/abort"
	"github.com/amishk599/jobfit/internal/client"
	"github.com/amishk599/jobfit/internal/model"
	"github.com/amishk599/jobfit/internal/store"
)

const initrodePosting = `Initrode needs a Staff Platform Engineer.`

// analyzeByCompany answers Initech and Initrode postings with distinct jobs.
func analyzeByCompany(_ *abort.Token, req client.AnalyzeRequest) (*client.AnalyzeResult, error) {
	if strings.Contains(req.JobPostingText, "Initrode") {
		return &client.AnalyzeResult{JobID: "Staff Platform Engineer @ Initrode", CompanyName: "Initrode", JobAnalysis: "Decent match."}, nil
	}
	return &client.AnalyzeResult{JobID: "Senior Go Developer @ Initech", CompanyName: "Initech", JobAnalysis: "Strong match."}, nil
}

func TestFailedRetryThenNewJobKeepsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.analyze = analyzeByCompany

	if err := f.s.Analyze(ctx, initechPosting); err != nil {
		t.Fatalf("Analyze Initech: %v", err)
	}

	f.backend.analyze = func(*abort.Token, client.AnalyzeRequest) (*client.AnalyzeResult, error) {
		return nil, model.NetworkError("Failed to call /analyze-job-posting", errors.New("HTTP 500"))
	}
	if err := f.s.Retry(ctx, "more detail"); err == nil {
		t.Fatal("expected the retry to fail")
	}

	f.backend.analyze = analyzeByCompany
	if err := f.s.Analyze(ctx, initrodePosting); err != nil {
		t.Fatalf("Analyze Initrode: %v", err)
	}
	if d := f.s.machine.Depth(); d != 2 {
		t.Errorf("history depth = %d, want 2", d)
	}

	if err := f.s.GoBack(ctx); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	v := f.s.View()
	if v.State != model.ViewAnalysis || v.JobID != "Senior Go Developer @ Initech" {
		t.Errorf("back from Initrode went to %s/%q, want the Initech analysis", v.State, v.JobID)
	}
}

func TestFailedAnalysisEntryIsReplacedByResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.analyze = func(*abort.Token, client.AnalyzeRequest) (*client.AnalyzeResult, error) {
		return nil, model.NetworkError("Failed to call /analyze-job-posting", errors.New("HTTP 500"))
	}
	if err := f.s.Analyze(ctx, initechPosting); err == nil {
		t.Fatal("expected failure")
	}

	f.backend.analyze = analyzeByCompany
	if err := f.s.Analyze(ctx, initrodePosting); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if d := f.s.machine.Depth(); d != 1 {
		t.Errorf("history depth = %d, want 1", d)
	}
	if err := f.s.GoBack(ctx); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	if v := f.s.View(); v.State != model.ViewInstructions {
		t.Errorf("back went to %s, want instructions", v.State)
	}
}

func TestResumeReplacedMakesCachedJobMissAgain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.s.Analyze(ctx, initechPosting); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	replacement := `{"name":"Grace Hopper"}`
	if err := f.s.SaveSettings(ctx, Settings{ResumeJSON: &replacement}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if err := f.s.Analyze(ctx, initechPosting); err != nil {
		t.Fatalf("Analyze after résumé change: %v", err)
	}
	if n := f.backend.count("analyze"); n != 2 {
		t.Errorf("backend called %d times, want 2", n)
	}

	if err := f.s.ImportResume(ctx, "resume.txt", []byte("Grace Hopper\nCompiler engineer"), ""); err != nil {
		t.Fatalf("ImportResume: %v", err)
	}
	if err := f.s.Analyze(ctx, initechPosting); err != nil {
		t.Fatalf("Analyze after import: %v", err)
	}
	if n := f.backend.count("analyze"); n != 3 {
		t.Errorf("backend called %d times, want 3", n)
	}
}

// brokenUpdateStore fails every job cache update.
type brokenUpdateStore struct {
	*store.MemoryStore
}

func (s brokenUpdateStore) UpdateJobCache(context.Context, string, func(*model.JobPostingCacheRecord)) (*model.UserRelevantData, error) {
	return nil, model.StorageError("updating job", errors.New("disk full"))
}

func TestCommitStorageFailureShowsRetryableError(t *testing.T) {
	f := newFixture(t)
	s := New(Options{Store: brokenUpdateStore{f.store}, Backend: f.backend, Logger: discardLogger()})
	ctx := context.Background()

	err := s.Analyze(ctx, initechPosting)
	if !model.IsKind(err, model.KindStorage) {
		t.Fatalf("error = %v, want storage error", err)
	}
	v := s.View()
	if v.State != model.ViewAnalysis || v.Err == nil || !v.CanRetry {
		t.Errorf("view = %+v, want retryable error presentation", v)
	}
	if v.Content != "" || v.JobID != "" {
		t.Errorf("view shows a result: job=%q content=%q", v.JobID, v.Content)
	}
	if n := f.data(t).JobPostingCache.Len(); n != 0 {
		t.Errorf("job cache has %d records, want 0", n)
	}
}

func TestPublishDropsStaleViews(t *testing.T) {
	f := newFixture(t)
	var got []model.ViewState
	ls := []func(model.View){func(v model.View) { got = append(got, v.State) }}

	f.s.publish(ls, model.View{State: model.ViewCoverLetter}, 2)
	f.s.publish(ls, model.View{State: model.ViewAnalysis}, 1)

	if len(got) != 1 || got[0] != model.ViewCoverLetter {
		t.Errorf("published = %v, want only the newer view", got)
	}
}
