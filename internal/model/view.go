package model

// ViewState identifies what the session is currently showing. It carries no payload.
type ViewState string

const (
	ViewInstructions  ViewState = "instructions"
	ViewAnalysis      ViewState = "analysis"
	ViewCoverLetter   ViewState = "cover-letter"
	ViewResumePreview ViewState = "resume-preview"
)

// Valid reports whether s is one of the known view states.
func (s ViewState) Valid() bool {
	switch s {
	case ViewInstructions, ViewAnalysis, ViewCoverLetter, ViewResumePreview:
		return true
	}
	return false
}

// NavigationEntry is one screen in the back history. Two entries are the same
// screen iff both State and JobID match.
type NavigationEntry struct {
	State ViewState
	JobID string // empty when the screen is not tied to a job
}

// View is what the UI shows for the current screen. The session derives it
// from the state machine and the stored document; the UI only reads it.
type View struct {
	State       ViewState
	JobID       string
	CompanyName string
	Content     string // analysis markdown, cover letter text or tailored résumé JSON
	Filename    string
	PDF         []byte
	SearchQuery string // instructions screen only
	Feedback    string // feedback that produced Content, if any
	Notice      string
	Err         error // non-nil means the screen is in error presentation
	CanRetry    bool
	CanGoBack   bool
}

// ErrorMessage returns the user-facing text of v.Err, or "" if there is none.
func (v View) ErrorMessage() string {
	if v.Err == nil {
		return ""
	}
	return UserMessage(v.Err)
}
