// Package tui is the interactive terminal front end of a session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobfit/internal/model"
	"github.com/amishk599/jobfit/internal/render"
	"github.com/amishk599/jobfit/internal/session"
)

// Controller is the part of *session.Session the TUI drives.
type Controller interface {
	View() model.View
	Refresh(ctx context.Context) error
	Analyze(ctx context.Context, text string) error
	GenerateCoverLetter(ctx context.Context, jobID string) error
	TailorResume(ctx context.Context, jobID string) error
	Retry(ctx context.Context, feedback string) error
	GoBack(ctx context.Context) error
	Abort()
	Download(ctx context.Context) (string, error)
	Jobs(ctx context.Context) ([]session.JobSummary, error)
	ShowJob(ctx context.Context, jobID string) error
}

var _ Controller = (*session.Session)(nil)

type mode int

const (
	modeBrowse mode = iota
	modePaste
	modeFeedback
	modeJobs
)

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	statusErrStyle = statusBarStyle.
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1)

	jobItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	jobSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)
)

type opDoneMsg struct{ err error }

type downloadedMsg struct {
	path string
	err  error
}

type jobsMsg struct {
	jobs []session.JobSummary
	err  error
}

type tuiModel struct {
	ctx  context.Context
	ctrl Controller

	view    model.View
	mode    mode
	busy    map[string]model.ViewState
	status  string
	isError bool

	jobs      []session.JobSummary
	jobCursor int

	viewport viewport.Model
	spinner  spinner.Model
	input    textarea.Model
	ready    bool
	width    int
	height   int
}

func newModel(ctx context.Context, ctrl Controller) tuiModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	ta := textarea.New()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false

	return tuiModel{
		ctx:     ctx,
		ctrl:    ctrl,
		view:    ctrl.View(),
		busy:    make(map[string]model.ViewState),
		spinner: sp,
		input:   ta,
	}
}

func (m tuiModel) Init() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return opDoneMsg{err: ctrl.Refresh(ctx)}
	}
}

// run executes fn off the update loop. Views arrive separately through the
// Bridge; the returned error only drives the status bar.
func (m tuiModel) run(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: fn(ctx)}
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case viewMsg:
		m.view = msg.view
		m.refreshContent()
		return m, nil

	case progressMsg:
		if msg.start {
			wasIdle := len(m.busy) == 0
			m.busy[msg.opID] = msg.op
			m.setStatus("", false)
			if wasIdle {
				return m, m.spinner.Tick
			}
			return m, nil
		}
		delete(m.busy, msg.opID)
		return m, nil

	case spinner.TickMsg:
		if len(m.busy) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		m.reportErr(msg.err)
		return m, nil

	case downloadedMsg:
		if msg.err != nil {
			m.reportErr(msg.err)
		} else {
			m.setStatus("Saved "+msg.path, false)
		}
		return m, nil

	case jobsMsg:
		if msg.err != nil {
			m.reportErr(msg.err)
			return m, nil
		}
		if len(msg.jobs) == 0 {
			m.setStatus("No analyzed jobs yet.", false)
			return m, nil
		}
		m.jobs = msg.jobs
		m.jobCursor = 0
		m.mode = modeJobs
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePaste, modeFeedback:
			return m.updateInput(msg)
		case modeJobs:
			return m.updateJobs(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m tuiModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.ctrl
	jobID := m.view.JobID
	switch msg.String() {
	case "q", "ctrl+c":
		ctrl.Abort()
		return m, tea.Quit
	case "a", "p":
		return m.openInput(modePaste, "Paste the job posting, then ctrl+s to analyze")
	case "c":
		if jobID == "" {
			m.setStatus("Analyze a job posting first.", true)
			return m, nil
		}
		return m, m.run(func(ctx context.Context) error { return ctrl.GenerateCoverLetter(ctx, jobID) })
	case "t":
		if jobID == "" {
			m.setStatus("Analyze a job posting first.", true)
			return m, nil
		}
		return m, m.run(func(ctx context.Context) error { return ctrl.TailorResume(ctx, jobID) })
	case "r":
		if !m.view.CanRetry {
			m.setStatus("Nothing to retry on this screen.", true)
			return m, nil
		}
		return m.openInput(modeFeedback, "Optional feedback for the retry, then ctrl+s")
	case "b", "esc":
		return m, m.run(ctrl.GoBack)
	case "x":
		ctrl.Abort()
		m.busy = make(map[string]model.ViewState)
		m.setStatus("Cancelled.", false)
		return m, nil
	case "d":
		ctx := m.ctx
		return m, func() tea.Msg {
			path, err := ctrl.Download(ctx)
			return downloadedMsg{path: path, err: err}
		}
	case "j":
		ctx := m.ctx
		return m, func() tea.Msg {
			jobs, err := ctrl.Jobs(ctx)
			return jobsMsg{jobs: jobs, err: err}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m tuiModel) openInput(md mode, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.setStatus("", false)
	m.resize()
	cmd := m.input.Focus()
	return m, cmd
}

func (m tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		m.resize()
		return m, nil
	case "ctrl+s":
		text := m.input.Value()
		md := m.mode
		m.mode = modeBrowse
		m.input.Blur()
		m.resize()
		ctrl := m.ctrl
		if md == modePaste {
			return m, m.run(func(ctx context.Context) error { return ctrl.Analyze(ctx, text) })
		}
		return m, m.run(func(ctx context.Context) error { return ctrl.Retry(ctx, text) })
	case "ctrl+c":
		m.ctrl.Abort()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) updateJobs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.ctrl.Abort()
		return m, tea.Quit
	case "esc", "q":
		m.mode = modeBrowse
	case "up", "k":
		if m.jobCursor > 0 {
			m.jobCursor--
		}
	case "down", "j":
		if m.jobCursor < len(m.jobs)-1 {
			m.jobCursor++
		}
	case "enter":
		m.mode = modeBrowse
		id := m.jobs[m.jobCursor].ID
		ctrl := m.ctrl
		return m, m.run(func(ctx context.Context) error { return ctrl.ShowJob(ctx, id) })
	}
	return m, nil
}

func (m *tuiModel) setStatus(s string, isError bool) {
	m.status = s
	m.isError = isError
}

// reportErr shows err in the status bar unless the screen already presents it.
func (m *tuiModel) reportErr(err error) {
	if err == nil {
		return
	}
	if m.view.Err != nil && errors.Is(m.view.Err, err) {
		return
	}
	if errors.Is(err, session.ErrNothingToRetry) {
		m.setStatus("Nothing to retry on this screen.", true)
		return
	}
	m.setStatus(model.UserMessage(err), true)
}

func (m *tuiModel) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// header + status bar + help line + frame border
	bodyHeight := m.height - 5
	if m.mode == modePaste || m.mode == modeFeedback {
		inputHeight := max(bodyHeight/2, 3)
		m.input.SetWidth(m.width - 4)
		m.input.SetHeight(inputHeight)
		bodyHeight -= inputHeight + 1
	}
	bodyHeight = max(bodyHeight, 1)
	if !m.ready {
		m.viewport = viewport.New(m.width-2, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width - 2
		m.viewport.Height = bodyHeight
	}
	m.refreshContent()
}

func (m *tuiModel) refreshContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(render.Text(m.view, m.viewport.Width))
	m.viewport.GotoTop()
}

func (m tuiModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := headerStyle.Render("jobfit · " + render.Title(m.view.State))
	if m.view.JobID != "" {
		header += helpStyle.Render(m.view.JobID)
	}

	var body string
	if m.mode == modeJobs {
		body = m.renderJobs()
	} else {
		body = frameStyle.Width(m.width - 2).Render(m.viewport.View())
	}
	if m.mode == modePaste || m.mode == modeFeedback {
		body += "\n" + m.input.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderStatus(), m.renderHelp())
}

func (m tuiModel) renderJobs() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Analyzed jobs") + "\n\n")
	for i, j := range m.jobs {
		marks := ""
		if j.HasCoverLetter {
			marks += " ✉"
		}
		if j.HasResume {
			marks += " ▤"
		}
		label := j.ID + marks
		if i == m.jobCursor {
			b.WriteString(jobSelectedStyle.Render("> "+label) + "\n")
		} else {
			b.WriteString(jobItemStyle.Render(label) + "\n")
		}
	}
	return b.String()
}

func (m tuiModel) renderStatus() string {
	width := max(m.width, 1)
	if len(m.busy) > 0 {
		var op model.ViewState
		for _, o := range m.busy {
			op = o
		}
		return statusBarStyle.Width(width).Render(fmt.Sprintf("%s Working on %s...", m.spinner.View(), strings.ToLower(render.Title(op))))
	}
	if m.status != "" {
		first, _, _ := strings.Cut(m.status, "\n")
		if m.isError {
			return statusErrStyle.Width(width).Render(first)
		}
		return statusBarStyle.Width(width).Render(first)
	}
	return statusBarStyle.Width(width).Render("Ready")
}

func (m tuiModel) renderHelp() string {
	switch m.mode {
	case modePaste, modeFeedback:
		return helpStyle.Render("ctrl+s submit  esc cancel")
	case modeJobs:
		return helpStyle.Render("↑/↓/j/k navigate  enter open  esc close")
	}
	return helpStyle.Render("a analyze  c cover letter  t tailor  r retry  d download  b back  j jobs  x cancel  q quit")
}

// Run starts the interactive session UI and blocks until the user quits.
// bridge must be the Progress the session was built with.
func Run(ctx context.Context, sess *session.Session, bridge *Bridge) error {
	unsubscribe := sess.Subscribe(bridge.View)
	defer unsubscribe()

	p := tea.NewProgram(newModel(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p.Send)
	defer bridge.Attach(nil)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
