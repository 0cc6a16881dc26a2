// Package render turns session views into text and saves generated documents.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobfit/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(12)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var stateTitles = map[model.ViewState]string{
	model.ViewInstructions:  "Instructions",
	model.ViewAnalysis:      "Job Analysis",
	model.ViewCoverLetter:   "Cover Letter",
	model.ViewResumePreview: "Tailored Résumé",
}

// Title is the heading shown for a view state.
func Title(s model.ViewState) string {
	if t, ok := stateTitles[s]; ok {
		return t
	}
	return string(s)
}

// Text renders v for a terminal of the given width.
func Text(v model.View, width int) string {
	wrapWidth := max(width-4, 20)
	var b strings.Builder

	b.WriteString(titleStyle.Render(Title(v.State)))
	b.WriteByte('\n')

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}
	addField("Job", v.JobID)
	addField("Company", v.CompanyName)
	addField("File", v.Filename)
	if v.Feedback != "" {
		addField("Feedback", v.Feedback)
	}

	if v.Notice != "" {
		b.WriteByte('\n')
		b.WriteString(noticeStyle.Render(wordWrap(v.Notice, wrapWidth)) + "\n")
	}
	if v.Err != nil {
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render("⚠ "+wordWrap(v.ErrorMessage(), wrapWidth)) + "\n")
		return b.String()
	}

	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	switch v.State {
	case model.ViewInstructions:
		b.WriteByte('\n')
		b.WriteString(bodyStyle.Render(wordWrap("Paste a job posting to analyze how well your résumé fits it, then draft a cover letter or tailor your résumé for the job.", wrapWidth)) + "\n")
		if v.SearchQuery != "" {
			b.WriteByte('\n')
			b.WriteString(divider("── Personalized LinkedIn Query ") + "\n\n")
			b.WriteString(bodyStyle.Render(v.SearchQuery) + "\n")
		}
	case model.ViewResumePreview:
		if len(v.PDF) > 0 {
			b.WriteByte('\n')
			b.WriteString(hintStyle.Render(fmt.Sprintf("  PDF ready (%d KB); download to view it", (len(v.PDF)+1023)/1024)) + "\n")
		}
		if v.Content != "" {
			b.WriteByte('\n')
			b.WriteString(divider("── Tailored Résumé Data ") + "\n\n")
			b.WriteString(bodyStyle.Render(v.Content) + "\n")
		}
	default:
		if v.Content != "" {
			b.WriteByte('\n')
			b.WriteString(divider("── "+Title(v.State)+" ") + "\n\n")
			b.WriteString(bodyStyle.Render(wrapParagraphs(v.Content, wrapWidth)) + "\n")
		}
	}
	return b.String()
}

// wrapParagraphs wraps each line separately so markdown structure survives.
func wrapParagraphs(text string, width int) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			lines[i] = ""
			continue
		}
		indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		lines[i] = indent + wordWrap(l, width-len(indent))
	}
	return strings.Join(lines, "\n")
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
