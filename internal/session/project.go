package session

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/amishk599/jobfit/internal/model"
	"github.com/amishk599/jobfit/internal/resolver"
)

const settingsNotice = "Upload your résumé in settings before analyzing job postings."

// project derives the view for entry from the stored document.
func project(entry model.NavigationEntry, data *model.UserRelevantData, hasHistory bool) model.View {
	v := model.View{
		State:     entry.State,
		JobID:     entry.JobID,
		CanGoBack: hasHistory || entry.State != model.ViewInstructions,
	}

	if entry.State == model.ViewInstructions {
		v.SearchQuery = data.LinkedinSearchQuery
		if !data.HasResume() {
			v.Notice = settingsNotice
		}
		return v
	}

	rec := data.JobPostingCache.Get(entry.JobID)
	if rec == nil {
		v.Notice = "This job is no longer cached."
		return v
	}
	v.CompanyName = rec.CompanyName
	v.Feedback = rec.RetryFeedback[entry.State]

	switch entry.State {
	case model.ViewAnalysis:
		v.Content = rec.Analysis
	case model.ViewCoverLetter:
		if rec.CoverLetter != nil {
			v.Content = rec.CoverLetter.Content
			v.Filename = rec.CoverLetter.Filename
		}
	case model.ViewResumePreview:
		if rec.TailoredResume != nil {
			v.Content = rec.TailoredResume.ResumeJSON
			v.Filename = rec.TailoredResume.Filename
			pdf, err := base64.StdEncoding.DecodeString(rec.TailoredResume.PDFBase64)
			if err != nil {
				v.Notice = "The stored résumé PDF is corrupt; tailor it again."
			} else {
				v.PDF = pdf
			}
		}
	}
	v.CanRetry = v.Content != ""
	return v
}

var nonWord = regexp.MustCompile(`[^A-Za-z0-9]+`)

// documentFilename builds "<Owner>_<Company>_<kind><ext>" from the résumé
// owner's name and the job's company.
func documentFilename(resumeJSON json.RawMessage, jobID string, rec *model.JobPostingCacheRecord, kind, ext string) string {
	company := rec.CompanyName
	if company == "" {
		if _, c, ok := resolver.SplitJobID(jobID); ok {
			company = c
		}
	}
	parts := []string{resumeOwner(resumeJSON), company, kind}
	var clean []string
	for _, p := range parts {
		p = strings.Trim(nonWord.ReplaceAllString(p, "_"), "_")
		if p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "_") + ext
}

// resumeOwner finds the candidate's name in the parsed résumé. It accepts a
// top-level "name" or the JSON Resume "basics.name".
func resumeOwner(resumeJSON json.RawMessage) string {
	var doc struct {
		Name   string `json:"name"`
		Basics struct {
			Name string `json:"name"`
		} `json:"basics"`
	}
	if err := json.Unmarshal(resumeJSON, &doc); err != nil {
		return ""
	}
	if doc.Name != "" {
		return doc.Name
	}
	return doc.Basics.Name
}
