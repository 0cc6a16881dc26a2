package session

import (
	"encoding/json"
	"testing"

	"github.com/amishk599/jobfit/internal/model"
)

func TestDocumentFilename(t *testing.T) {
	tests := []struct {
		name   string
		resume string
		jobID  string
		rec    model.JobPostingCacheRecord
		want   string
	}{
		{"name and company", `{"name":"Ada Lovelace"}`, "Dev @ Initech", model.JobPostingCacheRecord{CompanyName: "Initech"}, "Ada_Lovelace_Initech_Resume.pdf"},
		{"json resume basics", `{"basics":{"name":"Grace M. Hopper"}}`, "Dev @ Initech", model.JobPostingCacheRecord{CompanyName: "Initech"}, "Grace_M_Hopper_Initech_Resume.pdf"},
		{"company from job id", `{"name":"Ada"}`, "Dev @ Acme, Inc.", model.JobPostingCacheRecord{}, "Ada_Acme_Inc_Resume.pdf"},
		{"no name", `{}`, "Dev @ Acme", model.JobPostingCacheRecord{}, "Acme_Resume.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := documentFilename(json.RawMessage(tt.resume), tt.jobID, &tt.rec, "Resume", ".pdf")
			if got != tt.want {
				t.Errorf("documentFilename = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProject(t *testing.T) {
	d := model.DefaultUserData()
	d.LinkedinSearchQuery = "go developer"
	rec := d.JobPostingCache.Ensure("Dev @ Initech")
	rec.Analysis = "fit"
	rec.CompanyName = "Initech"
	rec.TailoredResume = &model.TailoredResume{Filename: "r.pdf", PDFBase64: "!!not base64"}

	v := project(model.NavigationEntry{State: model.ViewInstructions}, d, false)
	if v.SearchQuery != "go developer" || v.Notice == "" || v.CanGoBack {
		t.Errorf("instructions view = %+v", v)
	}

	v = project(model.NavigationEntry{State: model.ViewAnalysis, JobID: "Dev @ Initech"}, d, true)
	if v.Content != "fit" || !v.CanRetry || !v.CanGoBack || v.CompanyName != "Initech" {
		t.Errorf("analysis view = %+v", v)
	}

	v = project(model.NavigationEntry{State: model.ViewResumePreview, JobID: "Dev @ Initech"}, d, true)
	if v.PDF != nil || v.Notice == "" {
		t.Errorf("corrupt pdf should yield a notice, got %+v", v)
	}

	v = project(model.NavigationEntry{State: model.ViewCoverLetter, JobID: "Gone @ Nowhere"}, d, true)
	if v.Notice == "" || v.CanRetry {
		t.Errorf("missing record view = %+v", v)
	}
}
