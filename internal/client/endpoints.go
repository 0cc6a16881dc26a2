package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/amishk599/jobfit/internal/abort"
	"github.com/amishk599/jobfit/internal/model"
)

// ResumeResult is the parsed résumé and a LinkedIn search query built from it.
type ResumeResult struct {
	SearchQuery string          `json:"search_query"`
	ResumeData  json.RawMessage `json:"resume_data" validate:"required"`
}

type resumeBody struct {
	commonFields
	ResumeContent string `json:"resume_content"`
}

// GetResumeJSON turns raw résumé text into structured JSON.
func (c *Client) GetResumeJSON(tok *abort.Token, creds Credentials, resumeContent string) (*ResumeResult, error) {
	var out ResumeResult
	err := c.call(tok, creds, "/get-resume-json", func(cf commonFields) any {
		return resumeBody{commonFields: cf, ResumeContent: resumeContent}
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type searchQueryBody struct {
	commonFields
	ResumeJSONData string `json:"resume_json_data"`
}

type searchQueryResponse struct {
	SearchQuery string `json:"search_query" validate:"required"`
}

// GenerateSearchQuery builds a LinkedIn search query for the résumé.
func (c *Client) GenerateSearchQuery(tok *abort.Token, creds Credentials, resumeJSON string) (string, error) {
	var out searchQueryResponse
	err := c.call(tok, creds, "/generate-search-query", func(cf commonFields) any {
		return searchQueryBody{commonFields: cf, ResumeJSONData: resumeJSON}
	}, &out)
	if err != nil {
		return "", err
	}
	return out.SearchQuery, nil
}

// AnalyzeRequest carries the inputs of a job analysis. PreviousAnalysis and
// JobSpecificContext are set on a retry with feedback.
type AnalyzeRequest struct {
	JobPostingText     string
	ResumeJSON         string
	JobSpecificContext string
	PreviousAnalysis   string
}

type analyzeBody struct {
	commonFields
	JobPostingText     string `json:"job_posting_text"`
	ResumeJSONData     string `json:"resume_json_data"`
	PreviousAnalysis   string `json:"previous_analysis,omitempty"`
	JobSpecificContext string `json:"job_specific_context,omitempty"`
}

// AnalyzeResult is the analysis and the server-assigned job id.
type AnalyzeResult struct {
	JobID       string `json:"job_id" validate:"required"`
	CompanyName string `json:"company_name"`
	JobAnalysis string `json:"job_analysis" validate:"required"`
}

// AnalyzeJobPosting analyzes a posting against the résumé.
func (c *Client) AnalyzeJobPosting(tok *abort.Token, creds Credentials, req AnalyzeRequest) (*AnalyzeResult, error) {
	var out AnalyzeResult
	err := c.call(tok, creds, "/analyze-job-posting", func(cf commonFields) any {
		return analyzeBody{
			commonFields:       cf,
			JobPostingText:     req.JobPostingText,
			ResumeJSONData:     req.ResumeJSON,
			PreviousAnalysis:   req.PreviousAnalysis,
			JobSpecificContext: req.JobSpecificContext,
		}
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CoverLetterRequest carries the inputs of a cover letter draft.
type CoverLetterRequest struct {
	JobPostingText     string
	JobSpecificContext string
	ResumeJSON         string
	CurrentContent     string
	RetryFeedback      string
}

type coverLetterBody struct {
	commonFields
	JobPostingText     string `json:"job_posting_text"`
	JobSpecificContext string `json:"job_specific_context,omitempty"`
	ResumeJSONData     string `json:"resume_json_data"`
	CurrentContent     string `json:"current_content,omitempty"`
	RetryFeedback      string `json:"retry_feedback,omitempty"`
}

type coverLetterResponse struct {
	Content string `json:"content" validate:"required"`
}

// GenerateCoverLetter drafts a cover letter for a cached job.
func (c *Client) GenerateCoverLetter(tok *abort.Token, creds Credentials, req CoverLetterRequest) (string, error) {
	var out coverLetterResponse
	err := c.call(tok, creds, "/generate-cover-letter", func(cf commonFields) any {
		return coverLetterBody{
			commonFields:       cf,
			JobPostingText:     req.JobPostingText,
			JobSpecificContext: req.JobSpecificContext,
			ResumeJSONData:     req.ResumeJSON,
			CurrentContent:     req.CurrentContent,
			RetryFeedback:      req.RetryFeedback,
		}
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Content, nil
}

// TailorRequest carries the inputs of a tailored résumé render.
type TailorRequest struct {
	JobPostingText    string
	ResumeJSON        string
	Theme             string
	Filename          string
	CurrentResumeData string
	RetryFeedback     string
}

type tailorBody struct {
	commonFields
	JobPostingText    string `json:"job_posting_text"`
	ResumeJSONData    string `json:"resume_json_data"`
	Theme             string `json:"theme"`
	Filename          string `json:"filename"`
	CurrentResumeData string `json:"current_resume_data,omitempty"`
	RetryFeedback     string `json:"retry_feedback,omitempty"`
}

type tailorResponse struct {
	PDFBase64          string          `json:"pdf_base64_string" validate:"required,base64"`
	TailoredResumeJSON json.RawMessage `json:"tailored_resume_json" validate:"required"`
}

// TailorResult is the rendered PDF and the tailored résumé JSON it was built from.
type TailorResult struct {
	PDF        []byte
	PDFBase64  string
	ResumeJSON string
}

// TailorResume tailors the résumé to a cached job and renders it as a PDF.
func (c *Client) TailorResume(tok *abort.Token, creds Credentials, req TailorRequest) (*TailorResult, error) {
	var out tailorResponse
	err := c.call(tok, creds, "/tailor-resume", func(cf commonFields) any {
		return tailorBody{
			commonFields:      cf,
			JobPostingText:    req.JobPostingText,
			ResumeJSONData:    req.ResumeJSON,
			Theme:             req.Theme,
			Filename:          req.Filename,
			CurrentResumeData: req.CurrentResumeData,
			RetryFeedback:     req.RetryFeedback,
		}
	}, &out)
	if err != nil {
		return nil, err
	}

	pdf, err := base64.StdEncoding.DecodeString(out.PDFBase64)
	if err != nil {
		return nil, model.NetworkError("Failed to decode tailored résumé", fmt.Errorf("decode pdf: %w", err))
	}
	return &TailorResult{
		PDF:        pdf,
		PDFBase64:  out.PDFBase64,
		ResumeJSON: string(out.TailoredResumeJSON),
	}, nil
}
