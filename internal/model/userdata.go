package model

import (
	"context"
	"encoding/json"
)

// Defaults for a first run.
const (
	DefaultModelName         = "gemini-2.5-flash"
	DefaultFallbackModelName = "gemini-2.0-flash"
	DefaultTheme             = "engineeringclassic"
)

// Themes lists the résumé designs the tailoring endpoint can render.
var Themes = []string{"classic", "sb2nov", "engineeringresumes", "engineeringclassic", "moderncv"}

// ValidTheme reports whether name is one of Themes.
func ValidTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}

// UserRelevantData is the single durable document: credentials, the parsed
// résumé, preferences and every per-job result.
type UserRelevantData struct {
	GoogleAPIKey        string          `json:"googleApiKey,omitempty"`
	ResumeJSON          json.RawMessage `json:"resumeJsonData,omitempty"`
	ResumeFileName      string          `json:"resumeFileName,omitempty"`
	ResumeFileContent   string          `json:"resumeFileContent,omitempty"`
	LinkedinSearchQuery string          `json:"linkedinSearchQuery,omitempty"`
	Theme               string          `json:"theme"`
	ModelName           string          `json:"modelName"`
	FallbackModelName   string          `json:"fallbackModelName"`
	PrivateDataLogging  bool            `json:"privateDataLogging"`
	ResumesDownloaded   int             `json:"resumesDownloaded"`
	JobPostingCache     *JobCache       `json:"jobPostingCache"`
}

// DefaultUserData returns the skeleton used before anything has been saved.
func DefaultUserData() *UserRelevantData {
	return &UserRelevantData{
		Theme:             DefaultTheme,
		ModelName:         DefaultModelName,
		FallbackModelName: DefaultFallbackModelName,
		JobPostingCache:   NewJobCache(),
	}
}

// HasResume reports whether a parsed résumé is available for requests.
func (d *UserRelevantData) HasResume() bool {
	return len(d.ResumeJSON) > 0 && string(d.ResumeJSON) != "null"
}

// normalize fills zero fields left by older or partial documents.
func (d *UserRelevantData) normalize() {
	if d.JobPostingCache == nil {
		d.JobPostingCache = NewJobCache()
	}
	if d.Theme == "" {
		d.Theme = DefaultTheme
	}
	if d.ModelName == "" {
		d.ModelName = DefaultModelName
	}
	if d.FallbackModelName == "" {
		d.FallbackModelName = DefaultFallbackModelName
	}
}

// DecodeUserData parses a stored document and fills defaults.
func DecodeUserData(raw []byte) (*UserRelevantData, error) {
	d := &UserRelevantData{}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, err
	}
	d.normalize()
	return d, nil
}

// EncodeUserData serializes the document for storage.
func EncodeUserData(d *UserRelevantData) ([]byte, error) {
	if d.JobPostingCache == nil {
		d.JobPostingCache = NewJobCache()
	}
	return json.Marshal(d)
}

// CacheStore owns the durable UserRelevantData document. Every read returns a
// fresh copy; changes are persisted only through the store.
type CacheStore interface {
	GetUserData(ctx context.Context) (*UserRelevantData, error)
	SaveUserData(ctx context.Context, data *UserRelevantData) error
	// UpdateJobCache reads the document, ensures a record exists for jobID,
	// applies mutate to it and persists the whole document atomically.
	UpdateJobCache(ctx context.Context, jobID string, mutate func(*JobPostingCacheRecord)) (*UserRelevantData, error)
	// ResetJobCache empties the job cache and leaves the rest of the document alone.
	ResetJobCache(ctx context.Context) error
	Close() error
}
