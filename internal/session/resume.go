package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/amishk599/jobfit/internal/abort"
	"github.com/amishk599/jobfit/internal/client"
	"github.com/amishk599/jobfit/internal/model"
)

// ImportResume extracts the text of a résumé file, has the backend parse it
// and stores the result with details under "additionalDetails". Every cached
// job is dropped because it was produced for the old résumé.
func (s *Session) ImportResume(ctx context.Context, fileName string, content []byte, details string) error {
	tok := s.begin(ctx, model.ViewInstructions)
	defer s.finish(tok)

	text, err := s.extract(tok.Context(), fileName, content)
	if err != nil {
		return model.InvalidInputError("Failed to read resume file. Please try again.", err)
	}
	if text == "" {
		return model.EmptyInputError("Please upload a resume file first.")
	}

	data, err := s.store.GetUserData(tok.Context())
	if err != nil {
		return err
	}
	res, err := s.backend.GetResumeJSON(tok, client.CredentialsFrom(data), text)
	if errors.Is(err, abort.ErrAborted) {
		return nil
	}
	if err != nil {
		s.logger.Error("parsing résumé failed", "file", fileName, "op_id", tok.ID(), "error", err)
		return err
	}
	resumeJSON, err := withAdditionalDetails(res.ResumeData, details)
	if err != nil {
		return model.NetworkError("Failed to parse resume. Please check the file and try again.", err)
	}

	err = s.commit(tok, func() error {
		ctx := context.WithoutCancel(tok.Context())
		data, err := s.store.GetUserData(ctx)
		if err != nil {
			return err
		}
		data.ResumeFileName = fileName
		data.ResumeFileContent = text
		data.ResumeJSON = resumeJSON
		data.LinkedinSearchQuery = res.SearchQuery
		data.JobPostingCache.Clear()
		if err := s.store.SaveUserData(ctx, data); err != nil {
			return err
		}
		s.resetNavigationLocked(ctx)
		return nil
	})
	if errors.Is(err, abort.ErrAborted) {
		return nil
	}
	if err == nil {
		s.logger.Info("résumé imported", "file", fileName, "op_id", tok.ID())
	}
	return err
}

// UpdateAdditionalDetails rewrites "additionalDetails" in the stored résumé.
// Like a new résumé, it drops every cached job.
func (s *Session) UpdateAdditionalDetails(ctx context.Context, details string) error {
	var err error
	s.update(func() {
		s.abortLocked()
		var data *model.UserRelevantData
		if data, err = s.store.GetUserData(ctx); err != nil {
			return
		}
		if !data.HasResume() {
			err = model.SettingsIncompleteError("Please upload a resume file first.")
			return
		}
		if data.ResumeJSON, err = withAdditionalDetails(data.ResumeJSON, details); err != nil {
			err = model.InvalidInputError("The stored résumé is not a JSON object.", err)
			return
		}
		data.JobPostingCache.Clear()
		if err = s.store.SaveUserData(ctx, data); err != nil {
			return
		}
		s.resetNavigationLocked(ctx)
	})
	return err
}

// Settings holds the user-editable preferences. Nil fields are left alone.
type Settings struct {
	APIKey             *string
	ModelName          *string
	FallbackModelName  *string
	Theme              *string
	PrivateDataLogging *bool
	ResumeJSON         *string // replaces the parsed résumé; must be a JSON object
}

// SaveSettings validates and stores s. A changed résumé drops every cached job.
func (s *Session) SaveSettings(ctx context.Context, in Settings) error {
	var resumeJSON json.RawMessage
	if in.ResumeJSON != nil {
		var buf bytes.Buffer
		raw := strings.TrimSpace(*in.ResumeJSON)
		if err := json.Compact(&buf, []byte(raw)); err != nil || !strings.HasPrefix(raw, "{") {
			return model.InvalidInputError("Résumé data must be a valid JSON object.", err)
		}
		resumeJSON = buf.Bytes()
	}
	if in.Theme != nil && !model.ValidTheme(*in.Theme) {
		return model.InvalidInputError(fmt.Sprintf("Unknown theme %q; choose one of %s.", *in.Theme, strings.Join(model.Themes, ", ")), nil)
	}
	for _, m := range []*string{in.ModelName, in.FallbackModelName} {
		if m != nil && strings.TrimSpace(*m) == "" {
			return model.EmptyInputError("Model names cannot be empty.")
		}
	}

	var err error
	s.update(func() {
		var data *model.UserRelevantData
		if data, err = s.store.GetUserData(ctx); err != nil {
			return
		}
		if in.APIKey != nil {
			data.GoogleAPIKey = strings.TrimSpace(*in.APIKey)
		}
		if in.ModelName != nil {
			data.ModelName = strings.TrimSpace(*in.ModelName)
		}
		if in.FallbackModelName != nil {
			data.FallbackModelName = strings.TrimSpace(*in.FallbackModelName)
		}
		if in.Theme != nil {
			data.Theme = *in.Theme
		}
		if in.PrivateDataLogging != nil {
			data.PrivateDataLogging = *in.PrivateDataLogging
		}

		resumeChanged := false
		if resumeJSON != nil {
			var old bytes.Buffer
			if json.Compact(&old, data.ResumeJSON) != nil || !bytes.Equal(old.Bytes(), resumeJSON) {
				resumeChanged = true
				data.ResumeJSON = resumeJSON
				data.JobPostingCache.Clear()
				s.abortLocked()
			}
		}
		if err = s.store.SaveUserData(ctx, data); err != nil {
			return
		}
		if resumeChanged {
			s.logger.Info("résumé replaced; job cache cleared")
			s.resetNavigationLocked(ctx)
			return
		}
		s.view = s.projectLocked(data)
	})
	return err
}

// GenerateSearchQuery refreshes the stored LinkedIn search query. It runs
// alongside other operations and does not abort them.
func (s *Session) GenerateSearchQuery(ctx context.Context) (string, error) {
	tok := abort.New(ctx)
	defer tok.Abort()

	data, err := s.store.GetUserData(ctx)
	if err != nil {
		return "", err
	}
	if !data.HasResume() {
		return "", model.SettingsIncompleteError(settingsNotice)
	}
	query, err := s.backend.GenerateSearchQuery(tok, client.CredentialsFrom(data), string(data.ResumeJSON))
	if err != nil {
		return "", err
	}

	s.update(func() {
		var fresh *model.UserRelevantData
		if fresh, err = s.store.GetUserData(ctx); err != nil {
			return
		}
		fresh.LinkedinSearchQuery = query
		if err = s.store.SaveUserData(ctx, fresh); err != nil {
			return
		}
		if s.failed == nil {
			s.view = s.projectLocked(fresh)
		}
	})
	if err != nil {
		return "", err
	}
	return query, nil
}

// Download saves the cover letter or tailored résumé on screen and returns
// the path it was written to.
func (s *Session) Download(ctx context.Context) (string, error) {
	if s.downloader == nil {
		return "", errors.New("downloads are not configured")
	}
	v := s.View()
	if v.Err != nil || v.Filename == "" {
		return "", model.InvalidInputError("There is nothing to download on this screen.", nil)
	}

	var payload []byte
	switch v.State {
	case model.ViewCoverLetter:
		payload = []byte(v.Content)
	case model.ViewResumePreview:
		payload = v.PDF
	default:
		return "", model.InvalidInputError("There is nothing to download on this screen.", nil)
	}
	if len(payload) == 0 {
		return "", model.InvalidInputError("There is nothing to download on this screen.", nil)
	}

	path, err := s.downloader.Save(v.Filename, payload)
	if err != nil {
		return "", fmt.Errorf("saving %s: %w", v.Filename, err)
	}
	s.logger.Info("document saved", "path", path, "job_id", v.JobID)

	if v.State == model.ViewResumePreview {
		s.mu.Lock()
		defer s.mu.Unlock()
		data, err := s.store.GetUserData(ctx)
		if err != nil {
			return path, err
		}
		data.ResumesDownloaded++
		if err := s.store.SaveUserData(ctx, data); err != nil {
			return path, err
		}
	}
	return path, nil
}

// withAdditionalDetails sets "additionalDetails" on a résumé JSON object.
func withAdditionalDetails(resume json.RawMessage, details string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(resume, &obj); err != nil {
		return nil, fmt.Errorf("résumé is not a JSON object: %w", err)
	}
	if obj == nil {
		obj = make(map[string]json.RawMessage)
	}
	d, err := json.Marshal(strings.TrimSpace(details))
	if err != nil {
		return nil, err
	}
	obj["additionalDetails"] = d
	return json.Marshal(obj)
}
