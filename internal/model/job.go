package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CoverLetter is a generated cover letter ready to be downloaded.
type CoverLetter struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// TailoredResume is a server-rendered résumé PDF plus the tailored résumé JSON
// it was rendered from (sent back as current_resume_data on retry).
type TailoredResume struct {
	Filename   string `json:"filename"`
	PDFBase64  string `json:"pdfBase64"`
	ResumeJSON string `json:"resumeJsonString,omitempty"`
}

// JobPostingCacheRecord holds every result produced for one job posting.
// Empty strings and nil pointers mean "not produced yet".
type JobPostingCacheRecord struct {
	JobPostingText     string          `json:"jobPostingText"`
	CompanyName        string          `json:"CompanyName,omitempty"`
	Analysis           string          `json:"Analysis,omitempty"`
	CoverLetter        *CoverLetter    `json:"CoverLetter,omitempty"`
	TailoredResume     *TailoredResume `json:"TailoredResume,omitempty"`
	JobSpecificContext string          `json:"jobSpecificContext,omitempty"`

	// RetryFeedback keeps the last feedback the user typed on each screen.
	RetryFeedback map[ViewState]string `json:"retryFeedback,omitempty"`
}

// SetFeedback records feedback for the given screen; empty feedback clears it.
func (r *JobPostingCacheRecord) SetFeedback(state ViewState, feedback string) {
	if feedback == "" {
		delete(r.RetryFeedback, state)
		return
	}
	if r.RetryFeedback == nil {
		r.RetryFeedback = make(map[ViewState]string)
	}
	r.RetryFeedback[state] = feedback
}

// JobCache maps job ids to their cached records while remembering insertion
// order. The order survives JSON round-trips; the job resolver relies on it to
// pick the first matching job.
type JobCache struct {
	order   []string
	records map[string]*JobPostingCacheRecord
}

// NewJobCache returns an empty cache.
func NewJobCache() *JobCache {
	return &JobCache{records: make(map[string]*JobPostingCacheRecord)}
}

// Len returns the number of cached jobs.
func (c *JobCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Get returns the record for jobID, or nil.
func (c *JobCache) Get(jobID string) *JobPostingCacheRecord {
	if c == nil {
		return nil
	}
	return c.records[jobID]
}

// Ensure returns the record for jobID, creating an empty one at the end of the
// insertion order if it does not exist yet.
func (c *JobCache) Ensure(jobID string) *JobPostingCacheRecord {
	if c.records == nil {
		c.records = make(map[string]*JobPostingCacheRecord)
	}
	if r, ok := c.records[jobID]; ok {
		return r
	}
	r := &JobPostingCacheRecord{}
	c.records[jobID] = r
	c.order = append(c.order, jobID)
	return r
}

// IDs returns job ids in insertion order.
func (c *JobCache) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// Clear drops every record.
func (c *JobCache) Clear() {
	c.order = nil
	c.records = make(map[string]*JobPostingCacheRecord)
}

// MarshalJSON writes the cache as a JSON object whose keys follow insertion order.
func (c JobCache) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.records[id])
		if err != nil {
			return nil, fmt.Errorf("marshal job %q: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the document's key order.
func (c *JobCache) UnmarshalJSON(data []byte) error {
	c.Clear()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("job cache: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("job cache: expected string key, got %v", tok)
		}
		var rec JobPostingCacheRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("job cache: decode %q: %w", id, err)
		}
		if _, dup := c.records[id]; !dup {
			c.order = append(c.order, id)
		}
		c.records[id] = &rec
	}
	_, err = dec.Token()
	return err
}
