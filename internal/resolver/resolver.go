// Package resolver maps freshly selected job-posting text to a job that was
// already analyzed, so the same posting is not sent for analysis twice.
package resolver

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/amishk599/jobfit/internal/model"
)

// jobIDSeparator splits "<job title> @ <company name>".
const jobIDSeparator = " @ "

// Normalize trims text, collapses line breaks to single spaces and case-folds
// it for comparison.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(text)
	return cases.Fold().String(norm.NFC.String(text))
}

// SplitJobID returns the title and company halves of a job id.
func SplitJobID(jobID string) (title, company string, ok bool) {
	title, company, ok = strings.Cut(jobID, jobIDSeparator)
	if !ok {
		return "", "", false
	}
	title, company = strings.TrimSpace(title), strings.TrimSpace(company)
	return title, company, title != "" && company != ""
}

// Resolve returns the first cached job, in insertion order, whose title and
// company both occur in text. It is a containment heuristic, not a hash:
// a generic title plus a common company name appearing incidentally can
// produce a false positive, and a different excerpt of the same posting can
// miss. A miss only costs a fresh analysis.
func Resolve(cache *model.JobCache, text string) (string, *model.JobPostingCacheRecord, bool) {
	if cache.Len() == 0 {
		return "", nil, false
	}
	candidate := Normalize(text)
	if candidate == "" {
		return "", nil, false
	}

	for _, id := range cache.IDs() {
		title, company, ok := SplitJobID(id)
		if !ok {
			continue
		}
		if strings.Contains(candidate, Normalize(title)) && strings.Contains(candidate, Normalize(company)) {
			return id, cache.Get(id), true
		}
	}
	return "", nil, false
}
