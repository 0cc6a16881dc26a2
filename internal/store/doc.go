package store

import (
	"fmt"

	"github.com/amishk599/jobfit/internal/model"
)

// documentKey is the single storage key the user document lives under.
const documentKey = "userRelevantData"

// decodeDocument turns a stored document into user data. A missing document
// yields the default skeleton.
func decodeDocument(raw []byte, found bool) (*model.UserRelevantData, error) {
	if !found || len(raw) == 0 {
		return model.DefaultUserData(), nil
	}
	data, err := model.DecodeUserData(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", documentKey, err)
	}
	return data, nil
}

// applyJobUpdate runs mutate against a fully decoded snapshot and returns the
// updated document and its encoding. Nothing is applied if decoding fails.
func applyJobUpdate(raw []byte, found bool, jobID string, mutate func(*model.JobPostingCacheRecord)) (*model.UserRelevantData, []byte, error) {
	data, err := decodeDocument(raw, found)
	if err != nil {
		return nil, nil, err
	}
	mutate(data.JobPostingCache.Ensure(jobID))
	enc, err := model.EncodeUserData(data)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s: %w", documentKey, err)
	}
	return data, enc, nil
}

// applyReset clears the job cache of a decoded snapshot.
func applyReset(raw []byte, found bool) ([]byte, error) {
	data, err := decodeDocument(raw, found)
	if err != nil {
		return nil, err
	}
	data.JobPostingCache.Clear()
	enc, err := model.EncodeUserData(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", documentKey, err)
	}
	return enc, nil
}
