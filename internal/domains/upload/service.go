package upload

import "context"

// Result describes a stored upload.
type Result struct {
	Filename    string `json:"filename"`
	Key         string `json:"-"`
	URL         string `json:"path"`
	ContentType string `json:"-"`
	Size        int64  `json:"-"`
}

// Service validates files and puts them into the file store.
type Service interface {
	// Store validates f against v and saves it as <prefix><random hex><ext>.
	Store(ctx context.Context, v *Validator, prefix string, f File) (*Result, error)
	// Remove deletes a previously stored key; missing keys are ignored.
	Remove(ctx context.Context, key string) error
}
