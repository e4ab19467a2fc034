package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"roomtour-backend/pkg/apiclient"
)

type OperationType string

const (
	OpCreatePlace OperationType = "createPlace"
	OpUpdatePlace OperationType = "updatePlace"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusError   Status = "error"
)

// FileRef is an attached photo: either a path read at replay time or
// inline bytes.
type FileRef struct {
	Path        string `json:"path,omitempty"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data,omitempty"`
}

// Operation is a mutating request recorded while offline.
type Operation struct {
	ID         int64           `json:"id"`
	Type       OperationType   `json:"type"`
	Identifier string          `json:"identifier,omitempty"` // slug or id, updates only
	Data       json.RawMessage `json:"data"`
	Files      []FileRef       `json:"files,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Status     Status          `json:"status"`
}

// NewPlaceOperation builds an operation carrying in as its payload.
func NewPlaceOperation(typ OperationType, identifier string, in apiclient.PlaceInput, files []FileRef) (Operation, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return Operation{}, fmt.Errorf("encode operation data: %w", err)
	}
	return Operation{Type: typ, Identifier: identifier, Data: data, Files: files}, nil
}

// Store persists queued operations in insertion order.
type Store interface {
	Add(ctx context.Context, op Operation) (int64, error)
	List(ctx context.Context) ([]Operation, error)
	Remove(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	HasOperations(ctx context.Context) (bool, error)
	// AddChangeListener registers fn, called after every mutation.
	AddChangeListener(fn func()) (remove func())
}

// resolveFiles turns refs into upload parts. Refs whose file is gone or
// that carry nothing are skipped.
func resolveFiles(refs []FileRef) ([]apiclient.File, []error) {
	var (
		files []apiclient.File
		errs  []error
	)
	for _, ref := range refs {
		data := ref.Data
		name := ref.Name
		if len(data) == 0 && ref.Path != "" {
			b, err := os.ReadFile(ref.Path)
			if err != nil {
				errs = append(errs, fmt.Errorf("read %s: %w", ref.Path, err))
				continue
			}
			data = b
			if name == "" {
				name = filepath.Base(ref.Path)
			}
		}
		if len(data) == 0 {
			continue
		}
		if name == "" {
			name = "image" + mimetype.Detect(data).Extension()
		}

		ct := ref.ContentType
		if ct == "" {
			ct = mimetype.Detect(data).String()
		}
		files = append(files, apiclient.File{Name: name, ContentType: ct, Data: data})
	}
	return files, errs
}
