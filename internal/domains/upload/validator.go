package upload

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SniffLength is how much of the file is searched for script markers.
const SniffLength = 1024

var suspiciousMarkers = [][]byte{
	[]byte("<?php"),
	[]byte("<script>"),
	[]byte("<%"),
	[]byte("<?="),
}

// File is one multipart part read into memory.
type File struct {
	Name         string
	DeclaredType string
	Data         []byte
}

// Ext returns the original extension as sent by the client.
func (f File) Ext() string {
	return filepath.Ext(f.Name)
}

// Rules configures a Validator.
type Rules struct {
	MaxSize      int64
	AllowedTypes []string // MIME types, e.g. image/png
	Extensions   []string // lowercase with leading dot; empty allows any
	// CheckDeclared rejects parts whose Content-Type header is not allowed.
	CheckDeclared bool
}

type Validator struct {
	rules   Rules
	allowed map[string]struct{}
	exts    map[string]struct{}
}

func NewValidator(rules Rules) *Validator {
	v := &Validator{
		rules:   rules,
		allowed: make(map[string]struct{}, len(rules.AllowedTypes)),
		exts:    make(map[string]struct{}, len(rules.Extensions)),
	}
	for _, t := range rules.AllowedTypes {
		v.allowed[strings.ToLower(t)] = struct{}{}
	}
	for _, e := range rules.Extensions {
		v.exts[strings.ToLower(e)] = struct{}{}
	}
	return v
}

func (v *Validator) MaxSize() int64 {
	return v.rules.MaxSize
}

func (v *Validator) isAllowed(mime string) bool {
	_, ok := v.allowed[strings.ToLower(mime)]
	return ok
}

// Validate runs size, extension, declared type, magic bytes and marker
// checks in that order and returns the detected MIME type.
func (v *Validator) Validate(f File) (string, error) {
	if v.rules.MaxSize > 0 && int64(len(f.Data)) > v.rules.MaxSize {
		return "", fileError(f.Name, ErrFileTooLarge, "")
	}

	if len(v.exts) > 0 {
		if _, ok := v.exts[strings.ToLower(f.Ext())]; !ok {
			return "", fileError(f.Name, ErrExtensionNotAllow, f.Ext())
		}
	}

	if v.rules.CheckDeclared {
		declared := f.DeclaredType
		if i := strings.IndexByte(declared, ';'); i >= 0 {
			declared = declared[:i]
		}
		if !v.isAllowed(strings.TrimSpace(declared)) {
			return "", fileError(f.Name, ErrUnsupportedType, f.DeclaredType)
		}
	}

	detected := mimetype.Detect(f.Data)
	if !v.matches(detected) {
		return "", fileError(f.Name, ErrTypeMismatch, detected.String())
	}

	if ContainsSuspiciousContent(f.Data) {
		return "", fileError(f.Name, ErrDangerousContent, "")
	}

	return detected.String(), nil
}

func (v *Validator) matches(m *mimetype.MIME) bool {
	for t := range v.allowed {
		if m.Is(t) {
			return true
		}
	}
	return false
}

// ContainsSuspiciousContent looks for server-side script openers in the
// first SniffLength bytes.
func ContainsSuspiciousContent(data []byte) bool {
	head := data
	if len(head) > SniffLength {
		head = head[:SniffLength]
	}
	for _, marker := range suspiciousMarkers {
		if bytes.Contains(head, marker) {
			return true
		}
	}
	return false
}
