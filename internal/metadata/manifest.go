package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	apierrors "attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

// Entry is the raw operator input for one document, as written in a manifest
// or submitted in a form
type Entry struct {
	File        string `yaml:"file"`
	SessionDate string `yaml:"session_date"`
	GradeLevel  string `yaml:"grade_level"`
	GroupNumber string `yaml:"group_number"`
}

// Manifest maps documents to their batch metadata
type Manifest struct {
	Defaults  Entry   `yaml:"defaults"`
	Documents []Entry `yaml:"documents"`

	validator *Validator
}

// LoadManifest reads a YAML manifest from disk
func LoadManifest(path string, v *Validator) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to read manifest", err).
			WithContext("path", path)
	}
	return ParseManifest(data, v)
}

// ParseManifest decodes a YAML manifest
func ParseManifest(data []byte, v *Validator) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, apierrors.NewParsingError("invalid manifest", err)
	}
	m.validator = v
	return m, nil
}

// For returns the metadata of file. Missing fields of a document entry fall
// back to the manifest defaults.
func (m *Manifest) For(file string) (domain.BatchMetadata, error) {
	base := filepath.Base(file)

	entry := m.Defaults
	for _, doc := range m.Documents {
		if strings.EqualFold(filepath.Base(doc.File), base) {
			entry = merge(doc, m.Defaults)
			break
		}
	}
	entry.File = base

	return Parse(entry, m.validator)
}

// Files lists the documents named in the manifest
func (m *Manifest) Files() []string {
	files := make([]string, 0, len(m.Documents))
	for _, doc := range m.Documents {
		files = append(files, doc.File)
	}
	return files
}

func merge(entry, defaults Entry) Entry {
	if entry.SessionDate == "" {
		entry.SessionDate = defaults.SessionDate
	}
	if entry.GradeLevel == "" {
		entry.GradeLevel = defaults.GradeLevel
	}
	if entry.GroupNumber == "" {
		entry.GroupNumber = defaults.GroupNumber
	}
	return entry
}

// Parse converts and validates a raw entry
func Parse(entry Entry, v *Validator) (domain.BatchMetadata, error) {
	fe := &FieldErrors{File: entry.File}
	meta := domain.BatchMetadata{
		GradeLevel: domain.GradeLevel(strings.ToUpper(strings.TrimSpace(entry.GradeLevel))),
	}

	if s := strings.TrimSpace(entry.SessionDate); s != "" {
		date, err := time.Parse(domain.SessionDateLayout, s)
		if err != nil {
			fe.Errors = append(fe.Errors, apierrors.ValidationError{
				Field:   "session_date",
				Message: fmt.Sprintf("must be a date in %s format", domain.SessionDateLayout),
			})
		}
		meta.SessionDate = date
	}

	if s := strings.TrimSpace(entry.GroupNumber); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			fe.Errors = append(fe.Errors, apierrors.ValidationError{
				Field:   "group_number",
				Message: "must be a number",
			})
		}
		meta.GroupNumber = n
	}

	if len(fe.Errors) > 0 {
		return domain.BatchMetadata{}, fe
	}

	if v != nil {
		if err := v.Validate(meta); err != nil {
			if verr, ok := err.(*FieldErrors); ok {
				verr.File = entry.File
			}
			return domain.BatchMetadata{}, err
		}
	}
	return meta, nil
}
