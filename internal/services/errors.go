package services

import "errors"

// Extraction service errors
var (
	ErrNoDocuments     = errors.New("no documents to process")
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrMissingMetadata = errors.New("missing metadata")
)
