package services

import "errors"

// Service errors
var (
	// ErrEmptyUpload is returned when an upload has no content.
	ErrEmptyUpload = errors.New("upload is empty")

	// ErrMissingFileName is returned when an upload has no file name to
	// detect its format from.
	ErrMissingFileName = errors.New("upload has no file name")
)
