package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyUpload         = errors.New("uploaded file is empty")
)
