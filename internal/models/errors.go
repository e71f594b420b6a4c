package models

import "fmt"

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrConfig ErrorType = iota
	ErrFileOp
	ErrFormula
	ErrSigning
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrConfig:
		return "Config"
	case ErrFileOp:
		return "FileOp"
	case ErrFormula:
		return "Formula"
	case ErrSigning:
		return "Signing"
	default:
		return "Unknown"
	}
}

// BuildError represents an error during a package build
type BuildError struct {
	Type ErrorType
	Path string
	Err  error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewConfigError wraps err as a configuration error for path
func NewConfigError(path string, err error) *BuildError {
	return &BuildError{Type: ErrConfig, Path: path, Err: err}
}

// NewFileOpError wraps err as a filesystem error for path
func NewFileOpError(path string, err error) *BuildError {
	return &BuildError{Type: ErrFileOp, Path: path, Err: err}
}
