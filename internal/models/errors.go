package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrIndexLookup ErrorType = iota
	ErrMaterialize
	ErrPackageList
	ErrInstall
	ErrInvalidConfig
	ErrFileOp
	ErrSigning
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrIndexLookup:
		return "IndexLookup"
	case ErrMaterialize:
		return "Materialize"
	case ErrPackageList:
		return "PackageList"
	case ErrInstall:
		return "Install"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrFileOp:
		return "FileOp"
	case ErrSigning:
		return "Signing"
	default:
		return "Unknown"
	}
}

// YpmError represents an error raised while discovering, resolving or
// installing packages
type YpmError struct {
	Type    ErrorType
	Subject string // source, package or file the error is about
	Err     error
}

// Error implements the error interface
func (e *YpmError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Subject, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *YpmError) Unwrap() error {
	return e.Err
}

// IsErrorType reports whether err wraps a YpmError of type t
func IsErrorType(err error, t ErrorType) bool {
	var ye *YpmError
	if errors.As(err, &ye) {
		return ye.Type == t
	}
	return false
}
