package errors

import (
	stderrors "errors"
)

// Exit codes returned by the processor for each failure class.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
	ExitInput   = 3
	ExitData    = 4
	ExitStorage = 5
)

// TypeOf returns the type of the outermost AppError in err's chain, or an
// empty ErrorType when err carries none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch TypeOf(err) {
	case ErrTypeConfig:
		return ExitConfig
	case ErrTypeNotFound, ErrTypeDecode:
		return ExitInput
	case ErrTypeParsing, ErrTypeSchema, ErrTypeValidation:
		return ExitData
	case ErrTypeStorage:
		return ExitStorage
	default:
		return ExitFailure
	}
}

// Is and As re-export the standard helpers so callers importing this package
// under its own name do not also need the standard errors package.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }
