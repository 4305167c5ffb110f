package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound             = errors.New("entity not found")
	ErrAlreadyExists        = errors.New("entity already exists")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidConfiguration = errors.New("invalid debate configuration")
	ErrInvalidState         = errors.New("operation not valid for current session status")
	ErrCompletionFailed     = errors.New("model completion failed")
	ErrSynthesisFailed      = errors.New("consensus synthesis failed")
	ErrTooManyDebates       = errors.New("too many concurrent debates")
	ErrBuiltinTemplate      = errors.New("built-in templates cannot be modified")
)
