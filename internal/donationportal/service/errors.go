package service

import (
	"errors"
	"strings"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConfiguration    = errors.New("payment service configuration error")
	ErrGateway          = errors.New("payment gateway error")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrStore            = errors.New("store error")
	ErrUnauthorized     = errors.New("unauthorized")
)

type Violation struct {
	Field   string
	Message string
}

// ValidationError lists every violated field of one input.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type violations []Violation

func (vs *violations) add(field, message string) {
	*vs = append(*vs, Violation{Field: field, Message: message})
}

func (vs violations) err() error {
	if len(vs) == 0 {
		return nil
	}
	return &ValidationError{Violations: vs}
}
