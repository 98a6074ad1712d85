package models

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind int

const (
	KindInvalidRequest ErrorKind = iota + 1
	KindTransport
	KindSchema
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindTransport:
		return "TransportError"
	case KindSchema:
		return "SchemaError"
	default:
		return "UnknownError"
	}
}

// AnalysisError is the single failure value surfaced by an analysis round trip.
type AnalysisError struct {
	Kind ErrorKind
	// Field names the offending request or response field, when there is one.
	Field string
	// StatusCode is set for non-2xx backend responses.
	StatusCode int
	Err        error
}

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrInvalidRequest = &AnalysisError{Kind: KindInvalidRequest}
	ErrTransport      = &AnalysisError{Kind: KindTransport}
	ErrSchema         = &AnalysisError{Kind: KindSchema}
)

func NewInvalidRequestError(field string, err error) *AnalysisError {
	return &AnalysisError{Kind: KindInvalidRequest, Field: field, Err: err}
}

func NewTransportError(statusCode int, err error) *AnalysisError {
	return &AnalysisError{Kind: KindTransport, StatusCode: statusCode, Err: err}
}

func NewSchemaError(field string, err error) *AnalysisError {
	return &AnalysisError{Kind: KindSchema, Field: field, Err: err}
}

func (e *AnalysisError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %q)", e.Field)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first AnalysisError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}
