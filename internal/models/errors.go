package models

import "fmt"

// ErrKind is the small error taxonomy that crosses every adapter, pipeline,
// and HTTP boundary in this service. Handlers and the Poller switch on Kind,
// never on error string content.
type ErrKind string

const (
	KindNotFound       ErrKind = "not_found"
	KindTransient      ErrKind = "transient"
	KindPermanent      ErrKind = "permanent"
	KindSchema         ErrKind = "schema"
	KindValidation     ErrKind = "validation"
	KindConflict       ErrKind = "conflict"
	KindNotImplemented ErrKind = "not_implemented"
)

// DomainError is the concrete type behind every classified failure. Adapters,
// the option-chain pipeline, and HTTP handlers all produce and consume this
// type instead of raw errors from transport libraries.
type DomainError struct {
	Kind    ErrKind
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error { return e.Cause }

func NewNotFound(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewTransient(cause error, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindTransient, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func NewPermanent(cause error, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindPermanent, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func NewSchemaError(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindSchema, Message: fmt.Sprintf(format, args...)}
}

func NewValidation(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConflict(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewNotImplemented(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindNotImplemented, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the taxonomy kind from any error, defaulting to
// KindTransient for errors this service didn't classify itself (network
// library errors that escaped an adapter's normalization, for instance).
func KindOf(err error) ErrKind {
	if de, ok := err.(*DomainError); ok {
		return de.Kind
	}
	return KindTransient
}
