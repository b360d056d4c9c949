// Package errs provides the structured error type shared by every deckguard
// component. Errors carry a stable machine-checkable code, the operation that
// produced them, and optional detail fields so a calling layer (CLI or agent)
// can map a failure to a remediation action without parsing message text.
package errs

import (
	stderrs "errors"
	"fmt"
)

// Code identifies an error class on the wire. Values are stable; add sparingly.
type Code string

const (
	// CodePathInvalid covers bad extensions, missing files, unwritable files,
	// and paths escaping the allowed roots.
	CodePathInvalid Code = "PATH_INVALID"

	// CodeLockTimeout means exclusive access could not be acquired in time.
	// Safely retryable by the caller.
	CodeLockTimeout Code = "LOCK_TIMEOUT"

	// CodeApprovalRequired means a destructive operation lacked a valid
	// approval artifact (missing, malformed, expired, wrong scope, or used).
	CodeApprovalRequired Code = "APPROVAL_REQUIRED"

	// CodeGeometryInvalid means a position/size spec could not be resolved.
	CodeGeometryInvalid Code = "GEOMETRY_INVALID"

	// CodeColorInvalid means a color encoding could not be parsed.
	CodeColorInvalid Code = "COLOR_INVALID"

	// CodeIndexOutOfRange means a slide/shape index was outside the current
	// list bounds. Details carry the bounds so the caller can re-fetch.
	CodeIndexOutOfRange Code = "INDEX_OUT_OF_RANGE"

	// CodeVersionConflict means the caller's expected version did not match
	// the freshly captured one; the document changed externally.
	CodeVersionConflict Code = "VERSION_CONFLICT"

	// CodeDocumentInvalid means the deck file exists but could not be parsed.
	CodeDocumentInvalid Code = "DOCUMENT_INVALID"

	// CodeUnknownOperation means the facade does not recognize the operation.
	CodeUnknownOperation Code = "UNKNOWN_OPERATION"

	// CodeRequestInvalid means the request shape is wrong for the operation
	// (missing or malformed arguments).
	CodeRequestInvalid Code = "REQUEST_INVALID"

	// CodeInternal is for unclassified failures, including recovered panics.
	CodeInternal Code = "INTERNAL"
)

// Error is the structured error type. msg is developer facing; code is
// machine facing; op is the operation that was running; details are
// free-form key/values surfaced verbatim on the wire.
type Error struct {
	orig    error
	msg     string
	code    Code
	op      string
	details map[string]any
}

// Wire is the JSON-serializable form embedded in the result envelope.
type Wire struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code.
func (e *Error) Code() Code { return e.code }

// Op returns the operation label, if set.
func (e *Error) Op() string { return e.op }

// Details returns the detail map (may be nil).
func (e *Error) Details() map[string]any { return e.details }

// ToWire converts an *Error into its wire payload.
func (e *Error) ToWire() Wire {
	w := Wire{Code: e.code, Message: e.msg, Details: e.details}
	if e.op != "" {
		if w.Details == nil {
			w.Details = map[string]any{}
		}
		if _, ok := w.Details["operation"]; !ok {
			w.Details["operation"] = e.op
		}
	}
	return w
}

// WireFrom converts any error into a wire payload with best-effort mapping.
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: CodeInternal, Message: err.Error()}
}

// As unwraps and returns (*Error, true) if err is one of ours.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf extracts the Code from any error, defaulting to CodeInternal.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool { return CodeOf(err) == code }

// WithOp attaches an operation label (copy-on-write). Foreign errors are
// wrapped so the label survives to the wire form.
func WithOp(err error, op string) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return &Error{code: CodeInternal, msg: err.Error(), op: op, orig: err}
}

// WithDetail attaches one detail key/value (copy-on-write).
func WithDetail(err error, key string, value any) error {
	if e, ok := As(err); ok {
		c := *e
		c.details = cloneDetails(e.details)
		c.details[key] = value
		return &c
	}
	return err
}

func cloneDetails(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// New returns a new *Error with the given code and message.
func New(code Code, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message.
func Newf(code Code, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message.
func Wrap(orig error, code Code, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message.
func Wrapf(orig error, code Code, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// NewD returns a new *Error with code, message, and a detail map.
func NewD(code Code, msg string, details map[string]any) error {
	return &Error{code: code, msg: msg, details: details}
}
