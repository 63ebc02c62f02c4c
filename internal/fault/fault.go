// Package fault classifies errors returned by the dialog-bot and function
// permission APIs into a small set of kinds, so callers can tell "absent"
// apart from every other failure.
package fault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// Kind is the coarse class of a remote failure.
type Kind int

const (
	Unknown Kind = iota
	NotFound
	AlreadyExists
	Unauthorized
	Validation
	Transient
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case AlreadyExists:
		return "already_exists"
	case Unauthorized:
		return "unauthorized"
	case Validation:
		return "validation"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error attaches a Kind and the failing operation to an underlying error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with an explicit kind.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validationf builds a Validation error from a format string.
func Validationf(format string, args ...any) error {
	return &Error{Kind: Validation, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err and wraps it with op. A nil err returns nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Classify(err), Op: op, Err: err}
}

var codeKinds = map[string]Kind{
	"NotFoundException":         NotFound,
	"ResourceNotFoundException": NotFound,

	"ConflictException":           AlreadyExists,
	"ResourceConflictException":   AlreadyExists,
	"PreconditionFailedException": AlreadyExists,
	"ResourceInUseException":      AlreadyExists,

	"UnrecognizedClientException": Unauthorized,
	"ExpiredTokenException":       Unauthorized,
	"InvalidClientTokenId":        Unauthorized,
	"InvalidSignatureException":   Unauthorized,

	"BadRequestException":            Validation,
	"InvalidParameterValueException": Validation,
	"ValidationException":            Validation,
	"PolicyLengthExceededException":  Validation,

	"LimitExceededException":      Transient,
	"TooManyRequestsException":    Transient,
	"ThrottlingException":         Transient,
	"InternalFailureException":    Transient,
	"ServiceException":            Transient,
	"ServiceUnavailableException": Transient,
}

// Classify returns the kind of err. A *Error anywhere in the chain wins,
// then the service error code, then the HTTP status code.
func Classify(err error) Kind {
	if err == nil {
		return Unknown
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if k, ok := codeKinds[apiErr.ErrorCode()]; ok {
			return k
		}
		code := apiErr.ErrorCode()
		if strings.HasPrefix(code, "AccessDenied") || strings.HasSuffix(code, "TokenException") {
			return Unauthorized
		}
	}

	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) {
		return kindForStatus(respErr.HTTPStatusCode())
	}

	return Unknown
}

func kindForStatus(code int) Kind {
	switch {
	case code == 404:
		return NotFound
	case code == 409:
		return AlreadyExists
	case code == 401 || code == 403:
		return Unauthorized
	case code == 400:
		return Validation
	case code == 429 || code >= 500:
		return Transient
	default:
		return Unknown
	}
}

// IsNotFound reports whether err classifies as NotFound.
func IsNotFound(err error) bool { return Classify(err) == NotFound }

// IsAlreadyExists reports whether err classifies as AlreadyExists.
func IsAlreadyExists(err error) bool { return Classify(err) == AlreadyExists }
