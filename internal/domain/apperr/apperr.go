package apperr

import "errors"

// Kind classifies a failure so adapters can map it without knowing the
// concrete sentinel.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPrecondition
	KindNotFound
	KindAuthorization
	KindGateway
	KindConcurrency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindGateway:
		return "gateway"
	case KindConcurrency:
		return "concurrency"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func Validation(msg string) *Error    { return New(KindValidation, msg) }
func Precondition(msg string) *Error  { return New(KindPrecondition, msg) }
func NotFound(msg string) *Error      { return New(KindNotFound, msg) }
func Authorization(msg string) *Error { return New(KindAuthorization, msg) }
func Gateway(msg string) *Error       { return New(KindGateway, msg) }
func Concurrency(msg string) *Error   { return New(KindConcurrency, msg) }

// KindOf walks the wrap chain; unknown errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrForbidden        = Authorization("actor is not allowed to perform this action")
	ErrConcurrentUpdate = Concurrency("resource was modified concurrently, retry the request")
)
