package catalog

import "errors"

// Error kinds surfaced by the managers. Match them with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflict")
	ErrUpstreamAsset = errors.New("asset store failure")
	ErrStore         = errors.New("metadata store failure")
)

// Error carries a caller facing message together with its kind and cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

func invalid(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

func conflict(msg string) error {
	return &Error{Kind: ErrConflict, Msg: msg}
}

func upstream(msg string, err error) error {
	return &Error{Kind: ErrUpstreamAsset, Msg: msg, Err: err}
}

func storeFailure(msg string, err error) error {
	return &Error{Kind: ErrStore, Msg: msg, Err: err}
}
