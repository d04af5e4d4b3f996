// Package apperr is the storefront's error taxonomy. Every failure that
// reaches a view is one of these kinds, so views can decide between failing
// open, blocking with a notice, or redirecting to login.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	// NetworkFailure: the request could not complete.
	NetworkFailure Kind = "network_failure"
	// AuthRequired: no session, or the service refused the token.
	AuthRequired Kind = "auth_required"
	// Forbidden: the session lacks the admin capability.
	Forbidden Kind = "forbidden"
	// ServiceRejected: non-success status carrying the service's message.
	ServiceRejected Kind = "service_rejected"
	// DecodeFailure: a token or response body could not be decoded.
	DecodeFailure Kind = "decode_failure"
	// Invalid: rejected client-side before any request was sent.
	Invalid Kind = "invalid"
	// PriceChanged: revalidation found prices that differ from the ones shown.
	PriceChanged Kind = "price_changed"
)

const (
	genericNotice = "Something went wrong. Please try again later."
	loginNotice   = "You must be logged in to proceed."
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func NetworkErr(err error) *Error {
	return &Error{Kind: NetworkFailure, Err: err}
}

func AuthRequiredErr(msg string) *Error {
	return &Error{Kind: AuthRequired, Status: http.StatusUnauthorized, Message: msg}
}

func ForbiddenErr(msg string) *Error {
	return &Error{Kind: Forbidden, Status: http.StatusForbidden, Message: msg}
}

// RejectedErr keeps the service's message verbatim; it is what the user sees.
func RejectedErr(status int, msg string) *Error {
	return &Error{Kind: ServiceRejected, Status: status, Message: msg}
}

func DecodeErr(msg string, err error) *Error {
	return &Error{Kind: DecodeFailure, Message: msg, Err: err}
}

func InvalidErr(msg string) *Error {
	return &Error{Kind: Invalid, Status: http.StatusBadRequest, Message: msg}
}

func PriceChangedErr(msg string) *Error {
	return &Error{Kind: PriceChanged, Status: http.StatusConflict, Message: msg}
}

func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

// KindOf returns the kind of err, or "" for errors outside the taxonomy.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return ""
}

// HTTPStatus maps err onto the status the storefront server answers with.
func HTTPStatus(err error) int {
	ae, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case AuthRequired:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case Invalid:
		return http.StatusBadRequest
	case PriceChanged:
		return http.StatusConflict
	case ServiceRejected:
		if ae.Status >= 400 && ae.Status < 500 {
			return ae.Status
		}
		return http.StatusBadGateway
	case NetworkFailure, DecodeFailure:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Notice is the user-facing text for err. Service messages pass through
// untouched; network and unexpected failures get a generic notice.
func Notice(err error) string {
	ae, ok := As(err)
	if !ok {
		return genericNotice
	}
	switch ae.Kind {
	case NetworkFailure:
		return genericNotice
	case AuthRequired:
		if ae.Message != "" {
			return ae.Message
		}
		return loginNotice
	}
	if ae.Message != "" {
		return ae.Message
	}
	return genericNotice
}

// Redirect returns where a blocking notice should send the user, if anywhere.
func Redirect(err error) string {
	switch KindOf(err) {
	case AuthRequired:
		return "/login"
	case Forbidden:
		return "/"
	}
	return ""
}
