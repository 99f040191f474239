// Package apperror classifies the failures a request can end in so the HTTP
// layer can map them to a status code and a readable message.
package apperror

import (
	"errors"
	"fmt"
)

// Kind groups errors by who can fix them
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is bad or missing form input
	KindValidation
	// KindAuth is bad credentials or a duplicate username
	KindAuth
	// KindBusinessRule is insufficient funds or shares
	KindBusinessRule
	// KindUpstream is an unavailable or unusable quote provider
	KindUpstream
	// KindPersistence is a failed store read or write
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindBusinessRule:
		return "business_rule"
	case KindUpstream:
		return "upstream"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a classified application error
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so a wrapped copy of a sentinel still compares equal to it
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation errors
var (
	ErrInvalidInput     = newError(KindValidation, "invalid_input", "username and password are required")
	ErrPasswordMismatch = newError(KindValidation, "password_mismatch", "passwords must match")
	ErrInvalidShares    = newError(KindValidation, "invalid_shares", "invalid shares")
	ErrInvalidSymbol    = newError(KindValidation, "invalid_symbol", "invalid symbol")
)

// Auth errors
var (
	ErrDuplicateUsername = newError(KindAuth, "duplicate_username", "username already exists")
	ErrUserNotFound      = newError(KindAuth, "user_not_found", "user not found")
	ErrBadPassword       = newError(KindAuth, "bad_password", "invalid password")
	ErrBadCredentials    = newError(KindAuth, "bad_credentials", "invalid username and/or password")
)

// Business rule errors
var (
	ErrInsufficientFunds  = newError(KindBusinessRule, "insufficient_funds", "insufficient cash")
	ErrInsufficientShares = newError(KindBusinessRule, "insufficient_shares", "insufficient shares")
)

// ErrQuoteUnavailable is returned when the quote provider gives no usable price
var ErrQuoteUnavailable = newError(KindUpstream, "quote_unavailable", "quote unavailable")

// Upstream wraps a quote provider failure
func Upstream(err error) error {
	return &Error{Kind: KindUpstream, Code: ErrQuoteUnavailable.Code, Message: ErrQuoteUnavailable.Message, Err: err}
}

// Persistence wraps a failed store operation
func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Code: "persistence", Message: fmt.Sprintf("failed to %s", op), Err: err}
}

// KindOf returns the kind of the first classified error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the code of the first classified error in err's chain
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}

// MessageOf returns the user-facing message for err. Unclassified errors get a
// generic message so internal details are not exposed.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
