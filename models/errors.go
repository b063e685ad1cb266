package models

import (
	"github.com/cockroachdb/errors"
)

// Base errors, related to default API status codes
var (
	// BadParameterError is rendered with the http status code 400
	BadParameterError = errors.New("bad parameter")

	// UnAuthorizedError is rendered with the http status code 401
	UnAuthorizedError = errors.New("unauthorized")

	// ForbiddenError is rendered with the http status code 403
	ForbiddenError = errors.New("forbidden")

	// NotFoundError is rendered with the http status code 404
	NotFoundError = errors.New("not found")

	// ConflictError is rendered with the http status code 409
	ConflictError = errors.New("duplicate value")
)

// DB related errors
var (
	ErrIgnoreRollBackError = errors.New("ignore rollback error")
)

// Ledger related errors
var (
	// ErrAppendRace is returned when two appends raced for the ledger head and
	// the losing insert hit the sequence uniqueness constraint. The append did
	// not happen and can be retried against the new latest hash.
	ErrAppendRace = errors.Wrap(ConflictError, "concurrent append on the audit ledger")

	ErrUnknownActorType = errors.Wrap(BadParameterError, "unknown actor type")
)
