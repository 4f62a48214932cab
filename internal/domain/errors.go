package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConfiguration is returned when an operation needs a setting that was
// never provided, such as the routing API key. No network I/O happens first.
// Handlers should map this to HTTP 503.
var ErrConfiguration = errors.New("configuration error")

// ErrUpstream is returned when a third-party provider (routing, geocoding)
// answers with a non-2xx status or an unusable body.
// Handlers should map this to HTTP 502.
var ErrUpstream = errors.New("upstream provider error")
