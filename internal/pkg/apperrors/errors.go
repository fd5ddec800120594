package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConfiguration indicates missing or malformed settings, such as an unknown time zone.
var ErrConfiguration = errors.New("configuration error")

// ErrComputation indicates malformed data met while aggregating, such as a non-numeric amount.
var ErrComputation = errors.New("computation error")

// ErrExternalIO indicates a failure talking to storage, the mail provider or the filesystem.
var ErrExternalIO = errors.New("external io error")
