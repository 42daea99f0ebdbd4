package imaging

import "errors"

// Sentinel errors for image buffer operations.
var (
	// ErrNotFound is returned when a source path does not exist.
	ErrNotFound = errors.New("image not found")

	// ErrDecodeFailure is returned when a file exists but cannot be decoded.
	ErrDecodeFailure = errors.New("image decode failed")

	// ErrNoInput is returned by a transform invoked before any upstream buffer exists.
	ErrNoInput = errors.New("no input image")

	// ErrWriteFailure is returned when a buffer cannot be encoded to the requested path.
	ErrWriteFailure = errors.New("image write failed")

	// ErrInvalidParameter is returned for malformed raw buffer arguments.
	ErrInvalidParameter = errors.New("invalid parameter")
)
