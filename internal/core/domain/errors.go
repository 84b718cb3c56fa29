package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrGroupNotFound indicates the named retrieval group has no storage unit.
	ErrGroupNotFound = errors.New("group not found")

	// ErrDimensionMismatch indicates a query vector and a stored vector have
	// different lengths. The group was built with a different embedding model.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingFailed indicates the runtime could not produce an embedding.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrServiceUnavailable indicates the backing runtime could not serve a
	// request even after the one-shot restart-and-retry recovery.
	ErrServiceUnavailable = errors.New("inference runtime unavailable")

	// ErrModelInstallTimeout indicates a pulled model did not become
	// available within the bounded poll window.
	ErrModelInstallTimeout = errors.New("model install timed out")

	// ErrMalformedResponse indicates a runtime response did not match the
	// documented endpoint contract.
	ErrMalformedResponse = errors.New("malformed runtime response")

	// ErrUnsupportedModelHandle indicates the runtime rejected the model
	// handle. Restarting cannot fix an invalid handle, so this is terminal.
	ErrUnsupportedModelHandle = errors.New("unsupported model handle")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFileType indicates a file type the ingester cannot read.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
