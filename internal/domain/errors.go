package domain

import "errors"

// Error categories used across the pipeline. Callers classify failures with
// errors.Is; messages carry the specifics.
var (
	// ErrValidation covers bad input: empty documents, empty questions,
	// invalid chunk or index configuration. Fatal for the operation.
	ErrValidation = errors.New("validation failed")

	// ErrExtraction covers unsupported or unreadable upload files.
	ErrExtraction = errors.New("text extraction failed")

	// ErrDimensionMismatch is returned when a vector does not match the
	// index's fixed dimension. Never retried.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmbedding wraps failures of the embedding capability.
	ErrEmbedding = errors.New("embedding provider failed")

	// ErrGeneration wraps failures of the generation capability.
	ErrGeneration = errors.New("text generation failed")

	// ErrPersistence marks a failed index snapshot. The index keeps serving
	// from memory; the operator is warned through the log.
	ErrPersistence = errors.New("index persistence failed")
)
