package chunker

import "errors"

var (
	// ErrInvalidChunkSize indicates a chunk size <= 0
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrInvalidOverlap indicates a negative overlap
	ErrInvalidOverlap = errors.New("overlap must be non-negative")

	// ErrOverlapTooLarge indicates overlap >= chunk size, which would never advance
	ErrOverlapTooLarge = errors.New("overlap must be less than chunk size")

	// ErrEmptyText indicates there is nothing to split
	ErrEmptyText = errors.New("cannot split empty text")

	// ErrNoCounter indicates the splitter was built without a token counter
	ErrNoCounter = errors.New("token counter is required")
)
