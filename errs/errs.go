// Package errs defines the sentinel error kinds shared across the
// refactor/reconstruct pipeline, in the style of the JPEG 2000 HTJ2K
// decoder's leaf error package: plain errors.New values, wrapped with
// %w at each boundary and compared with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidArgument marks a caller-supplied parameter that
	// violates a hard precondition (K == 0, K_requested > K, an
	// unsupported element or bitplane word type, or a target level
	// deeper than the array supports).
	ErrInvalidArgument = errors.New("mdr: invalid argument")

	// ErrMalformedInput marks a metadata blob or level component
	// stream that is structurally inconsistent (truncated, wrong
	// dimension count, size totals that don't add up, a stopping
	// index beyond K).
	ErrMalformedInput = errors.New("mdr: malformed input")

	// ErrIoError marks a failure at the writer/retriever boundary.
	ErrIoError = errors.New("mdr: io error")

	// ErrCodecFailure marks a lossless decompress whose output size
	// disagrees with its recorded expected size.
	ErrCodecFailure = errors.New("mdr: codec failure")
)
