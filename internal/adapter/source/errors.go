package source

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means the source answered but listed nothing for the product.
	ErrNotFound = errors.New("product not found")
	// ErrUnavailable covers network failures, timeouts and HTTP error statuses.
	ErrUnavailable = errors.New("source unavailable")
	// ErrParse means the response could not be turned into a quotation.
	ErrParse = errors.New("unparseable response")
	// ErrBatchTooLarge rejects FetchMany calls over the batch cap.
	ErrBatchTooLarge = errors.New("too many products in batch")
)

// Reason maps a fetch error to the short code reported in raw results.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrParse):
		return "parse_error"
	default:
		return "unavailable"
	}
}
