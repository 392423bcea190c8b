package nattee

import (
	"errors"
	"fmt"
)

// LoginFailed covers both a missing authenticity token and a login
// POST that did not come back with a success status. Nothing can be
// scraped without a session, so callers treat it as fatal.
var LoginFailed = errors.New("failed to login to the grader")

// ErrExtraction marks a required element, pattern match or recognized
// value missing while parsing a page. It always aborts the resolution
// of the submission, hall-of-fame table or test-case page it occurred
// in; it is never turned into a partial record.
var ErrExtraction = errors.New("extraction failed")

// ErrValidation marks a structural mismatch in a catalog row. Unlike
// extraction errors it is caught locally: the row is logged and
// skipped, the rest of the catalog survives.
var ErrValidation = errors.New("validation failed")

func extractionErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrExtraction, fmt.Sprintf(format, args...))
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
