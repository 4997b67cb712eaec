package client

import (
	"errors"
	"fmt"
)

// ErrMissingServer is returned when the document declares no server entry.
var ErrMissingServer = errors.New("client: document has no server entries")

// ResolutionError reports a server URL that is not a well-formed URL after
// variable substitution.
type ResolutionError struct {
	URL   string // the URL as resolved
	Cause error
}

func (e *ResolutionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("client: failed to read endpoint details of the server: %s", e.URL)
	}
	return fmt.Sprintf("client: failed to read endpoint details of the server: %s: %v", e.URL, e.Cause)
}

func (e *ResolutionError) Unwrap() error { return e.Cause }
