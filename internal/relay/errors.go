// ABOUTME: Domain error taxonomy for the relay core
// ABOUTME: Distinguishes caller errors from informational and infrastructure faults

package relay

import "errors"

// ErrValidation is returned when a required field is missing or empty.
// It is a caller error and must not be retried.
var ErrValidation = errors.New("validation failed")

// ErrNoSubscribers is returned by Ingest when the event's source has no
// registered subscribers. It signals 404 at the boundary and is
// informational, not a system fault.
var ErrNoSubscribers = errors.New("no subscribers for source")
