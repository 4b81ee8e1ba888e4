package dispatch

import "errors"

// ErrDuplicateRoute is returned when a static routing key is registered
// twice. Duplicate registrations are almost always copy-paste bugs, so
// they fail at startup instead of silently overriding.
var ErrDuplicateRoute = errors.New("dispatch: routing key already registered")
