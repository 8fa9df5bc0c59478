package records

import "errors"

// ErrInvalidKey is returned when a composite "{source}+{id}" key or its
// parts are malformed.
var ErrInvalidKey = errors.New("invalid composite key")
