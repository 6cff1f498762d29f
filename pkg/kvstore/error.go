package kvstore

import "errors"

// ErrUnavailable is returned when the backing store cannot be reached or a
// call to it timed out. Drivers wrap the underlying cause with it.
var ErrUnavailable = errors.New("key-value store unavailable")
