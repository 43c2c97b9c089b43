package bitcoin

import "errors"

// ErrWrongSize is returned when a fixed-size value is built from the wrong
// number of bytes.
var ErrWrongSize = errors.New("wrong size")
