package partition

import "errors"

// ErrTooManyNodes is returned when an assignment has more entries than a
// uint32 node id can address.
var ErrTooManyNodes = errors.New("partition: more than 2^32 nodes")
