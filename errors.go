package xorfilter

import "errors"

// ErrTooManyIterations is returned by Populate when peeling fails to
// converge within MaxIterations attempts. This is almost always a sign
// of duplicate keys in the input, which Populate does not deduplicate.
var ErrTooManyIterations = errors.New("too many iterations, you probably have duplicate keys")

// ErrAllocationTooLarge is returned by Allocate when the requested key
// count would overflow the internal block-length computation, the
// Go-level analogue of a malloc failure in the reference C allocator.
var ErrAllocationTooLarge = errors.New("xorfilter: requested size overflows block length computation")

// MaxIterations bounds the number of reseed-and-retry attempts Populate
// makes before giving up and returning ErrTooManyIterations.
var MaxIterations = 100
