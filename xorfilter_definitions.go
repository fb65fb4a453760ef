package xorfilter

// FingerprintWidth is the set of unsigned integer types this package can
// store a fingerprint in: either 8 or 16 bits, per the two supported
// xor filter variants.
type FingerprintWidth interface {
	uint8 | uint16
}

// Filter is an immutable approximate-membership structure for a static
// set of up to about 2^32 uint64 keys. Contains has no false negatives
// and a false-positive probability of approximately 2^-bits(W) per
// query, where bits(W) is 8 for Xor8 and 16 for Xor16.
//
// A Filter is built by Allocate followed by Populate, queried with
// Contains, and released with Free. It must not be queried concurrently
// with a call to Populate on the same Filter, but any number of
// goroutines may call Contains concurrently once Populate has returned.
type Filter[W FingerprintWidth] struct {
	// Seed is the hash-kernel seed chosen during Populate.
	Seed uint64
	// BlockLength is B, the length of each of the three fingerprint
	// blocks. The fingerprint array has length 3*BlockLength.
	BlockLength uint32
	// Fingerprints holds the three concatenated fingerprint blocks.
	// It is exclusively owned by the Filter.
	Fingerprints []W
}

// Contains reports whether key is likely a member of the set the filter
// was built from. It never returns false for a key that was present at
// build time. For an absent key it returns true with probability
// approximately 2^-bits(W). Contains performs no allocation and never
// mutates the filter.
func (filter *Filter[W]) Contains(key uint64) bool {
	hash := mixsplit(key, filter.Seed)
	f := W(fingerprint(hash))
	r0 := uint32(hash)
	r1 := uint32(rotl64(hash, 21))
	r2 := uint32(rotl64(hash, 42))
	h0 := reduce(r0, filter.BlockLength)
	h1 := reduce(r1, filter.BlockLength) + filter.BlockLength
	h2 := reduce(r2, filter.BlockLength) + 2*filter.BlockLength
	return f == (filter.Fingerprints[h0] ^ filter.Fingerprints[h1] ^ filter.Fingerprints[h2])
}

// SizeInBytes reports the memory footprint of the fingerprint array plus
// a fixed filter-header allowance (the Seed and BlockLength fields),
// matching the C reference's sizeof(struct) + fingerprint-array accounting.
func (filter *Filter[W]) SizeInBytes() int {
	var w W
	headerSize := 8 + 4 // Seed uint64 + BlockLength uint32
	return 3*int(filter.BlockLength)*sizeOf(w) + headerSize
}

// Free releases the fingerprint buffer and leaves the filter in a
// well-defined empty state. A freed filter must not be queried.
func (filter *Filter[W]) Free() {
	filter.Fingerprints = nil
	filter.BlockLength = 0
}

func sizeOf[W FingerprintWidth](w W) int {
	switch any(w).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	default:
		return 0
	}
}

// xorset is the transient per-slot build state: xormask is the XOR of
// every hash currently incident on the slot, count is the current
// degree. While count == 1, xormask is exactly the surviving key's hash.
type xorset struct {
	xormask uint64
	count   uint32
}

// hashes bundles a key's hash with its three derived slot indices.
type hashes struct {
	h  uint64
	h0 uint32
	h1 uint32
	h2 uint32
}

// h0h1h2 is hashes without the hash itself, used once the hash is
// already known (e.g. when re-deriving slots from a peeled entry).
type h0h1h2 struct {
	h0 uint32
	h1 uint32
	h2 uint32
}

// keyindex is one entry of the peeling stack: the key's hash and the
// slot it was peeled at.
type keyindex struct {
	hash  uint64
	index uint32
}
