package xorfilter

// murmur64 is the MurmurHash3 finalizer.
// https://github.com/aappleby/smhasher/blob/master/src/MurmurHash3.cpp
func murmur64(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// mixsplit combines a key and a seed into a single 64-bit hash.
func mixsplit(key, seed uint64) uint64 {
	return murmur64(key + seed)
}

// reduce maps a 32-bit hash approximately uniformly into [0, n).
// http://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
func reduce(hash, n uint32) uint32 {
	return uint32((uint64(hash) * uint64(n)) >> 32)
}

// fingerprint folds a 64-bit hash down to its low and high halves.
// The caller truncates the result to the fingerprint width actually stored.
func fingerprint(hash uint64) uint64 {
	return hash ^ (hash >> 32)
}

// rotl64 rotates n left by c bits, c taken mod 64.
func rotl64(n uint64, c uint) uint64 {
	return (n << (c & 63)) | (n >> ((-c) & 63))
}

// splitmix64 advances *seed and returns the next pseudo-random value.
// Used only to derive and reseed the filter's hash-kernel seed.
func splitmix64(seed *uint64) uint64 {
	*seed += 0x9E3779B97F4A7C15
	z := *seed
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
