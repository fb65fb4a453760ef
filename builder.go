package xorfilter

import "math"

// Allocate sizes and allocates a Filter able to hold up to n keys, per
// spec's capacity formula: floor(1.23*n) + 32, rounded down to a
// multiple of 3. It does not populate the filter; call Populate next.
func Allocate[W FingerprintWidth](n int) (*Filter[W], error) {
	if n < 0 {
		n = 0
	}
	capacity64 := 32 + int64(1.23*float64(n)) // truncates toward zero == floor for n >= 0
	if capacity64 > math.MaxUint32 {
		return nil, ErrAllocationTooLarge
	}
	capacity := uint32(capacity64)
	capacity = capacity / 3 * 3 // round down to a multiple of 3

	filter := &Filter[W]{}
	filter.Fingerprints = make([]W, capacity) // zero-filled by make
	filter.BlockLength = capacity / 3
	return filter, nil
}

// Populate fills filter (which must come from Allocate) with the given
// keys. The caller is responsible for ensuring keys contains no
// duplicates; Populate may return ErrTooManyIterations otherwise.
// Populate replaces filter.Seed and filter.Fingerprints.
func (filter *Filter[W]) Populate(keys []uint64) error {
	var bld Builder[W]
	return bld.Populate(filter, keys)
}

// Populate8 allocates and populates a Xor8 filter from keys in one call.
func Populate8(keys []uint64) (*Xor8, error) {
	var bld Builder[uint8]
	return bld.PopulateNew(keys)
}

// Populate16 allocates and populates a Xor16 filter from keys in one call.
func Populate16(keys []uint64) (*Xor16, error) {
	var bld Builder[uint16]
	return bld.PopulateNew(keys)
}

// Builder holds reusable transient build buffers so that repeated filter
// construction has lower garbage-collection overhead than allocating
// fresh sets/Q/stack buffers on every call. The zero value is ready to use.
type Builder[W FingerprintWidth] struct {
	sets  []xorset
	q     []uint32
	stack []keyindex
}

// PopulateNew allocates a new filter sized for keys and populates it.
func (bld *Builder[W]) PopulateNew(keys []uint64) (*Filter[W], error) {
	filter, err := Allocate[W](len(keys))
	if err != nil {
		return nil, err
	}
	if err := bld.Populate(filter, keys); err != nil {
		return nil, err
	}
	return filter, nil
}

// Populate fills filter (which must come from Allocate) with keys,
// reusing bld's transient buffers across calls.
func (bld *Builder[W]) Populate(filter *Filter[W], keys []uint64) error {
	size := len(keys)
	stack, err := bld.peel(keys, filter)
	if err != nil {
		return err
	}

	for i := size - 1; i >= 0; i-- {
		ki := stack[i]
		hh := splitSlots(ki.hash, filter.BlockLength)
		filter.Fingerprints[ki.index] = 0
		val := W(fingerprint(ki.hash))
		val ^= filter.Fingerprints[hh.h0] ^ filter.Fingerprints[hh.h1] ^ filter.Fingerprints[hh.h2]
		filter.Fingerprints[ki.index] = val
	}
	return nil
}

// peel runs the outer reseed loop and the peeling inner loop, returning
// the N-entry peeling stack (ordered earliest-peeled first) on success.
func (bld *Builder[W]) peel(keys []uint64, filter *Filter[W]) ([]keyindex, error) {
	size := len(keys)
	blockLength := filter.BlockLength
	arrayLength := int(blockLength) * 3

	bld.sets = ensureXorsets(bld.sets, arrayLength)
	bld.q = ensureUint32s(bld.q, arrayLength)
	bld.stack = ensureKeyindexes(bld.stack, size)

	sets := bld.sets
	q := bld.q
	stack := bld.stack

	var rngCounter uint64 = 1
	filter.Seed = splitmix64(&rngCounter)

	for iteration := 0; ; iteration++ {
		if iteration >= MaxIterations {
			return nil, ErrTooManyIterations
		}

		for i := range sets {
			sets[i] = xorset{}
		}
		for _, k := range keys {
			hs := hashKey(k, filter.Seed, blockLength)
			sets[hs.h0].xormask ^= hs.h
			sets[hs.h0].count++
			sets[hs.h1].xormask ^= hs.h
			sets[hs.h1].count++
			sets[hs.h2].xormask ^= hs.h
			sets[hs.h2].count++
		}

		qsize := 0
		for i, s := range sets {
			if s.count == 1 {
				q[qsize] = uint32(i)
				qsize++
			}
		}

		stacksize := 0
		for qsize > 0 {
			qsize--
			index := q[qsize]
			if sets[index].count != 1 {
				continue // stale entry, already peeled via another edge
			}
			h := sets[index].xormask
			stack[stacksize] = keyindex{hash: h, index: index}
			stacksize++

			hh := splitSlots(h, blockLength)
			for _, j := range [3]uint32{hh.h0, hh.h1, hh.h2} {
				sets[j].xormask ^= h
				sets[j].count--
				if sets[j].count == 1 {
					q[qsize] = j
					qsize++
				}
			}
		}

		if stacksize == size {
			return stack[:size], nil
		}

		filter.Seed = splitmix64(&rngCounter)
	}
}

// hashKey computes a key's hash and its three block-offset slot indices.
func hashKey(key, seed uint64, blockLength uint32) hashes {
	hash := mixsplit(key, seed)
	hh := splitSlots(hash, blockLength)
	return hashes{h: hash, h0: hh.h0, h1: hh.h1, h2: hh.h2}
}

// splitSlots derives the three block-offset slot indices from an
// already-computed hash: h0 in [0,B), h1 in [B,2B), h2 in [2B,3B).
func splitSlots(hash uint64, blockLength uint32) h0h1h2 {
	r0 := uint32(hash)
	r1 := uint32(rotl64(hash, 21))
	r2 := uint32(rotl64(hash, 42))
	return h0h1h2{
		h0: reduce(r0, blockLength),
		h1: reduce(r1, blockLength) + blockLength,
		h2: reduce(r2, blockLength) + 2*blockLength,
	}
}

func ensureXorsets(v []xorset, n int) []xorset {
	if cap(v) < n {
		return make([]xorset, n)
	}
	v = v[:n]
	for i := range v {
		v[i] = xorset{}
	}
	return v
}

func ensureUint32s(v []uint32, n int) []uint32 {
	if cap(v) < n {
		return make([]uint32, n)
	}
	return v[:n]
}

func ensureKeyindexes(v []keyindex, n int) []keyindex {
	if cap(v) < n {
		return make([]keyindex, n)
	}
	return v[:n]
}
