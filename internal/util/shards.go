package util

import "runtime"

// NextPow2 returns the smallest power of two >= x.
// x <= 1 yields 1; results that would overflow are clamped to 1<<63.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++
	if x == 0 {
		return 1 << 63
	}
	return x
}

// ShardCount picks a power-of-two shard count for a cache of the given
// capacity. requested > 0 is rounded up to a power of two and used as is.
// Otherwise the heuristic is nextPow2(2*GOMAXPROCS), clamped to 256, then
// halved until every shard holds at least minPerShard entries.
//
// Each shard runs its own zone layout, so tiny shards would leave the
// probation and hot zones with only a handful of slots.
func ShardCount(requested, capacity, minPerShard int) int {
	if requested > 0 {
		return int(NextPow2(uint64(requested)))
	}
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 2)))
	if n > 256 {
		n = 256
	}
	for n > 1 && capacity/n < minPerShard {
		n /= 2
	}
	return n
}

// ShardIndex maps a 64-bit hash to a shard. shards must be a power of two.
func ShardIndex(hash uint64, shards int) int {
	return int(hash & uint64(shards-1))
}
