// Package partition implements the mapper's shard-selection function,
// spec.md §4.4/§9: partition by term, each term's whole posting list
// assigned to exactly one shard by a stable hash modulo the reducer count.
// This is the "chosen contract" variant; it minimizes write amplification
// over the broadcast-to-all-shards alternative the original source also
// exhibits, and keeps the reducer unchanged.
//
// Hashing is xxhash.Sum64 (github.com/cespare/xxhash/v2), the hash the
// teacher repo already uses for fast content fingerprints
// (internal/core/file_content_store.go).
package partition

import "github.com/cespare/xxhash/v2"

// ShardFor returns the shard index a term's whole posting list belongs to.
// numShards must be > 0.
func ShardFor(term string, numShards uint32) uint32 {
	return uint32(xxhash.Sum64String(term) % uint64(numShards))
}
