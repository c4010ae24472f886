// Package exclusion persists the ids a user deleted from the visible list.
//
// A Store keeps one JSON array of numeric ids per session under the key
// "<session>:<storeID>" in any KV backend (MemoryKV here, redis.TextStore and
// sqlite.KV elsewhere). Loaded ids form a Set that the overlay reads.
package exclusion
