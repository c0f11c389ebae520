// Package viewcache provides a time-based cache of rendered views keyed by
// request path, with explicit invalidation after committed mutations.
package viewcache
