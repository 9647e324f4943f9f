// Package blockpool provides per-Context reuse of block-entry arenas
// across successive Compress calls (spec.md §5: "A BlockEntry pool/cache
// hint is registered at first context creation"). Each Context owns one
// Pool for its own lifetime: repeated Compress calls on the same Context
// that keep hitting the same (chunkSize, blkSz) shape can borrow an
// already-sized arena instead of allocating and zeroing a fresh one every
// time, but the pool is never shared across Contexts.
//
// Grounded on restic/internal/blobcache/blobcache.go's BlobCache: a
// capacity-bounded LRU of heavyweight reusable values, keyed by a shape
// descriptor, with Add/Get and an eviction callback. The pool here applies
// the same shape to block-entry arenas instead of blob bytes.
package blockpool

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dedupe-engine/rabin/internal/block"
	"github.com/dedupe-engine/rabin/internal/debug"
)

// shape identifies an arena's dimensions: Compress calls on the same Pool
// with the same shape can reuse each other's discarded arenas.
type shape struct {
	chunkSize uint64
	blkSz     int
}

// Pool is a capacity-bounded cache of block-entry arenas. Each single LRU
// call is synchronized, but Get and Put each read and then rewrite a
// shape's spare list in separate calls, so concurrent Get calls on one
// Pool can be handed the same arena.
type Pool struct {
	cache *lru.Cache[shape, [][]*block.Entry]
}

// New creates a Pool retaining at most capacity distinct shapes' worth of
// spare arenas.
func New(capacity int) *Pool {
	if capacity <= 0 {
		capacity = 1
	}
	c, err := lru.New[shape, [][]*block.Entry](capacity)
	if err != nil {
		// Only returns an error for capacity <= 0, already excluded above.
		panic(err)
	}
	return &Pool{cache: c}
}

// Get returns a reusable arena of at least n entries for the given shape,
// or nil if none is cached. Returned entries are already Reset.
func (p *Pool) Get(chunkSize uint64, blkSz int, n int) []*block.Entry {
	key := shape{chunkSize, blkSz}
	spares, ok := p.cache.Get(key)
	if !ok || len(spares) == 0 {
		return nil
	}

	arena := spares[len(spares)-1]
	spares = spares[:len(spares)-1]
	if len(spares) == 0 {
		p.cache.Remove(key)
	} else {
		p.cache.Add(key, spares)
	}

	if len(arena) < n {
		return nil
	}
	arena = arena[:n]
	for _, e := range arena {
		e.Reset()
	}
	debug.Log("blockpool: reused arena shape=%+v n=%d", key, n)
	return arena
}

// Put returns arena to the pool for later reuse under the given shape.
func (p *Pool) Put(chunkSize uint64, blkSz int, arena []*block.Entry) {
	if len(arena) == 0 {
		return
	}
	key := shape{chunkSize, blkSz}
	spares, _ := p.cache.Get(key)
	spares = append(spares, arena)
	p.cache.Add(key, spares)
}
