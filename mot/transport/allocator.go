/*
NAME
  allocator.go

DESCRIPTION
  allocator.go implements transport identifier allocation for MOT
  carriage: the 16-bit TransportId signalled in a datagroup header that
  lets a receiver associate segments, and body datagroups with their
  header datagroup, across one object's lifetime.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package transport allocates the 16-bit transport identifiers used to
// correlate a MOT object's header and body datagroups. It implements
// the allocator contract only; choosing which object gets which ID, or
// how long an ID stays reserved, is the embedding application's policy
// (spec.md §1 non-goal: "transport-ID allocation policy beyond the
// bare contract").
package transport

import (
	"math/rand"
	"sync"
	"time"
)

// Allocator hands out transport identifiers. Implementations must be
// safe for concurrent use, since a carousel encoder and a late-joining
// retransmission path may allocate from the same Allocator concurrently.
type Allocator interface {
	// Next returns a fresh, currently-unused transport identifier.
	Next() uint16

	// NextNamed returns the transport identifier already associated
	// with name, allocating and caching a fresh one on first use. This
	// lets a caller re-emit the same object (e.g. a repeating slide)
	// under a stable TransportId across calls.
	NextNamed(name string) uint16
}

// cacheLimit bounds the name->id cache so a long-running allocator
// handling unboundedly many distinct names does not grow without
// limit. The oldest entry is evicted, and its id returned to the free
// pool, once the limit is reached.
const cacheLimit = 1024

// MemoryAllocator is the default Allocator: an in-memory, randomised,
// collision-avoiding pool guarded by a mutex.
type MemoryAllocator struct {
	mu        sync.Mutex
	inUse     map[uint16]bool
	names     map[string]uint16
	nameOrder []string
	rng       *rand.Rand
}

// NewMemoryAllocator returns a ready-to-use MemoryAllocator. Each
// allocator seeds its own source from the current time, so distinct
// allocators (and distinct process runs) do not draw the same
// identifier sequence, matching the Python original's use of the
// process-seeded `random` module rather than a fixed stream.
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{
		inUse: make(map[uint16]bool),
		names: make(map[string]uint16),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Default is a package-level MemoryAllocator for callers that do not
// need per-object isolation.
var Default = NewMemoryAllocator()

// Next implements Allocator. It draws uniformly from the 16-bit space,
// excluding zero (reserved to mean "no transport id" by convention)
// and retrying on collision with an identifier already in use.
func (a *MemoryAllocator) Next() uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next()
}

// next allocates without locking; callers must hold a.mu.
func (a *MemoryAllocator) next() uint16 {
	for {
		id := uint16(a.rng.Intn(65535) + 1)
		if !a.inUse[id] {
			a.inUse[id] = true
			return id
		}
	}
}

// NextNamed implements Allocator.
func (a *MemoryAllocator) NextNamed(name string) uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id, ok := a.names[name]; ok {
		return id
	}

	if len(a.nameOrder) >= cacheLimit {
		oldest := a.nameOrder[0]
		a.nameOrder = a.nameOrder[1:]
		delete(a.inUse, a.names[oldest])
		delete(a.names, oldest)
	}

	id := a.next()
	a.names[name] = id
	a.nameOrder = append(a.nameOrder, name)
	return id
}

// Release returns id to the free pool, for callers that track an
// object's lifetime themselves and want its id reusable immediately
// rather than waiting for cache eviction.
func (a *MemoryAllocator) Release(id uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inUse, id)
}
