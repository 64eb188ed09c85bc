/*
NAME
  carousel.go

DESCRIPTION
  carousel.go implements DirectoryCarousel, a small stateful wrapper
  over EncodeDirectoryMode that regenerates its datagroup sequence as
  objects are added, removed or replaced — the natural shape for a
  broadcaster repeating a slideshow.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mot

import (
	"sync"

	"github.com/ausocean/dabmsc/mot/segment"
	"github.com/ausocean/dabmsc/mot/transport"
)

// DirectoryCarousel holds an ordered set of objects and re-encodes
// directory mode's datagroup sequence whenever that set changes. It
// does not implement segment-repetition scheduling; it always encodes
// with Repetition 0 and leaves re-transmission cadence to the caller.
type DirectoryCarousel struct {
	mu         sync.Mutex
	objects    []Object
	params     []DirectoryParameter
	strategy   segment.Strategy
	allocator  transport.Allocator
	datagroups []Datagroup
	dirty      bool
}

// NewDirectoryCarousel returns an empty carousel using strategy to
// segment both the directory and every object's body, and allocator to
// assign the directory's own transport ID.
func NewDirectoryCarousel(strategy segment.Strategy, allocator transport.Allocator) *DirectoryCarousel {
	return &DirectoryCarousel{strategy: strategy, allocator: allocator}
}

// SetParameters replaces the carousel's directory-level extension
// parameters.
func (c *DirectoryCarousel) SetParameters(params []DirectoryParameter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = params
	c.dirty = true
}

// Add appends obj to the carousel.
func (c *DirectoryCarousel) Add(obj Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects = append(c.objects, obj)
	c.dirty = true
}

// Remove drops the first object with the given TransportID, if
// present.
func (c *DirectoryCarousel) Remove(transportID uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, obj := range c.objects {
		if obj.TransportID() == transportID {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			c.dirty = true
			return
		}
	}
}

// Clear empties the carousel.
func (c *DirectoryCarousel) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects = nil
	c.datagroups = nil
	c.dirty = false
}

// Set replaces the carousel's entire object list.
func (c *DirectoryCarousel) Set(objects []Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects = objects
	c.dirty = true
}

// Datagroups returns the carousel's current datagroup sequence,
// re-encoding on demand if the object list has changed since the last
// call.
func (c *DirectoryCarousel) Datagroups() ([]Datagroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty && c.datagroups != nil {
		return c.datagroups, nil
	}
	datagroups, err := EncodeDirectoryMode(c.objects, c.params, c.strategy, c.allocator)
	if err != nil {
		return nil, err
	}
	c.datagroups = datagroups
	c.dirty = false
	return c.datagroups, nil
}
