// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package freq assigns vertex-buffer slots to quads so that quads sharing a
// texture land in contiguous buffer regions.
//
// Two records are kept per texture. "current" counts the quads added for
// the frame being built. "next" holds the regions reserved at the last
// clear: each texture used in the previous frame gets a contiguous span
// sized by its previous frequency. When usage is stable across frames the
// buffer is grouped by texture without a sort; under churn placement falls
// back to a running allocation pointer.
//
// Texture IDs are arbitrary uint32 values. They are mapped to small dense
// handles, and storage is proportional to the number of textures live in
// the current and previous frame.
package freq

import (
	"cmp"
	"slices"
)

// Entry is the per-texture frequency record.
type Entry struct {
	// Frequency is the number of quads using the texture.
	Frequency int

	// BatchIndex is the next slot reserved for the texture.
	BatchIndex int
}

// Index maps texture IDs to slot placements. The zero value is not usable;
// create one with New.
type Index struct {
	capacity int
	reserve  bool

	// handles maps a texture ID to its position in ids, current and next.
	handles map[uint32]int
	ids     []uint32
	current []Entry
	next    []Entry

	// spare buffers swapped in by Clear.
	spareIDs  []uint32
	spareNext []Entry
	order     []int

	reserved int
	running  int

	minID, maxID uint32
	touched      bool
}

// New creates an index for a buffer of capacity slots. When reserve is false
// slots are handed out strictly in call order.
func New(capacity int, reserve bool) *Index {
	return &Index{
		capacity: capacity,
		reserve:  reserve,
		handles:  make(map[uint32]int),
	}
}

// Capacity returns the number of slots managed by the index.
func (x *Index) Capacity() int { return x.capacity }

// Textures returns the number of texture IDs currently tracked.
func (x *Index) Textures() int { return len(x.ids) }

// Assign returns the slot for a new quad using texture id. occupied reports
// whether a slot already holds a quad this frame; Assign probes forward past
// occupied slots, wrapping at capacity. The caller must ensure at least one
// slot is free.
func (x *Index) Assign(id uint32, occupied func(slot int) bool) int {
	h := x.handle(id)
	cur := &x.current[h]

	var slot int
	if nx := &x.next[h]; x.reserve && nx.Frequency > cur.Frequency {
		slot = x.probe(nx.BatchIndex, occupied)
		nx.BatchIndex = x.wrap(slot + 1)
	} else {
		slot = x.probe(x.running, occupied)
		x.running = x.wrap(slot + 1)
	}

	cur.Frequency++
	x.extend(id)
	return slot
}

// Clear ends the frame. With reservation enabled every texture used this
// frame gets a contiguous region for the next frame, laid out in ascending
// texture ID order. The running pointer restarts after the reserved span.
// Textures unused this frame are forgotten.
func (x *Index) Clear() {
	order := x.order[:0]
	for h := range x.current {
		if x.current[h].Frequency > 0 {
			order = append(order, h)
		}
	}
	slices.SortFunc(order, func(a, b int) int { return cmp.Compare(x.ids[a], x.ids[b]) })

	ids := x.spareIDs[:0]
	next := x.spareNext[:0]
	clear(x.handles)
	offset := 0
	if x.reserve {
		for _, h := range order {
			if offset >= x.capacity {
				break
			}
			f := x.current[h].Frequency
			x.handles[x.ids[h]] = len(ids)
			ids = append(ids, x.ids[h])
			next = append(next, Entry{Frequency: f, BatchIndex: offset})
			offset += f
		}
	}
	x.order = order
	x.spareIDs, x.ids = x.ids[:0], ids
	x.spareNext, x.next = x.next[:0], next
	x.current = slices.Grow(x.current[:0], len(ids))[:len(ids)]
	clear(x.current)

	x.reserved = min(offset, x.capacity)
	x.running = x.wrap(x.reserved)
	x.touched = false
	x.minID, x.maxID = 0, 0
}

// Reset drops all frequency data, including reservations.
func (x *Index) Reset() {
	clear(x.handles)
	x.ids = x.ids[:0]
	x.current = x.current[:0]
	x.next = x.next[:0]
	x.reserved = 0
	x.running = 0
	x.touched = false
	x.minID, x.maxID = 0, 0
}

// Frequency returns the number of quads added this frame for id.
func (x *Index) Frequency(id uint32) int {
	h, ok := x.handles[id]
	if !ok {
		return 0
	}
	return x.current[h].Frequency
}

// Reserved returns the reservation held for id in the current frame.
func (x *Index) Reserved(id uint32) Entry {
	h, ok := x.handles[id]
	if !ok {
		return Entry{}
	}
	return x.next[h]
}

// Range returns the smallest and largest texture ID seen this frame.
// ok is false when no quad was assigned.
func (x *Index) Range() (lo, hi uint32, ok bool) {
	return x.minID, x.maxID, x.touched
}

func (x *Index) handle(id uint32) int {
	if h, ok := x.handles[id]; ok {
		return h
	}
	h := len(x.ids)
	x.handles[id] = h
	x.ids = append(x.ids, id)
	x.current = append(x.current, Entry{})
	x.next = append(x.next, Entry{})
	return h
}

func (x *Index) probe(slot int, occupied func(int) bool) int {
	slot = x.wrap(slot)
	for range x.capacity {
		if occupied == nil || !occupied(slot) {
			return slot
		}
		slot = x.wrap(slot + 1)
	}
	return slot
}

func (x *Index) wrap(slot int) int {
	if x.capacity == 0 || slot >= x.capacity || slot < 0 {
		return 0
	}
	return slot
}

func (x *Index) extend(id uint32) {
	if !x.touched {
		x.minID, x.maxID = id, id
		x.touched = true
		return
	}
	x.minID = min(x.minID, id)
	x.maxID = max(x.maxID, id)
}
