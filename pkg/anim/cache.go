package anim

import (
	"github.com/Faultbox/tilemap/pkg/tmx"
)

// Cache maps unflagged GIDs to values derived from their tiles, such as
// meshes or clocks. It is owned by the caller; nothing in this module keeps
// a process-wide instance.
type Cache[T any] struct {
	entries map[uint32]T
}

// NewCache returns an empty cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[uint32]T)}
}

// Get returns the value stored for gid. Flag bits are ignored.
func (c *Cache[T]) Get(gid uint32) (T, bool) {
	v, ok := c.entries[gid&tmx.GIDMask]
	return v, ok
}

// Put stores v for gid. Flag bits are ignored.
func (c *Cache[T]) Put(gid uint32, v T) {
	c.entries[gid&tmx.GIDMask] = v
}

// GetOrCreate returns the value for gid, building and storing it with fn on
// a miss. Errors from fn are returned and nothing is stored.
func (c *Cache[T]) GetOrCreate(gid uint32, fn func(gid uint32) (T, error)) (T, error) {
	gid &= tmx.GIDMask
	if v, ok := c.entries[gid]; ok {
		return v, nil
	}
	v, err := fn(gid)
	if err != nil {
		var zero T
		return zero, err
	}
	c.entries[gid] = v
	return v, nil
}

// Invalidate drops every entry in [firstGID, firstGID+count), the range of
// one tileset. Call it after the tileset is reloaded.
func (c *Cache[T]) Invalidate(firstGID, count uint32) int {
	removed := 0
	for gid := range c.entries {
		if gid >= firstGID && gid-firstGID < count {
			delete(c.entries, gid)
			removed++
		}
	}
	return removed
}

// InvalidateTileset drops the entries covering ts.
func (c *Cache[T]) InvalidateTileset(ts *tmx.Tileset) int {
	return c.Invalidate(ts.FirstGID, uint32(max(ts.TileCount, 0)))
}

// Len returns the number of cached entries.
func (c *Cache[T]) Len() int {
	return len(c.entries)
}

// Clocks builds one clock per animated tile of ts, keyed by GID.
func Clocks(ts *tmx.Tileset) *Cache[*Clock] {
	c := NewCache[*Clock]()
	for _, t := range ts.Animated() {
		c.Put(ts.GID(t.ID), NewClock(t.Animation))
	}
	return c
}

// AdvanceAll advances every clock in c and returns the GIDs whose tile
// changed.
func AdvanceAll(c *Cache[*Clock], deltaMs float64) []uint32 {
	var changed []uint32
	for gid, clk := range c.entries {
		if clk.Advance(deltaMs) {
			changed = append(changed, gid)
		}
	}
	return changed
}
