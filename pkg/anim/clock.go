// Package anim advances tile animations over elapsed time.
package anim

import (
	"math"

	"github.com/Faultbox/tilemap/pkg/tmx"
)

// Clock tracks the current frame of one animated tile instance. The zero
// value and a clock bound to an empty animation never change frames.
//
// A Clock is owned by whatever drives per-frame updates and is not safe for
// concurrent use. Independent clocks may be advanced in parallel.
type Clock struct {
	anim    *tmx.Animation
	frame   int
	elapsed float64 // ms accumulated in the current frame
	last    uint32  // tile id reported by the previous Advance
}

// NewClock returns a clock positioned at the first frame of a.
func NewClock(a *tmx.Animation) *Clock {
	c := &Clock{}
	c.SetAnimation(a)
	return c
}

// SetAnimation binds the clock to a and rewinds it to the first frame.
func (c *Clock) SetAnimation(a *tmx.Animation) {
	c.anim = a
	c.frame = 0
	c.elapsed = 0
	c.last = c.TileID()
}

// Animation returns the bound animation.
func (c *Clock) Animation() *tmx.Animation {
	return c.anim
}

// Advance adds deltaMs to the clock and steps through every frame whose
// duration has fully elapsed. A zero-duration frame holds forever. It
// reports whether the current tile id differs from the one seen at the
// previous call.
func (c *Clock) Advance(deltaMs float64) bool {
	if c.anim == nil || len(c.anim.Frames) == 0 {
		return false
	}
	if deltaMs > 0 && !math.IsInf(deltaMs, 1) {
		// Whole cycles bring the clock back to the same frame.
		if cycle := c.cycle(); cycle > 0 {
			deltaMs = math.Mod(deltaMs, cycle)
		}
		c.elapsed += deltaMs
	}

	frames := c.anim.Frames
	for {
		d := float64(frames[c.frame].Duration)
		if d <= 0 || c.elapsed < d {
			break
		}
		c.elapsed -= d
		c.frame = (c.frame + 1) % len(frames)
	}

	id := frames[c.frame].TileID
	changed := id != c.last
	c.last = id
	return changed
}

// cycle returns the length of one loop in milliseconds, or 0 when a frame
// holds and the animation never loops.
func (c *Clock) cycle() float64 {
	total := 0
	for _, f := range c.anim.Frames {
		if f.Duration <= 0 {
			return 0
		}
		total += f.Duration
	}
	return float64(total)
}

// Frame returns the index of the current frame.
func (c *Clock) Frame() int {
	return c.frame
}

// Elapsed returns the time spent in the current frame in milliseconds.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

// TileID returns the local tile id shown by the current frame, or 0 when no
// animation is bound.
func (c *Clock) TileID() uint32 {
	if c.anim == nil || len(c.anim.Frames) == 0 {
		return 0
	}
	return c.anim.Frames[c.frame].TileID
}

// GID returns the global id of the current frame's tile in ts.
func (c *Clock) GID(ts *tmx.Tileset) uint32 {
	return ts.GID(c.TileID())
}
