package anim

import (
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/Faultbox/tilemap/pkg/tmx"
)

const (
	tileA = 7
	tileB = 9
)

func twoFrames() *tmx.Animation {
	return &tmx.Animation{Frames: []tmx.Frame{{TileID: tileA, Duration: 100}, {TileID: tileB, Duration: 150}}}
}

func TestClock_AdvanceAndWrap(t *testing.T) {
	c := NewClock(twoFrames())
	if c.TileID() != tileA || c.Frame() != 0 {
		t.Fatalf("expected frame 0 showing %d, got frame %d showing %d", tileA, c.Frame(), c.TileID())
	}

	if !c.Advance(100) {
		t.Error("expected change after 100ms")
	}
	if c.TileID() != tileB {
		t.Errorf("expected tile %d, got %d", tileB, c.TileID())
	}

	if !c.Advance(150) {
		t.Error("expected change after a further 150ms")
	}
	if c.TileID() != tileA || c.Frame() != 0 {
		t.Errorf("expected wrap to frame 0, got frame %d", c.Frame())
	}
}

func TestClock_AdvanceZeroNeverChanges(t *testing.T) {
	c := NewClock(twoFrames())
	c.Advance(40)
	for i := 0; i < 10; i++ {
		if c.Advance(0) {
			t.Fatal("Advance(0) reported a change")
		}
	}
	if c.Frame() != 0 || c.Elapsed() != 40 {
		t.Errorf("expected frame 0 with 40ms elapsed, got frame %d with %g", c.Frame(), c.Elapsed())
	}
}

func TestClock_PartialSteps(t *testing.T) {
	c := NewClock(twoFrames())
	if c.Advance(60) {
		t.Error("60ms must not change the frame")
	}
	if !c.Advance(60) {
		t.Error("120ms total should reach frame 1")
	}
	if c.Elapsed() != 20 {
		t.Errorf("expected 20ms carried over, got %g", c.Elapsed())
	}
}

func TestClock_LargeDeltaSkipsFrames(t *testing.T) {
	c := NewClock(twoFrames())
	// 250ms is one full cycle plus 10ms into frame 1.
	if c.Advance(260) {
		t.Error("a full cycle back to the same tile is not a change")
	}
	if c.Frame() != 0 || c.Elapsed() != 10 {
		t.Errorf("expected frame 0 with 10ms, got frame %d with %g", c.Frame(), c.Elapsed())
	}

	c.Advance(100 + 250*3)
	if c.Frame() != 1 {
		t.Errorf("expected frame 1, got %d", c.Frame())
	}
}

func TestClock_ZeroDurationHolds(t *testing.T) {
	c := NewClock(&tmx.Animation{Frames: []tmx.Frame{
		{TileID: 1, Duration: 50},
		{TileID: 2, Duration: 0},
		{TileID: 3, Duration: 50},
	}})

	if !c.Advance(50) {
		t.Error("expected change to the holding frame")
	}
	for i := 0; i < 5; i++ {
		if c.Advance(1000) {
			t.Fatal("held frame must not advance")
		}
	}
	if c.TileID() != 2 {
		t.Errorf("expected tile 2, got %d", c.TileID())
	}
}

func TestClock_SetAnimationResets(t *testing.T) {
	c := NewClock(twoFrames())
	c.Advance(130)

	next := &tmx.Animation{Frames: []tmx.Frame{{TileID: 4, Duration: 10}, {TileID: 5, Duration: 10}}}
	c.SetAnimation(next)
	if c.Frame() != 0 || c.Elapsed() != 0 || c.TileID() != 4 {
		t.Errorf("expected reset clock on tile 4, got frame %d elapsed %g tile %d", c.Frame(), c.Elapsed(), c.TileID())
	}
	if c.Advance(0) {
		t.Error("rebinding must not report a pending change")
	}
	if c.Animation() != next {
		t.Error("unexpected bound animation")
	}
}

func TestClock_EdgeTriggeredOnTileID(t *testing.T) {
	// Two frames showing the same tile never report a change.
	c := NewClock(&tmx.Animation{Frames: []tmx.Frame{{TileID: 3, Duration: 10}, {TileID: 3, Duration: 10}}})
	if c.Advance(10) {
		t.Error("same tile id must not count as a change")
	}
	if c.Frame() != 1 {
		t.Errorf("expected frame 1, got %d", c.Frame())
	}
}

func TestClock_Empty(t *testing.T) {
	var zero Clock
	if zero.Advance(100) || zero.TileID() != 0 {
		t.Error("zero clock must be inert")
	}
	c := NewClock(&tmx.Animation{})
	if c.Advance(100) || c.Frame() != 0 {
		t.Error("empty animation must be inert")
	}
}

func TestClock_NegativeDeltaIgnored(t *testing.T) {
	c := NewClock(twoFrames())
	c.Advance(50)
	c.Advance(-500)
	if c.Elapsed() != 50 {
		t.Errorf("expected 50ms, got %g", c.Elapsed())
	}
}

func TestClock_InfiniteDelta(t *testing.T) {
	c := NewClock(twoFrames())
	c.Advance(50)

	done := make(chan bool)
	go func() {
		changed := c.Advance(math.Inf(1))
		changed = c.Advance(math.NaN()) || changed
		done <- changed
	}()

	select {
	case changed := <-done:
		if changed {
			t.Error("a non-finite delta must not change the frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Advance did not return for a non-finite delta")
	}
	if c.Frame() != 0 || c.Elapsed() != 50 {
		t.Errorf("expected frame 0 with 50ms, got frame %d with %g", c.Frame(), c.Elapsed())
	}
}

func TestClock_HugeDelta(t *testing.T) {
	c := NewClock(twoFrames())

	done := make(chan bool)
	go func() { done <- c.Advance(1e12 + 120) }()

	select {
	case changed := <-done:
		if !changed {
			t.Error("expected a change to the second tile")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Advance did not return for a huge delta")
	}
	// 1e12 is a whole number of 250ms cycles.
	if c.Frame() != 1 || c.Elapsed() != 20 {
		t.Errorf("expected frame 1 with 20ms, got frame %d with %g", c.Frame(), c.Elapsed())
	}
}

func TestClock_HugeDeltaStopsAtHold(t *testing.T) {
	c := NewClock(&tmx.Animation{Frames: []tmx.Frame{
		{TileID: 1, Duration: 50},
		{TileID: 2, Duration: 50},
		{TileID: 3, Duration: 0},
	}})
	c.Advance(math.MaxFloat64)
	c.Advance(math.MaxFloat64)
	if c.TileID() != 3 {
		t.Errorf("expected the holding tile 3, got %d", c.TileID())
	}
}

func TestClock_GID(t *testing.T) {
	ts := &tmx.Tileset{FirstGID: 100}
	c := NewClock(twoFrames())
	if g := c.GID(ts); g != 100+tileA {
		t.Errorf("expected gid %d, got %d", 100+tileA, g)
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache[string]()
	for gid := uint32(1); gid <= 10; gid++ {
		c.Put(gid, "v")
	}
	if n := c.Invalidate(4, 3); n != 3 {
		t.Errorf("expected 3 removed, got %d", n)
	}
	for gid := uint32(1); gid <= 10; gid++ {
		_, ok := c.Get(gid)
		if want := gid < 4 || gid > 6; ok != want {
			t.Errorf("gid %d: present=%v, expected %v", gid, ok, want)
		}
	}
	if c.Len() != 7 {
		t.Errorf("expected 7 entries, got %d", c.Len())
	}
}

func TestCache_FlagsIgnored(t *testing.T) {
	c := NewCache[int]()
	c.Put(tmx.CombineGID(5, true, false, true, false), 42)
	if v, ok := c.Get(5); !ok || v != 42 {
		t.Errorf("expected 42 under gid 5, got %d %v", v, ok)
	}
}

func TestCache_GetOrCreate(t *testing.T) {
	c := NewCache[int]()
	calls := 0
	build := func(gid uint32) (int, error) {
		calls++
		return int(gid) * 2, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCreate(0x80000003, build)
		if err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
		if v != 6 {
			t.Errorf("expected 6, got %d", v)
		}
	}
	if calls != 1 {
		t.Errorf("expected one build, got %d", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrCreate(9, func(uint32) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("expected build error, got %v", err)
	}
	if _, ok := c.Get(9); ok {
		t.Error("failed build must not be cached")
	}
}

func TestClocks_FromTileset(t *testing.T) {
	ts := &tmx.Tileset{FirstGID: 10, TileCount: 4, Tiles: []*tmx.Tile{
		{ID: 0, Animation: twoFrames()},
		{ID: 1},
		{ID: 3, Animation: &tmx.Animation{Frames: []tmx.Frame{{TileID: 1, Duration: 100}, {TileID: 2, Duration: 100}}}},
	}}

	clocks := Clocks(ts)
	if clocks.Len() != 2 {
		t.Fatalf("expected 2 clocks, got %d", clocks.Len())
	}

	changed := AdvanceAll(clocks, 100)
	sort.Slice(changed, func(i, j int) bool { return changed[i] < changed[j] })
	if len(changed) != 2 || changed[0] != 10 || changed[1] != 13 {
		t.Errorf("unexpected changed gids %v", changed)
	}

	if n := clocks.InvalidateTileset(ts); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
}
