package tmx

// Flag bits stored in the top nibble of every cell value.
const (
	FlagFlipHorizontal   uint32 = 0x80000000
	FlagFlipVertical     uint32 = 0x40000000
	FlagFlipAntiDiagonal uint32 = 0x20000000
	FlagRotateHex120     uint32 = 0x10000000

	FlagMask = FlagFlipHorizontal | FlagFlipVertical | FlagFlipAntiDiagonal | FlagRotateHex120
	GIDMask  = ^FlagMask
)

// SplitGID separates a raw cell value into the clean GID and its four flags.
func SplitGID(raw uint32) (gid uint32, flipH, flipV, flipD, rotHex120 bool) {
	return raw & GIDMask,
		raw&FlagFlipHorizontal != 0,
		raw&FlagFlipVertical != 0,
		raw&FlagFlipAntiDiagonal != 0,
		raw&FlagRotateHex120 != 0
}

// CombineGID packs a GID and flags into a raw cell value. Bits of gid that
// overlap the flag nibble are discarded.
func CombineGID(gid uint32, flipH, flipV, flipD, rotHex120 bool) uint32 {
	raw := gid & GIDMask
	if flipH {
		raw |= FlagFlipHorizontal
	}
	if flipV {
		raw |= FlagFlipVertical
	}
	if flipD {
		raw |= FlagFlipAntiDiagonal
	}
	if rotHex120 {
		raw |= FlagRotateHex120
	}
	return raw
}

// Cell is a raw tile-layer value: a GID plus flag bits.
type Cell uint32

// GID returns the cell's GID with flags masked off.
func (c Cell) GID() uint32 { return uint32(c) & GIDMask }

// Empty reports whether the cell holds no tile.
func (c Cell) Empty() bool { return c.GID() == 0 }

// FlipH reports the horizontal flip flag.
func (c Cell) FlipH() bool { return uint32(c)&FlagFlipHorizontal != 0 }

// FlipV reports the vertical flip flag.
func (c Cell) FlipV() bool { return uint32(c)&FlagFlipVertical != 0 }

// FlipD reports the anti-diagonal flip flag.
func (c Cell) FlipD() bool { return uint32(c)&FlagFlipAntiDiagonal != 0 }

// RotateHex120 reports the hexagonal 120 degree rotation flag. It is only
// meaningful on hexagonal maps but is always preserved.
func (c Cell) RotateHex120() bool { return uint32(c)&FlagRotateHex120 != 0 }

// Flags returns only the flag bits.
func (c Cell) Flags() uint32 { return uint32(c) & FlagMask }

// WithGID returns the cell with its GID replaced and flags kept.
func (c Cell) WithGID(gid uint32) Cell {
	return Cell(c.Flags() | gid&GIDMask)
}
