// Package tmx parses Tiled TMX maps, TSX tilesets and TX templates into an
// engine-independent map model.
package tmx

import "errors"

// Parse errors. Returned errors wrap one of these and name the offending
// element or attribute.
var (
	ErrMalformedDocument   = errors.New("tmx: malformed document")
	ErrUnknownEnumValue    = errors.New("tmx: unknown enum value")
	ErrLayerDataFormat     = errors.New("tmx: invalid layer data")
	ErrUnresolvedReference = errors.New("tmx: unresolved reference")
	ErrOutOfBounds         = errors.New("tmx: cell out of bounds")
)
