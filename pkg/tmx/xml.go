package tmx

import "encoding/xml"

// Raw document structures. Pointer fields distinguish absent attributes
// from zero values where the format has non-zero defaults or where
// templates need to know what an instance overrides.

type xmlProperty struct {
	Name         string         `xml:"name,attr"`
	Type         string         `xml:"type,attr"`
	PropertyType string         `xml:"propertytype,attr"`
	Value        *string        `xml:"value,attr"`
	Text         string         `xml:",chardata"`
	Properties   *xmlProperties `xml:"properties"`
}

type xmlProperties struct {
	Property []xmlProperty `xml:"property"`
}

type xmlImage struct {
	Source string `xml:"source,attr"`
	Format string `xml:"format,attr"`
	Trans  string `xml:"trans,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
}

type xmlFrame struct {
	TileID   *uint32 `xml:"tileid,attr"`
	Duration *int    `xml:"duration,attr"`
}

type xmlAnimation struct {
	Frames []xmlFrame `xml:"frame"`
}

type xmlTile struct {
	ID          uint32          `xml:"id,attr"`
	Type        string          `xml:"type,attr"`
	Class       string          `xml:"class,attr"`
	Probability *float64        `xml:"probability,attr"`
	X           int             `xml:"x,attr"`
	Y           int             `xml:"y,attr"`
	Width       int             `xml:"width,attr"`
	Height      int             `xml:"height,attr"`
	Image       *xmlImage       `xml:"image"`
	Animation   *xmlAnimation   `xml:"animation"`
	ObjectGroup *xmlObjectGroup `xml:"objectgroup"`
	Properties  *xmlProperties  `xml:"properties"`
}

type xmlTileOffset struct {
	X int `xml:"x,attr"`
	Y int `xml:"y,attr"`
}

type xmlGrid struct {
	Orientation string `xml:"orientation,attr"`
	Width       int    `xml:"width,attr"`
	Height      int    `xml:"height,attr"`
}

type xmlTileset struct {
	XMLName         xml.Name       `xml:"tileset"`
	FirstGID        uint32         `xml:"firstgid,attr"`
	Source          string         `xml:"source,attr"`
	Version         string         `xml:"version,attr"`
	TiledVersion    string         `xml:"tiledversion,attr"`
	Name            string         `xml:"name,attr"`
	Class           string         `xml:"class,attr"`
	TileWidth       *int           `xml:"tilewidth,attr"`
	TileHeight      *int           `xml:"tileheight,attr"`
	Spacing         int            `xml:"spacing,attr"`
	Margin          int            `xml:"margin,attr"`
	TileCount       *int           `xml:"tilecount,attr"`
	Columns         *int           `xml:"columns,attr"`
	ObjectAlignment string         `xml:"objectalignment,attr"`
	TileOffset      *xmlTileOffset `xml:"tileoffset"`
	Grid            *xmlGrid       `xml:"grid"`
	Image           *xmlImage      `xml:"image"`
	Tiles           []xmlTile      `xml:"tile"`
	Properties      *xmlProperties `xml:"properties"`
}

type xmlLayerAttrs struct {
	ID         int            `xml:"id,attr"`
	Name       string         `xml:"name,attr"`
	Class      string         `xml:"class,attr"`
	Visible    *int           `xml:"visible,attr"`
	Locked     int            `xml:"locked,attr"`
	Opacity    *float64       `xml:"opacity,attr"`
	OffsetX    float64        `xml:"offsetx,attr"`
	OffsetY    float64        `xml:"offsety,attr"`
	ParallaxX  *float64       `xml:"parallaxx,attr"`
	ParallaxY  *float64       `xml:"parallaxy,attr"`
	TintColor  string         `xml:"tintcolor,attr"`
	Properties *xmlProperties `xml:"properties"`
}

type xmlDataTile struct {
	GID uint32 `xml:"gid,attr"`
}

type xmlChunk struct {
	X      int           `xml:"x,attr"`
	Y      int           `xml:"y,attr"`
	Width  int           `xml:"width,attr"`
	Height int           `xml:"height,attr"`
	Text   string        `xml:",chardata"`
	Tiles  []xmlDataTile `xml:"tile"`
}

type xmlData struct {
	Encoding    string        `xml:"encoding,attr"`
	Compression string        `xml:"compression,attr"`
	Text        string        `xml:",chardata"`
	Tiles       []xmlDataTile `xml:"tile"`
	Chunks      []xmlChunk    `xml:"chunk"`
}

type xmlTileLayer struct {
	xmlLayerAttrs
	Width  *int     `xml:"width,attr"`
	Height *int     `xml:"height,attr"`
	Data   *xmlData `xml:"data"`
}

type xmlPoints struct {
	Points string `xml:"points,attr"`
}

type xmlText struct {
	FontFamily string `xml:"fontfamily,attr"`
	PixelSize  *int   `xml:"pixelsize,attr"`
	Wrap       int    `xml:"wrap,attr"`
	Color      string `xml:"color,attr"`
	Bold       int    `xml:"bold,attr"`
	Italic     int    `xml:"italic,attr"`
	Underline  int    `xml:"underline,attr"`
	Strikeout  int    `xml:"strikeout,attr"`
	Kerning    *int   `xml:"kerning,attr"`
	HAlign     string `xml:"halign,attr"`
	VAlign     string `xml:"valign,attr"`
	Content    string `xml:",chardata"`
}

type xmlNone struct{}

type xmlObject struct {
	ID         int            `xml:"id,attr"`
	Name       *string        `xml:"name,attr"`
	Type       *string        `xml:"type,attr"`
	Class      *string        `xml:"class,attr"`
	X          *float64       `xml:"x,attr"`
	Y          *float64       `xml:"y,attr"`
	Width      *float64       `xml:"width,attr"`
	Height     *float64       `xml:"height,attr"`
	Rotation   *float64       `xml:"rotation,attr"`
	GID        *uint32        `xml:"gid,attr"`
	Visible    *int           `xml:"visible,attr"`
	Template   string         `xml:"template,attr"`
	Ellipse    *xmlNone       `xml:"ellipse"`
	Point      *xmlNone       `xml:"point"`
	Polygon    *xmlPoints     `xml:"polygon"`
	Polyline   *xmlPoints     `xml:"polyline"`
	Text       *xmlText       `xml:"text"`
	Image      *xmlImage      `xml:"image"`
	Properties *xmlProperties `xml:"properties"`
}

// hasShape reports whether the object declares its own shape child.
func (o *xmlObject) hasShape() bool {
	return o.Ellipse != nil || o.Point != nil || o.Polygon != nil ||
		o.Polyline != nil || o.Text != nil || o.Image != nil
}

type xmlObjectGroup struct {
	xmlLayerAttrs
	Color     string      `xml:"color,attr"`
	DrawOrder string      `xml:"draworder,attr"`
	Objects   []xmlObject `xml:"object"`
}

type xmlImageLayer struct {
	xmlLayerAttrs
	RepeatX int       `xml:"repeatx,attr"`
	RepeatY int       `xml:"repeaty,attr"`
	Image   *xmlImage `xml:"image"`
}

type xmlGroup struct {
	xmlLayerAttrs
	Children []xmlLayerNode `xml:",any"`
}

// xmlLayerNode captures one layer-like child in document order. Exactly one
// field is set; unknown elements leave all nil.
type xmlLayerNode struct {
	Tile    *xmlTileLayer
	Objects *xmlObjectGroup
	Image   *xmlImageLayer
	Group   *xmlGroup
}

// UnmarshalXML dispatches on the element name so that layers of different
// kinds keep their relative order.
func (n *xmlLayerNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	switch start.Name.Local {
	case "layer":
		n.Tile = new(xmlTileLayer)
		return d.DecodeElement(n.Tile, &start)
	case "objectgroup":
		n.Objects = new(xmlObjectGroup)
		return d.DecodeElement(n.Objects, &start)
	case "imagelayer":
		n.Image = new(xmlImageLayer)
		return d.DecodeElement(n.Image, &start)
	case "group":
		n.Group = new(xmlGroup)
		return d.DecodeElement(n.Group, &start)
	default:
		return d.Skip()
	}
}

type xmlMap struct {
	XMLName          xml.Name       `xml:"map"`
	Version          string         `xml:"version,attr"`
	TiledVersion     string         `xml:"tiledversion,attr"`
	Class            string         `xml:"class,attr"`
	Orientation      string         `xml:"orientation,attr"`
	RenderOrder      string         `xml:"renderorder,attr"`
	CompressionLevel *int           `xml:"compressionlevel,attr"`
	Width            *int           `xml:"width,attr"`
	Height           *int           `xml:"height,attr"`
	TileWidth        *int           `xml:"tilewidth,attr"`
	TileHeight       *int           `xml:"tileheight,attr"`
	HexSideLength    int            `xml:"hexsidelength,attr"`
	StaggerAxis      string         `xml:"staggeraxis,attr"`
	StaggerIndex     string         `xml:"staggerindex,attr"`
	ParallaxOriginX  float64        `xml:"parallaxoriginx,attr"`
	ParallaxOriginY  float64        `xml:"parallaxoriginy,attr"`
	BackgroundColor  string         `xml:"backgroundcolor,attr"`
	NextLayerID      int            `xml:"nextlayerid,attr"`
	NextObjectID     int            `xml:"nextobjectid,attr"`
	Infinite         int            `xml:"infinite,attr"`
	Tilesets         []xmlTileset   `xml:"tileset"`
	Properties       *xmlProperties `xml:"properties"`
	Children         []xmlLayerNode `xml:",any"`
}

type xmlTemplate struct {
	XMLName xml.Name    `xml:"template"`
	Tileset *xmlTileset `xml:"tileset"`
	Object  *xmlObject  `xml:"object"`
}
