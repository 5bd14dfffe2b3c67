package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Encoding is the representation of tile-layer cell data.
type Encoding int

// Layer data encodings.
const (
	EncodingXML Encoding = iota // <tile gid="..."/> children
	EncodingCSV
	EncodingBase64
)

// ParseEncoding parses the <data encoding> attribute. The empty string is XML.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "xml":
		return EncodingXML, nil
	case "csv":
		return EncodingCSV, nil
	case "base64":
		return EncodingBase64, nil
	default:
		return 0, fmt.Errorf("%w: unknown encoding %q", ErrLayerDataFormat, s)
	}
}

// String returns the attribute value for the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingXML:
		return "xml"
	case EncodingCSV:
		return "csv"
	case EncodingBase64:
		return "base64"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Compression is the optional compression applied to Base64 layer data.
type Compression int

// Layer data compressions.
const (
	CompressionNone Compression = iota
	CompressionZlib
	CompressionGzip
	CompressionZstd
)

// ParseCompression parses the <data compression> attribute.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "":
		return CompressionNone, nil
	case "zlib":
		return CompressionZlib, nil
	case "gzip":
		return CompressionGzip, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression %q", ErrLayerDataFormat, s)
	}
}

// String returns the attribute value for the compression ("" for none).
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return ""
	case CompressionZlib:
		return "zlib"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// DefaultCompressionLevel lets each codec pick its own default.
const DefaultCompressionLevel = -1

// RawData is the undecoded content of a <data> or <chunk> element.
type RawData struct {
	Encoding    Encoding
	Compression Compression
	Text        string   // inner text for CSV and Base64
	Tiles       []uint32 // gid of each <tile> child for XML
}

// EncodeOptions controls EncodeData.
type EncodeOptions struct {
	Encoding    Encoding
	Compression Compression
	Level       int // DefaultCompressionLevel or a codec-specific level
	Width       int // CSV row length; 0 writes a single row
}

// DecodeData decodes layer data into count raw cell values in row-major order.
func DecodeData(d RawData, count int) ([]uint32, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative cell count %d", ErrLayerDataFormat, count)
	}
	var cells []uint32
	var err error

	switch d.Encoding {
	case EncodingXML:
		if d.Compression != CompressionNone {
			return nil, fmt.Errorf("%w: compression %q requires base64 encoding", ErrLayerDataFormat, d.Compression)
		}
		cells = append([]uint32(nil), d.Tiles...)
	case EncodingCSV:
		if d.Compression != CompressionNone {
			return nil, fmt.Errorf("%w: compression %q requires base64 encoding", ErrLayerDataFormat, d.Compression)
		}
		cells, err = decodeCSV(d.Text)
	case EncodingBase64:
		cells, err = decodeBase64(d.Text, d.Compression)
	default:
		return nil, fmt.Errorf("%w: unknown encoding %v", ErrLayerDataFormat, d.Encoding)
	}
	if err != nil {
		return nil, err
	}

	if len(cells) != count {
		return nil, fmt.Errorf("%w: %s data has %d cells, want %d", ErrLayerDataFormat, d.Encoding, len(cells), count)
	}
	return cells, nil
}

// decodeCSV reads comma-separated values. Rows may also be split by
// whitespace alone. An empty field is an error, except after a single
// trailing comma.
func decodeCSV(text string) ([]uint32, error) {
	if strings.TrimSpace(text) == "" {
		return []uint32{}, nil
	}
	fields := strings.Split(text, ",")
	if strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}

	cells := make([]uint32, 0, len(fields))
	for i, f := range fields {
		values := strings.Fields(f)
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: csv field %d is empty", ErrLayerDataFormat, i)
		}
		for _, v := range values {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: csv value %d: %q", ErrLayerDataFormat, len(cells), v)
			}
			cells = append(cells, uint32(n))
		}
	}
	return cells, nil
}

func decodeBase64(text string, c Compression) ([]uint32, error) {
	compact := strings.Join(strings.Fields(text), "")
	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrLayerDataFormat, err)
	}

	raw, err = decompress(raw, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayerDataFormat, c, err)
	}

	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of 4", ErrLayerDataFormat, len(raw))
	}
	cells := make([]uint32, len(raw)/4)
	for i := range cells {
		cells[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return cells, nil
}

func decompress(raw []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return raw, nil
	case CompressionZlib:
		r, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CompressionZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(raw, nil)
	default:
		return nil, fmt.Errorf("unknown compression %v", c)
	}
}

// EncodeData is the inverse of DecodeData. Output is deterministic: the same
// cells and options always produce the same text.
func EncodeData(cells []uint32, opts EncodeOptions) (RawData, error) {
	out := RawData{Encoding: opts.Encoding, Compression: opts.Compression}

	if opts.Encoding != EncodingBase64 && opts.Compression != CompressionNone {
		return RawData{}, fmt.Errorf("%w: compression %q requires base64 encoding", ErrLayerDataFormat, opts.Compression)
	}

	switch opts.Encoding {
	case EncodingXML:
		out.Tiles = append([]uint32(nil), cells...)
	case EncodingCSV:
		out.Text = encodeCSV(cells, opts.Width)
	case EncodingBase64:
		raw := make([]byte, len(cells)*4)
		for i, c := range cells {
			binary.LittleEndian.PutUint32(raw[i*4:], c)
		}
		packed, err := compress(raw, opts.Compression, opts.Level)
		if err != nil {
			return RawData{}, fmt.Errorf("%w: %s: %v", ErrLayerDataFormat, opts.Compression, err)
		}
		out.Text = base64.StdEncoding.EncodeToString(packed)
	default:
		return RawData{}, fmt.Errorf("%w: unknown encoding %v", ErrLayerDataFormat, opts.Encoding)
	}
	return out, nil
}

// encodeCSV writes rows the way Tiled does: a leading newline, a comma after
// every value except the last, one row per line.
func encodeCSV(cells []uint32, width int) string {
	if width <= 0 {
		width = len(cells)
	}
	var b strings.Builder
	b.WriteByte('\n')
	for i, c := range cells {
		b.WriteString(strconv.FormatUint(uint64(c), 10))
		if i == len(cells)-1 {
			b.WriteByte('\n')
			break
		}
		b.WriteByte(',')
		if (i+1)%width == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func compress(raw []byte, c Compression, level int) ([]byte, error) {
	var buf bytes.Buffer
	switch c {
	case CompressionNone:
		return raw, nil
	case CompressionZlib:
		w, err := zlib.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case CompressionGzip:
		w, err := gzip.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case CompressionZstd:
		opts := []zstd.EOption{zstd.WithEncoderConcurrency(1)}
		if level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		enc, err := zstd.NewWriter(nil, opts...)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), nil
	default:
		return nil, fmt.Errorf("unknown compression %v", c)
	}
	return buf.Bytes(), nil
}
