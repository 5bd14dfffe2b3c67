// Package encoding provides text encoding utilities for map documents that
// are not stored as UTF-8.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupportedCharset is returned for charset labels with no known decoder.
var ErrUnsupportedCharset = errors.New("unsupported charset")

// Lookup returns the encoding registered for an IANA or MIME charset label.
func Lookup(label string) (encoding.Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(label))
	if name == "" || name == "utf-8" || name == "utf8" {
		return unicode.UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		enc, err = ianaindex.MIME.Encoding(name)
	}
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, label)
	}
	return enc, nil
}

// CharsetReader converts input in the named charset to UTF-8. Its signature
// matches xml.Decoder.CharsetReader.
func CharsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// ToUTF8 converts data in the named charset to a UTF-8 string.
func ToUTF8(label string, data []byte) (string, error) {
	enc, err := Lookup(label)
	if err != nil {
		return "", err
	}
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", label, err)
	}
	return string(result), nil
}

// FromUTF8 converts a UTF-8 string to the named charset.
func FromUTF8(label string, s string) ([]byte, error) {
	enc, err := Lookup(label)
	if err != nil {
		return nil, err
	}
	result, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", label, err)
	}
	return result, nil
}

// TrimBOM removes a leading UTF-8 byte order mark, which encoding/xml rejects.
func TrimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
}
