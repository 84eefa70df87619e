// Package canon serializes interchange documents as canonical JSON.
//
// The fixture file handed to the executables under test must be
// byte-identical across runs with the same seed, on every platform. Plain
// encoding/json cannot promise that for map-shaped documents, so this
// package implements the RFC 8785 subset the interchange format needs:
// object keys sorted by UTF-16 code units, strings NFC-normalized and
// minimally escaped, integers only.
//
// Floats and nulls are rejected outright. The interchange format has no
// use for either, and refusing them keeps the canonical form total: every
// accepted value has exactly one serialization.
package canon

import (
	"bytes"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// Marshal renders v as canonical JSON.
//
// Accepted types: string, bool, int, int64, uint64, []any, map[string]any.
// Anything else (notably float64 and nil) returns an error naming the
// offending path.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is not representable in canonical interchange JSON")
	case string:
		appendString(buf, val)
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case int:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case int64:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case uint64:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case []any:
		return appendArray(buf, val)
	case map[string]any:
		return appendObject(buf, val)
	case float64, float32:
		return fmt.Errorf("floats are not representable in canonical interchange JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical interchange JSON: %T", v)
	}
}

func appendArray(buf *bytes.Buffer, arr []any) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendValue(buf, elem); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func appendObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		appendString(buf, k)
		buf.WriteByte(':')
		if err := appendValue(buf, obj[k]); err != nil {
			return fmt.Errorf("%q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// appendString writes s as a canonical JSON string: NFC-normalized, with
// only quote, backslash, and control characters escaped. Multi-byte UTF-8
// sequences pass through untouched, which is what RFC 8785 requires; the
// HTML-safety escapes encoding/json would add (<, >, &) are wrong here.
func appendString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			buf.WriteString(`\"`)
		case c == '\\':
			buf.WriteString(`\\`)
		case c == '\b':
			buf.WriteString(`\b`)
		case c == '\t':
			buf.WriteString(`\t`)
		case c == '\n':
			buf.WriteString(`\n`)
		case c == '\f':
			buf.WriteString(`\f`)
		case c == '\r':
			buf.WriteString(`\r`)
		case c < 0x20:
			fmt.Fprintf(buf, `\u%04x`, c)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}

// compareUTF16 orders strings by UTF-16 code units per RFC 8785. Plain
// string comparison orders by UTF-8 bytes, which diverges for characters
// outside the BMP; surrogate pairs must be compared as encoded units.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
