package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for hashing and byte comparison.
// This is the ONLY serialization that should be used when two outputs are
// compared for identity.
//
// Differences from standard json.Marshal:
//  1. IRDocument keys keep document order (order is part of the value)
//  2. Plain map keys are sorted by UTF-16 code units (RFC 8785)
//  3. No HTML escaping (< > & are NOT escaped)
//  4. Strings are NFC normalized
//  5. Integral floats keep a ".0" suffix
//
// Besides IRValues it accepts the plain Go shapes produced by decoders:
// string, bool, integers, floats, json.Number, []any and map[string]any.
func MarshalCanonical(v any) ([]byte, error) {
	return marshalCanonical(v)
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil, IRNull:
		return []byte("null"), nil
	case IRString:
		return marshalCanonicalString(string(val))
	case string:
		return marshalCanonicalString(val)
	case IRInt:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case IRFloat:
		return formatFloat(float64(val))
	case IRBool:
		return []byte(strconv.FormatBool(bool(val))), nil
	case bool:
		return []byte(strconv.FormatBool(val)), nil
	case IRArray:
		return marshalCanonicalList(len(val), func(i int) any { return val[i] })
	case []any:
		return marshalCanonicalList(len(val), func(i int) any { return val[i] })
	case IRDocument:
		return marshalCanonicalDocument(val)
	case map[string]any:
		doc := make(IRDocument, 0, len(val))
		for _, k := range sortedKeys(val) {
			elem, err := canonicalElem(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			doc = append(doc, IRElem{Key: k, Value: elem})
		}
		return marshalCanonicalDocument(doc)
	}

	lit, err := Encode(v)
	if err != nil {
		return nil, fmt.Errorf("unsupported type for canonical JSON: %w", err)
	}
	return marshalCanonical(lit)
}

// canonicalElem converts a decoded Go value into an IRValue so nested maps
// inside plain maps get the same key sorting.
func canonicalElem(v any) (IRValue, error) {
	switch val := v.(type) {
	case map[string]any:
		doc := make(IRDocument, 0, len(val))
		for _, k := range sortedKeys(val) {
			elem, err := canonicalElem(val[k])
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			doc = append(doc, IRElem{Key: k, Value: elem})
		}
		return doc, nil
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			c, err := canonicalElem(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = c
		}
		return arr, nil
	default:
		return Encode(v)
	}
}

// marshalCanonicalString produces canonical JSON string with NFC normalization.
// Only control characters, backslash and quote are escaped.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // <, >, & must NOT be escaped
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds trailing newline, remove it
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func marshalCanonicalList(n int, at func(int) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(at(i))
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalDocument(doc IRDocument) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, e := range doc {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := marshalCanonicalString(e.Key)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.Key, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(e.Value)
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", e.Key, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
