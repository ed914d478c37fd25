package ir

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
)

// ErrUnencodable is returned by Encode for values with no literal form.
var ErrUnencodable = errors.New("value has no literal representation")

// Encode converts a Go scalar into its store literal.
//
// Values that already are IRValues are returned unchanged. Slices encode
// element-wise into an IRArray. Maps, structs, channels and other composite
// kinds are rejected with ErrUnencodable.
//
// Encode is a pure function with no side effects.
func Encode(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case bool:
		return IRBool(val), nil
	case string:
		return IRString(val), nil
	case int:
		return IRInt(val), nil
	case int8:
		return IRInt(val), nil
	case int16:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint:
		return encodeUint(uint64(val))
	case uint8:
		return IRInt(val), nil
	case uint16:
		return IRInt(val), nil
	case uint32:
		return IRInt(val), nil
	case uint64:
		return encodeUint(val)
	case float32:
		return encodeFloat(float64(val))
	case float64:
		return encodeFloat(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return IRInt(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrUnencodable, val.String())
		}
		return encodeFloat(f)
	case []any:
		return encodeSlice(len(val), func(i int) any { return val[i] })
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return encodeSlice(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	}
	return nil, fmt.Errorf("%w: %T", ErrUnencodable, v)
}

// MustEncode is like Encode but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustEncode(v any) IRValue {
	val, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return val
}

func encodeUint(u uint64) (IRValue, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d overflows int64", ErrUnencodable, u)
	}
	return IRInt(int64(u)), nil
}

func encodeFloat(f float64) (IRValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: non-finite float %v", ErrUnencodable, f)
	}
	return IRFloat(f), nil
}

func encodeSlice(n int, at func(int) any) (IRValue, error) {
	arr := make(IRArray, n)
	for i := 0; i < n; i++ {
		elem, err := Encode(at(i))
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		arr[i] = elem
	}
	return arr, nil
}
