package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealedInterface(t *testing.T) {
	values := []IRValue{
		IRNull{},
		IRString("a"),
		IRInt(1),
		IRFloat(1.5),
		IRBool(true),
		IRArray{},
		IRDocument{},
	}

	for _, v := range values {
		switch v.(type) {
		case IRNull, IRString, IRInt, IRFloat, IRBool, IRArray, IRDocument:
			// OK
		default:
			t.Fatalf("unexpected IRValue type %T", v)
		}
	}
}

func TestIRDocumentSetAppendsNewKey(t *testing.T) {
	doc := IRDocument{E("x", IRInt(1))}

	out := doc.Set("y", IRInt(2))

	assert.Equal(t, []string{"x", "y"}, out.Keys())
	assert.Equal(t, 1, doc.Len(), "Set must not modify the receiver")
}

func TestIRDocumentSetOverwritesInPlace(t *testing.T) {
	doc := IRDocument{E("x", IRInt(1)), E("y", IRInt(2))}

	out := doc.Set("x", IRInt(3))

	assert.Equal(t, []string{"x", "y"}, out.Keys())
	v, ok := out.Get("x")
	require.True(t, ok)
	assert.Equal(t, IRInt(3), v)

	orig, _ := doc.Get("x")
	assert.Equal(t, IRInt(1), orig, "receiver keeps its value")
}

func TestIRDocumentGetMissing(t *testing.T) {
	_, ok := IRDocument{}.Get("missing")
	assert.False(t, ok)
}

func TestIRDocumentMarshalJSONKeepsOrder(t *testing.T) {
	doc := IRDocument{
		E("zebra", IRInt(1)),
		E("alpha", IRInt(2)),
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"zebra":1,"alpha":2}`, string(data))
}

func TestMarshalIRValue(t *testing.T) {
	tests := []struct {
		name     string
		value    IRValue
		expected string
	}{
		{"null", IRNull{}, "null"},
		{"string", IRString("hi"), `"hi"`},
		{"int", IRInt(-7), "-7"},
		{"float", IRFloat(2.5), "2.5"},
		{"integral float", IRFloat(2), "2.0"},
		{"bool", IRBool(false), "false"},
		{"nested", IRArray{IRInt(1), IRDocument{E("a", IRNull{})}}, `[1,{"a":null}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalIRValue(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestCompareKeysRFC8785(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts
	// before U+E000 in UTF-16 even though it sorts after it in UTF-8.
	assert.Equal(t, -1, compareKeysRFC8785("\U00010000", "\uE000"))
	assert.Equal(t, -1, compareKeysRFC8785("a", "ab"))
	assert.Equal(t, 0, compareKeysRFC8785("a", "a"))
	assert.Equal(t, 1, compareKeysRFC8785("b", "a"))
}
