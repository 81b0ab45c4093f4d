package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsAndCompacts(t *testing.T) {
	v := MustParse(`{ "b": 1, "a": [true, null, "x"] }`)

	out, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true,null,"x"],"b":1}`, string(out))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(out))
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	out, err := MarshalCanonical(String("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(out))

	// A literal backslash followed by "u2028" text stays escaped
	out, err = MarshalCanonical(String(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(out))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := String("e\u0301")
	composed := String("\u00e9")

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_Floats(t *testing.T) {
	out, err := MarshalCanonical(NewArray(Float(1.5), Float(100), Float(1e21)))
	require.NoError(t, err)
	assert.Equal(t, `[1.5,100,1e+21]`, string(out))

	_, err = MarshalCanonical(Float(math.NaN()))
	assert.Error(t, err)
}

func TestMarshalCanonical_RejectsOpaque(t *testing.T) {
	_, err := MarshalCanonical(NewObject(P("x", NewOpaque(1))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opaque")
}

func TestFingerprint_IgnoresSharing(t *testing.T) {
	shared := NewObject(P("c", Int(2)))
	a := NewObject(P("a", Int(1)), P("b", shared))
	b := MustParse(`{"b":{"c":2},"a":1}`)

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)

	fp, err := FingerprintDomain(DomainPatch, a)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fp, "domain separation")
}
