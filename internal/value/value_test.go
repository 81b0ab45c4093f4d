package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want Class
	}{
		{"null", Null{}, ClassScalar},
		{"bool", Bool(true), ClassScalar},
		{"int", Int(1), ClassScalar},
		{"float", Float(1.5), ClassScalar},
		{"string", String("x"), ClassScalar},
		{"object", NewObject(), ClassRecord},
		{"array", NewArray(), ClassSequence},
		{"opaque", NewOpaque(struct{}{}), ClassOpaque},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.v))
			assert.Equal(t, tt.want == ClassRecord || tt.want == ClassSequence, Draftable(tt.v))
		})
	}
}

func TestIdentical_ScalarsByValue(t *testing.T) {
	assert.True(t, Identical(Int(3), Int(3)))
	assert.True(t, Identical(String("a"), String("a")))
	assert.True(t, Identical(Null{}, Null{}))
	assert.False(t, Identical(Int(3), Float(3)))
	assert.False(t, Identical(Bool(true), Bool(false)))
}

func TestIdentical_FloatSemantics(t *testing.T) {
	nan := Float(math.NaN())
	assert.True(t, Identical(nan, nan), "NaN is identical to itself")
	assert.False(t, Identical(Float(0), Float(math.Copysign(0, -1))), "+0 and -0 differ")
	assert.True(t, Identical(Float(1.25), Float(1.25)))
}

func TestIdentical_ContainersByPointer(t *testing.T) {
	a := NewObject(P("x", Int(1)))
	b := NewObject(P("x", Int(1)))

	assert.True(t, Identical(a, a))
	assert.False(t, Identical(a, b))
	assert.True(t, Equal(a, b))

	o := NewOpaque(42)
	assert.True(t, Identical(o, o))
	assert.False(t, Identical(o, NewOpaque(42)))
}

func TestEqual_Deep(t *testing.T) {
	a := MustParse(`{"a":[1,2,{"b":null}],"c":"x"}`)
	b := MustParse(`{"c":"x","a":[1,2,{"b":null}]}`)
	c := MustParse(`{"c":"x","a":[1,2,{"b":false}]}`)

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.True(t, Equal(Int(2), Float(2)))
	assert.False(t, Equal(NewArray(Int(1)), NewArray(Int(1), Int(2))))
}

func TestObject_FrozenRejectsMutation(t *testing.T) {
	obj := NewObject(P("a", Int(1)))
	obj.Freeze(false)

	assert.ErrorIs(t, obj.Set("a", Int(2)), ErrFrozen)
	assert.ErrorIs(t, obj.Delete("a"), ErrFrozen)
	v, _ := obj.Get("a")
	assert.Equal(t, Int(1), v)
}

func TestFreeze_Deep(t *testing.T) {
	inner := NewArray(Int(1))
	outer := NewObject(P("inner", inner))

	outer.Freeze(false)
	assert.False(t, inner.Frozen(), "shallow freeze leaves children alone")

	outer.Freeze(true)
	assert.True(t, inner.Frozen())
	assert.ErrorIs(t, inner.Append(Int(2)), ErrFrozen)
}

func TestClone_IsUnfrozenAndShallow(t *testing.T) {
	child := NewObject()
	obj := NewObject(P("child", child))
	obj.Freeze(false)

	c := obj.Clone()
	require.False(t, c.Frozen())
	got, _ := c.Get("child")
	assert.True(t, Identical(child, got))

	deep := DeepClone(obj).(*Object)
	got, _ = deep.Get("child")
	assert.False(t, Identical(child, got))
	assert.True(t, Equal(obj, deep))
}

func TestArray_Mutators(t *testing.T) {
	arr := NewArray(Int(1), Int(2), Int(3))

	require.NoError(t, arr.Set(3, Int(4)))
	assert.Equal(t, 4, arr.Len())
	assert.Error(t, arr.Set(9, Int(0)))

	removed, err := arr.Splice(1, 2, String("x"))
	require.NoError(t, err)
	assert.Equal(t, []Value{Int(2), Int(3)}, removed)
	assert.True(t, Equal(MustParse(`[1,"x",4]`), arr))

	require.NoError(t, arr.SetLen(5))
	assert.True(t, Equal(MustParse(`[1,"x",4,null,null]`), arr))
	require.NoError(t, arr.SetLen(1))
	assert.True(t, Equal(MustParse(`[1]`), arr))

	_, err = arr.Splice(2, 0)
	assert.Error(t, err)
}

func TestObject_KeysInCanonicalOrder(t *testing.T) {
	obj := NewObject(P("b", Int(1)), P("a", Int(2)), P("\U0001F600", Int(3)), P("\uFFFF", Int(4)))

	// UTF-16 orders the surrogate pair (0xD83D...) before U+FFFF
	assert.Equal(t, []string{"a", "b", "\U0001F600", "\uFFFF"}, obj.Keys())
}

func TestParse_Numbers(t *testing.T) {
	v, err := Parse([]byte(`[1, 1.5, 2e3, -7]`))
	require.NoError(t, err)

	arr := v.(*Array)
	assert.Equal(t, Int(1), arr.At(0))
	assert.Equal(t, Float(1.5), arr.At(1))
	assert.Equal(t, Float(2000), arr.At(2))
	assert.Equal(t, Int(-7), arr.At(3))
}

func TestParse_RejectsTrailingData(t *testing.T) {
	_, err := Parse([]byte(`{} {}`))
	assert.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	src := `{"a":[1,2.5,true,null],"b":{"c":"<x>"}}`
	v := MustParse(src)

	out, err := Marshal(v)
	require.NoError(t, err)

	back, err := Parse(out)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestFromGo_YAMLShapes(t *testing.T) {
	v, err := FromGo(map[string]any{
		"n":    nil,
		"i":    3,
		"f":    1.5,
		"list": []any{"a", true},
	})
	require.NoError(t, err)
	assert.True(t, Equal(MustParse(`{"n":null,"i":3,"f":1.5,"list":["a",true]}`), v))

	_, err = FromGo(map[any]any{1: "x"})
	assert.Error(t, err)

	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}

func TestToGo(t *testing.T) {
	g, err := ToGo(MustParse(`{"a":[1,null]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{int64(1), nil}}, g)
}
