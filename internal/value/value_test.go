package value_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sem42198/mongo-migrator/internal/value"
)

func TestDocument_SetPreservesInsertionOrder(t *testing.T) {
	d := value.NewDocument()
	d.Set("b", value.Int(2))
	d.Set("a", value.Int(1))
	d.Set("b", value.Int(20)) // overwrite, must not move in key order

	assert.Equal(t, []string{"b", "a"}, d.Keys())
	v, ok := d.Get("b")
	require.True(t, ok)
	i, _ := v.Int()
	assert.Equal(t, int64(20), i)
}

func TestDocument_DeleteRemovesFromKeysAndFields(t *testing.T) {
	d := value.NewDocument()
	d.Set("a", value.Int(1))
	d.Set("b", value.Int(2))
	d.Delete("a")

	assert.Equal(t, []string{"b"}, d.Keys())
	_, ok := d.Get("a")
	assert.False(t, ok)
}

func TestDocument_CloneIsIndependent(t *testing.T) {
	d := value.NewDocument()
	d.Set("a", value.Int(1))
	cp := d.Clone()
	cp.Set("a", value.Int(99))

	v, _ := d.Get("a")
	i, _ := v.Int()
	assert.Equal(t, int64(1), i, "mutating the clone must not affect the original")
}

func TestIsNullEquivalent(t *testing.T) {
	assert.True(t, value.Null().IsNullEquivalent())
	assert.False(t, value.Int(0).IsNullEquivalent())
	assert.False(t, value.Text("").IsNullEquivalent())
}

func TestAsKey_ScalarsAreComparable(t *testing.T) {
	k1, ok := value.Int(5).AsKey()
	require.True(t, ok)
	k2, ok := value.Int(5).AsKey()
	require.True(t, ok)
	assert.Equal(t, k1, k2)

	_, ok = value.Null().AsKey()
	assert.False(t, ok)

	_, ok = value.Doc(value.NewDocument()).AsKey()
	assert.False(t, ok)
}

func TestAsKey_DecimalUsesCanonicalString(t *testing.T) {
	k, ok := value.Decimal(decimal.NewFromFloat(1.50)).AsKey()
	require.True(t, ok)
	assert.Equal(t, "1.5", k)
}

func TestString_RendersEachKind(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want string
	}{
		{"null", value.Null(), "<nil>"},
		{"int", value.Int(42), "42"},
		{"text", value.Text("hi"), "hi"},
		{"date", value.Date(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)), "2026-01-02"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}
