package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltersToggleTwiceIsIdentity(t *testing.T) {
	start := NewFilters(FieldNumbers)
	for _, f := range Fields() {
		got := start.Toggle(f).Toggle(f)
		assert.True(t, got.Equal(start), "double toggle of %s", f)
	}
}

func TestFiltersToggleDoesNotMutateReceiver(t *testing.T) {
	var f Filters
	next := f.Toggle(FieldAlphabets)

	assert.False(t, f.Has(FieldAlphabets))
	assert.True(t, next.Has(FieldAlphabets))
	assert.Equal(t, 0, f.Len())
}

func TestFiltersSelectedUsesFieldOrder(t *testing.T) {
	f := NewFilters(FieldHighestLowercaseAlphabet, FieldAlphabets)
	assert.Equal(t, []Field{FieldAlphabets, FieldHighestLowercaseAlphabet}, f.Selected())
}

func TestParseField(t *testing.T) {
	f, err := ParseField(" numbers ")
	require.NoError(t, err)
	assert.Equal(t, FieldNumbers, f)

	_, err = ParseField("roman_numerals")
	assert.Error(t, err)
}

func TestDecodeResponse(t *testing.T) {
	r, err := DecodeResponse([]byte(`{"alphabets":["A","b"],"is_success":true}`))
	require.NoError(t, err)

	got, ok := r.Strings(FieldAlphabets)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "b"}, got)

	_, ok = r.Strings(FieldNumbers)
	assert.False(t, ok)

	_, err = DecodeResponse([]byte(`["A"]`))
	assert.Error(t, err)
	_, err = DecodeResponse([]byte(`null`))
	assert.Error(t, err)
}

func TestRenderModeNext(t *testing.T) {
	assert.Equal(t, RenderJSON, RenderLines.Next())
	assert.Equal(t, RenderLines, RenderJSON.Next())
}
