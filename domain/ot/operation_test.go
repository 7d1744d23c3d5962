package ot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "notegraph/pkg/errors"
)

func TestApply(t *testing.T) {
	t.Run("insert into empty document", func(t *testing.T) {
		op := NewBuilder("s1", 0).Insert("Hello").Build()

		got, err := op.Apply("")
		require.NoError(t, err)
		assert.Equal(t, "Hello", got)
	})

	t.Run("retain insert retain", func(t *testing.T) {
		op := NewBuilder("s1", 1).Retain(5).Insert(" World").Build()

		got, err := op.Apply("Hello")
		require.NoError(t, err)
		assert.Equal(t, "Hello World", got)
	})

	t.Run("delete in the middle", func(t *testing.T) {
		op := NewBuilder("s1", 1).Retain(5).Delete(6).Retain(1).Build()

		got, err := op.Apply("Hello World!")
		require.NoError(t, err)
		assert.Equal(t, "Hello!", got)
	})

	t.Run("lengths are counted in code points", func(t *testing.T) {
		op := NewBuilder("s1", 1).Retain(2).Insert("é").Delete(1).Build()

		got, err := op.Apply("héé")
		require.NoError(t, err)
		assert.Equal(t, "héé", got)
	})

	t.Run("length mismatch is malformed", func(t *testing.T) {
		op := NewBuilder("s1", 1).Retain(3).Build()

		_, err := op.Apply("ab")
		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeMalformedOperation))
	})
}

func TestBuilderNormalizes(t *testing.T) {
	op := NewBuilder("s1", 0).
		Retain(2).Retain(3).
		Insert("a").Insert("b").
		Delete(1).Delete(1).
		Retain(0).Insert("").Delete(0).
		Build()

	require.Len(t, op.Components, 3)
	assert.Equal(t, Retain(5), op.Components[0])
	assert.Equal(t, Insert("ab"), op.Components[1])
	assert.Equal(t, Delete(2), op.Components[2])
}

func TestLengths(t *testing.T) {
	op := NewBuilder("s1", 0).Retain(4).Insert("xy").Delete(3).Build()

	assert.Equal(t, 7, op.BaseLen())
	assert.Equal(t, 6, op.TargetLen())
	assert.False(t, op.IsNoop())
	assert.True(t, NewBuilder("s1", 0).Retain(7).Build().IsNoop())
}

func TestComponentJSON(t *testing.T) {
	op := NewBuilder("s1", 3).Retain(2).Insert("hi").Delete(1).Build()

	data, err := json.Marshal(op)
	require.NoError(t, err)

	var decoded Operation
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, op, decoded)
}

func TestDiff(t *testing.T) {
	cases := []struct {
		name     string
		old, new string
	}{
		{"insert word", "Hello World", "Hello Beautiful World"},
		{"delete word", "Hello Beautiful World", "Hello World"},
		{"replace middle", "aaXbb", "aaYYbb"},
		{"from empty", "", "content"},
		{"to empty", "content", ""},
		{"unchanged", "same", "same"},
		{"unicode", "naïve café", "naïve tea"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op := Diff("s1", 0, tc.old, tc.new)

			got, err := op.Apply(tc.old)
			require.NoError(t, err)
			assert.Equal(t, tc.new, got)
		})
	}
}
