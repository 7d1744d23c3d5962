package ot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "notegraph/pkg/errors"
)

// applyBoth checks the convergence property: a + b' and b + a' must land on
// the same content.
func applyBoth(t *testing.T, doc string, a, b Operation) string {
	t.Helper()

	a1, b1, err := Transform(a, b)
	require.NoError(t, err)

	afterA, err := a.Apply(doc)
	require.NoError(t, err)
	left, err := b1.Apply(afterA)
	require.NoError(t, err)

	afterB, err := b.Apply(doc)
	require.NoError(t, err)
	right, err := a1.Apply(afterB)
	require.NoError(t, err)

	require.Equal(t, left, right, "replicas diverged")
	return left
}

func TestTransformConvergence(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		a    Operation
		b    Operation
		want string
	}{
		{
			name: "inserts at distinct positions",
			doc:  "Hello",
			a:    NewBuilder("alice", 1).Insert(">").Retain(5).Build(),
			b:    NewBuilder("bob", 1).Retain(5).Insert("!").Build(),
			want: ">Hello!",
		},
		{
			name: "inserts at the same position order by session id",
			doc:  "Hello",
			a:    NewBuilder("alice", 1).Retain(5).Insert(" World").Build(),
			b:    NewBuilder("bob", 1).Retain(5).Insert("!").Build(),
			want: "Hello World!",
		},
		{
			name: "overlapping deletes remove the span once",
			doc:  "abcdef",
			a:    NewBuilder("alice", 1).Retain(1).Delete(3).Retain(2).Build(),
			b:    NewBuilder("bob", 1).Retain(2).Delete(3).Retain(1).Build(),
			want: "af",
		},
		{
			name: "identical deletes are idempotent",
			doc:  "abcdef",
			a:    NewBuilder("alice", 1).Retain(2).Delete(2).Retain(2).Build(),
			b:    NewBuilder("bob", 1).Retain(2).Delete(2).Retain(2).Build(),
			want: "abef",
		},
		{
			name: "insert inside a concurrent delete survives",
			doc:  "abcd",
			a:    NewBuilder("alice", 1).Retain(2).Insert("XY").Retain(2).Build(),
			b:    NewBuilder("bob", 1).Retain(1).Delete(2).Retain(1).Build(),
			want: "aXYd",
		},
		{
			name: "insert at the left edge of a delete survives",
			doc:  "abcd",
			a:    NewBuilder("alice", 1).Retain(1).Insert("X").Retain(3).Build(),
			b:    NewBuilder("bob", 1).Retain(1).Delete(2).Retain(1).Build(),
			want: "aXd",
		},
		{
			name: "delete against a larger concurrent delete",
			doc:  "abcdefgh",
			a:    NewBuilder("alice", 1).Delete(8).Build(),
			b:    NewBuilder("bob", 1).Retain(3).Delete(2).Retain(3).Build(),
			want: "",
		},
		{
			name: "mixed insert and delete on both sides",
			doc:  "one two three",
			a:    NewBuilder("alice", 1).Retain(4).Delete(3).Insert("2").Retain(6).Build(),
			b:    NewBuilder("bob", 1).Delete(4).Insert("1 ").Retain(9).Build(),
			want: "1 2 three",
		},
		{
			name: "unicode runs",
			doc:  "héllo wörld",
			a:    NewBuilder("alice", 1).Retain(5).Insert("✨").Retain(6).Build(),
			b:    NewBuilder("bob", 1).Retain(6).Delete(5).Build(),
			want: "héllo✨ ",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := applyBoth(t, tc.doc, tc.a, tc.b)
			assert.Equal(t, tc.want, got)

			// Argument order must not change the outcome.
			flipped := applyBoth(t, tc.doc, tc.b, tc.a)
			assert.Equal(t, tc.want, flipped)
		})
	}
}

func TestTransformTieBreakIsDeterministic(t *testing.T) {
	// Same concurrent edits, both argument orders: the session with the
	// lexicographically smaller id lands first either way.
	doc := "Hello"
	a := NewBuilder("session-a", 1).Retain(5).Insert(" World").Build()
	b := NewBuilder("session-b", 1).Retain(5).Insert("!").Build()

	assert.Equal(t, "Hello World!", applyBoth(t, doc, a, b))
	assert.Equal(t, "Hello World!", applyBoth(t, doc, b, a))
}

func TestTransformRejectsMismatchedBases(t *testing.T) {
	a := NewBuilder("alice", 1).Retain(3).Build()

	t.Run("different base versions", func(t *testing.T) {
		b := NewBuilder("bob", 2).Retain(3).Build()
		_, _, err := Transform(a, b)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeMalformedOperation))
	})

	t.Run("different base lengths", func(t *testing.T) {
		b := NewBuilder("bob", 1).Retain(4).Build()
		_, _, err := Transform(a, b)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeMalformedOperation))
	})
}

func TestCompose(t *testing.T) {
	t.Run("sequential edits collapse", func(t *testing.T) {
		doc := "Hello"
		first := NewBuilder("alice", 1).Retain(5).Insert(" World").Build()
		second := NewBuilder("alice", 2).Retain(11).Insert("!").Build()

		composed, err := Compose(first, second)
		require.NoError(t, err)

		got, err := composed.Apply(doc)
		require.NoError(t, err)
		assert.Equal(t, "Hello World!", got)
	})

	t.Run("insert then delete cancels", func(t *testing.T) {
		first := NewBuilder("alice", 1).Retain(2).Insert("xx").Retain(2).Build()
		second := NewBuilder("alice", 2).Retain(2).Delete(2).Retain(2).Build()

		composed, err := Compose(first, second)
		require.NoError(t, err)
		assert.True(t, composed.IsNoop())
	})

	t.Run("non-sequential operations are rejected", func(t *testing.T) {
		first := NewBuilder("alice", 1).Insert("abc").Build()
		second := NewBuilder("alice", 2).Retain(1).Build()

		_, err := Compose(first, second)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeMalformedOperation))
	})
}

func TestComposeAll(t *testing.T) {
	t.Run("folds a history span", func(t *testing.T) {
		doc := ""
		ops := []Operation{
			NewBuilder("alice", 0).Insert("Hello").Build(),
			NewBuilder("bob", 1).Retain(5).Insert(" World").Build(),
			NewBuilder("alice", 2).Retain(11).Insert("!").Build(),
		}

		catchUp, err := ComposeAll(ops)
		require.NoError(t, err)

		got, err := catchUp.Apply(doc)
		require.NoError(t, err)
		assert.Equal(t, "Hello World!", got)
	})

	t.Run("empty sequence is rejected", func(t *testing.T) {
		_, err := ComposeAll(nil)
		require.Error(t, err)
	})
}
