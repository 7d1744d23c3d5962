package ot

import (
	pkgerrors "notegraph/pkg/errors"
)

// cursor walks an operation's components, allowing partial consumption of
// retain/delete runs and insert text.
type cursor struct {
	comps []Component
	idx   int
	off   int // code points consumed from the current component
}

func newCursor(op Operation) *cursor {
	return &cursor{comps: op.Components}
}

func (c *cursor) done() bool {
	return c.idx >= len(c.comps)
}

// kind returns the kind of the current component
func (c *cursor) kind() ComponentKind {
	return c.comps[c.idx].Kind
}

// remaining returns the unconsumed length of the current component
func (c *cursor) remaining() int {
	return c.comps[c.idx].Len() - c.off
}

// take consumes n code points from the current component and returns the
// consumed chunk. n must not exceed remaining().
func (c *cursor) take(n int) Component {
	comp := c.comps[c.idx]
	var chunk Component
	switch comp.Kind {
	case KindInsert:
		runes := []rune(comp.Text)
		chunk = Insert(string(runes[c.off : c.off+n]))
	case KindRetain:
		chunk = Retain(n)
	case KindDelete:
		chunk = Delete(n)
	}
	c.off += n
	if c.off >= comp.Len() {
		c.idx++
		c.off = 0
	}
	return chunk
}

// takeAll consumes the rest of the current component
func (c *cursor) takeAll() Component {
	return c.take(c.remaining())
}

// Transform reconciles two concurrent operations computed against the same
// base. It returns (a', b') such that applying a then b' produces the same
// content as applying b then a'.
//
// Concurrent inserts at the same position are ordered by session id: the
// insert from the lexicographically smaller session id lands first. The
// rule is arbitrary but deterministic, so every replica converges on the
// same content regardless of arrival order. Overlapping deletes cancel:
// the span removed by both sides is deleted exactly once.
func Transform(a, b Operation) (Operation, Operation, error) {
	if a.BaseVersion != b.BaseVersion {
		return Operation{}, Operation{}, pkgerrors.NewMalformedOperationError("transform requires operations with equal base versions").
			WithDetail("a_base", a.BaseVersion).
			WithDetail("b_base", b.BaseVersion)
	}
	if a.BaseLen() != b.BaseLen() {
		return Operation{}, Operation{}, pkgerrors.NewMalformedOperationError("transform requires operations over equal base lengths").
			WithDetail("a_len", a.BaseLen()).
			WithDetail("b_len", b.BaseLen())
	}

	aOut := NewBuilder(a.SessionID, a.BaseVersion)
	bOut := NewBuilder(b.SessionID, b.BaseVersion)
	ca, cb := newCursor(a), newCursor(b)

	for !ca.done() || !cb.done() {
		aInsert := !ca.done() && ca.kind() == KindInsert
		bInsert := !cb.done() && cb.kind() == KindInsert

		if aInsert && (!bInsert || insertWins(a.SessionID, b.SessionID)) {
			chunk := ca.takeAll()
			aOut.Insert(chunk.Text)
			bOut.Retain(chunk.Len())
			continue
		}
		if bInsert {
			chunk := cb.takeAll()
			aOut.Retain(chunk.Len())
			bOut.Insert(chunk.Text)
			continue
		}

		if ca.done() || cb.done() {
			return Operation{}, Operation{}, pkgerrors.NewMalformedOperationError("operations do not span the same base length")
		}

		n := min(ca.remaining(), cb.remaining())
		ak, bk := ca.kind(), cb.kind()
		ca.take(n)
		cb.take(n)

		switch {
		case ak == KindRetain && bk == KindRetain:
			aOut.Retain(n)
			bOut.Retain(n)
		case ak == KindDelete && bk == KindDelete:
			// Both sides removed this span; nothing left to adjust.
		case ak == KindDelete && bk == KindRetain:
			aOut.Delete(n)
		case ak == KindRetain && bk == KindDelete:
			bOut.Delete(n)
		}
	}

	return aOut.Build(), bOut.Build(), nil
}

// insertWins reports whether session a's insert orders before session b's
// when both insert at the same position.
func insertWins(a, b string) bool {
	return a < b
}

// Compose merges two sequential operations from the same author into one,
// so that applying the result equals applying first then second. Used to
// collapse a session's pending buffer before retransmission and to build
// catch-up payloads from history spans.
func Compose(first, second Operation) (Operation, error) {
	if first.TargetLen() != second.BaseLen() {
		return Operation{}, pkgerrors.NewMalformedOperationError("compose requires the second operation to start where the first ends").
			WithDetail("first_target", first.TargetLen()).
			WithDetail("second_base", second.BaseLen())
	}

	out := NewBuilder(first.SessionID, first.BaseVersion)
	cf, cs := newCursor(first), newCursor(second)

	for !cf.done() || !cs.done() {
		if !cf.done() && cf.kind() == KindDelete {
			chunk := cf.takeAll()
			out.Delete(chunk.N)
			continue
		}
		if !cs.done() && cs.kind() == KindInsert {
			chunk := cs.takeAll()
			out.Insert(chunk.Text)
			continue
		}

		if cf.done() || cs.done() {
			return Operation{}, pkgerrors.NewMalformedOperationError("operations are not sequential")
		}

		n := min(cf.remaining(), cs.remaining())
		fk, sk := cf.kind(), cs.kind()
		fChunk := cf.take(n)
		cs.take(n)

		switch {
		case fk == KindRetain && sk == KindRetain:
			out.Retain(n)
		case fk == KindRetain && sk == KindDelete:
			out.Delete(n)
		case fk == KindInsert && sk == KindRetain:
			out.Insert(fChunk.Text)
		case fk == KindInsert && sk == KindDelete:
			// Inserted then deleted before anyone saw it; drop the span.
		}
	}

	return out.Build(), nil
}

// ComposeAll folds a non-empty sequence of sequential operations into one
func ComposeAll(ops []Operation) (Operation, error) {
	if len(ops) == 0 {
		return Operation{}, pkgerrors.NewMalformedOperationError("cannot compose an empty operation sequence")
	}
	acc := ops[0]
	for _, op := range ops[1:] {
		var err error
		if acc, err = Compose(acc, op); err != nil {
			return Operation{}, err
		}
	}
	return acc, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
