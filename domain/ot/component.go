package ot

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// ComponentKind identifies a primitive edit. The set is closed: transform,
// compose and apply all match on it exhaustively.
type ComponentKind uint8

const (
	KindRetain ComponentKind = iota
	KindInsert
	KindDelete
)

// Component is a single primitive edit in an operation's run sequence.
// Lengths are counted in Unicode code points everywhere, including the
// length of inserted text.
type Component struct {
	Kind ComponentKind
	N    int    // retain or delete length
	Text string // insert payload
}

// Retain returns a retain component
func Retain(n int) Component {
	return Component{Kind: KindRetain, N: n}
}

// Insert returns an insert component
func Insert(text string) Component {
	return Component{Kind: KindInsert, Text: text}
}

// Delete returns a delete component
func Delete(n int) Component {
	return Component{Kind: KindDelete, N: n}
}

// Len returns the component's length in code points
func (c Component) Len() int {
	if c.Kind == KindInsert {
		return utf8.RuneCountInString(c.Text)
	}
	return c.N
}

// wireComponent is the JSON shape used on the session channel.
type wireComponent struct {
	Retain int    `json:"retain,omitempty"`
	Insert string `json:"insert,omitempty"`
	Delete int    `json:"delete,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (c Component) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindRetain:
		return json.Marshal(wireComponent{Retain: c.N})
	case KindInsert:
		return json.Marshal(wireComponent{Insert: c.Text})
	case KindDelete:
		return json.Marshal(wireComponent{Delete: c.N})
	}
	return nil, fmt.Errorf("unknown component kind %d", c.Kind)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Component) UnmarshalJSON(data []byte) error {
	var w wireComponent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.Retain > 0:
		*c = Retain(w.Retain)
	case w.Delete > 0:
		*c = Delete(w.Delete)
	case w.Insert != "":
		*c = Insert(w.Insert)
	default:
		return fmt.Errorf("component must carry exactly one of retain, insert, delete: %s", string(data))
	}
	return nil
}

// String returns a compact debugging form
func (c Component) String() string {
	switch c.Kind {
	case KindRetain:
		return fmt.Sprintf("retain(%d)", c.N)
	case KindInsert:
		return fmt.Sprintf("insert(%q)", c.Text)
	case KindDelete:
		return fmt.Sprintf("delete(%d)", c.N)
	}
	return "invalid"
}
