//
//  Copyright © Manetu Inc. All rights reserved.
//

package rule

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Source identifies which of the three request attribute maps a [Key]
// refers to.
type Source string

// The attribute sources.
const (
	SourceResource Source = "resource"
	SourceAction   Source = "action"
	SourceSubject  Source = "subject"
)

func parseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceResource, SourceAction, SourceSubject:
		return Source(s), true
	}
	return "", false
}

// Key names a single request attribute by source and name, written in rule
// text as "source.name". Keys are immutable and compare structurally.
type Key struct {
	Source Source
	Name   string
}

// String renders the key in its textual form, e.g. "subject.name".
func (k Key) String() string {
	return string(k.Source) + "." + k.Name
}

// ResourceKey returns a [Key] referencing a resource attribute.
func ResourceKey(name string) Key {
	return Key{Source: SourceResource, Name: name}
}

// ActionKey returns a [Key] referencing an action attribute.
func ActionKey(name string) Key {
	return Key{Source: SourceAction, Name: name}
}

// SubjectKey returns a [Key] referencing a subject attribute.
func SubjectKey(name string) Key {
	return Key{Source: SourceSubject, Name: name}
}

// Operand is a comparison or membership operand: either a [Key] reference
// resolved against the request at evaluation time, or a literal [Value].
type Operand interface {
	writeTo(sb *strings.Builder)
}

// Value is a literal attribute value: a byte-string ([Str]), a boolean
// ([Bool]) or an ordered collection of byte-strings ([List]).
type Value interface {
	Operand

	// Equal reports structural value equality. Values of different types
	// are never equal.
	Equal(other Value) bool
}

// Str is a byte-string value.
type Str string

// Bool is a boolean value.
type Bool bool

// List is an ordered collection of byte-strings. A list appears only as
// the collection side of a membership test.
type List []Str

// Strings builds a [List] from the given elements.
func Strings(elements ...string) List {
	list := make(List, 0, len(elements))
	for _, e := range elements {
		list = append(list, Str(e))
	}
	return list
}

// Equal implements [Value].
func (v Str) Equal(other Value) bool {
	o, ok := other.(Str)
	return ok && v == o
}

// Equal implements [Value].
func (v Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && v == o
}

// Equal implements [Value]. Lists are equal when they have the same
// elements in the same order.
func (v List) Equal(other Value) bool {
	o, ok := other.(List)
	if !ok || len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// Attributes holds one source's attribute state, keyed by attribute name.
type Attributes map[string]Value

// UnmarshalJSON decodes an attribute map from its JSON form. JSON strings
// become [Str], booleans become [Bool], and arrays of strings become
// [List]; any other value shape is rejected.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Attributes, len(raw))
	for name, v := range raw {
		value, err := valueFromJSON(v)
		if err != nil {
			return errors.Wrapf(err, "attribute %q", name)
		}
		out[name] = value
	}
	*a = out
	return nil
}

func valueFromJSON(v interface{}) (Value, error) {
	switch t := v.(type) {
	case string:
		return Str(t), nil
	case bool:
		return Bool(t), nil
	case []interface{}:
		list := make(List, 0, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, errors.Errorf("list element %d is not a string", i)
			}
			list = append(list, Str(s))
		}
		return list, nil
	}
	return nil, errors.Errorf("unsupported value type %T", v)
}

// ActionID is the concrete identity of an attempted operation: the name of
// the resource it targets and the name of the action upon it. Policies
// declare pattern pairs matched against this identity.
type ActionID struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// Request is the immutable input to rule evaluation: the attempted
// operation's [ActionID] plus three independent attribute maps, one per
// [Source]. The caller builds a Request once per protected operation; the
// engine never mutates it.
type Request struct {
	ActionID ActionID   `json:"action_id"`
	Resource Attributes `json:"resource,omitempty"`
	Action   Attributes `json:"action,omitempty"`
	Subject  Attributes `json:"subject,omitempty"`
}

// Lookup resolves a key against the attribute map selected by its source.
// The second return is false when the attribute is absent.
func (r *Request) Lookup(k Key) (Value, bool) {
	var attrs Attributes
	switch k.Source {
	case SourceResource:
		attrs = r.Resource
	case SourceAction:
		attrs = r.Action
	case SourceSubject:
		attrs = r.Subject
	default:
		return nil, false
	}
	v, ok := attrs[k.Name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
