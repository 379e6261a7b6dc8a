//
//  Copyright © Manetu Inc. All rights reserved.
//

package rule

// Evaluate applies a validated rule to a request, producing the
// authorization verdict.
//
// Evaluate is total: every path returns a boolean and no error is ever
// raised. An attribute reference that does not resolve, or a resolved
// value whose type does not fit its operator (a membership collection that
// is not a list, an ordered comparison over non-strings), makes the
// smallest enclosing predicate false. The failure never propagates: sibling
// branches evaluate normally, and a denial stays local to the broken
// predicate.
//
// A nil rule and a nil request are both treated as non-matching input
// rather than a fault.
func Evaluate(r Rule, req *Request) bool {
	if req == nil {
		req = &Request{}
	}
	return evalRule(r, req)
}

func evalRule(r Rule, req *Request) bool {
	if r == nil {
		return false
	}
	return r.eval(req)
}

// resolve produces the concrete value of an operand: a literal stands for
// itself, a key is looked up in the request map selected by its source.
// This is the single resolution point shared by comparison and membership
// evaluation.
func resolve(op Operand, req *Request) (Value, bool) {
	switch o := op.(type) {
	case Key:
		return req.Lookup(o)
	case Value:
		return o, true
	}
	return nil, false
}

func (l Literal) eval(*Request) bool {
	return bool(l)
}

func (c Compare) eval(req *Request) bool {
	left, ok := resolve(c.Left, req)
	if !ok {
		return false
	}
	right, ok := resolve(c.Right, req)
	if !ok {
		return false
	}
	switch c.Op {
	case OpEq:
		return left.Equal(right)
	case OpNeq:
		return !left.Equal(right)
	case OpLt:
		return lessThan(left, right)
	case OpGt:
		return lessThan(right, left)
	}
	return false
}

// lessThan orders byte-strings lexicographically by byte value. Values of
// any other type have no order and compare false.
func lessThan(left, right Value) bool {
	l, ok := left.(Str)
	if !ok {
		return false
	}
	r, ok := right.(Str)
	if !ok {
		return false
	}
	return l < r
}

func (m Member) eval(req *Request) bool {
	element, ok := resolve(m.Element, req)
	if !ok {
		return false
	}
	collection, ok := resolve(m.Collection, req)
	if !ok {
		return false
	}
	list, ok := collection.(List)
	if !ok {
		return false
	}
	for _, item := range list {
		if item.Equal(element) {
			return true
		}
	}
	return false
}

func (n Not) eval(req *Request) bool {
	return !evalRule(n.Rule, req)
}

func (a And) eval(req *Request) bool {
	for _, r := range a.Rules {
		if !evalRule(r, req) {
			return false
		}
	}
	return true
}

func (o Or) eval(req *Request) bool {
	for _, r := range o.Rules {
		if evalRule(r, req) {
			return true
		}
	}
	return false
}

func (f If) eval(req *Request) bool {
	if evalRule(f.Cond, req) {
		return evalRule(f.Then, req)
	}
	return evalRule(f.Else, req)
}
