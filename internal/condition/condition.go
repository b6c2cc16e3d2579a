// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package condition compiles where predicates into SQL boolean expressions
// with bound arguments.
//
// Compilation happens in two steps. Normalize rewrites the shorthand
// predicate shapes into the canonical tree of groups and leaves. Compile
// then walks the tree, resolving and escaping column names and binding
// values, and parenthesizes every nested group that has more than one
// member. Operator precedence is therefore always explicit in the output.
package condition

import (
	"fmt"
	"strings"

	"github.com/canonical/sqlcraft/internal/fragment"
	"github.com/canonical/sqlcraft/where"
)

// Resolver maps a logical column name to the escaped name to write into
// the SQL.
type Resolver func(column string) (string, error)

// Normalize rewrites p into the canonical tree. Groups and leaves are
// returned unchanged. A nil predicate, or a nil pointer to one, becomes an
// empty group.
func Normalize(p where.Predicate) where.Node {
	switch p := p.(type) {
	case nil:
		return where.Or()
	case where.Group:
		return p
	case where.Leaf:
		return p
	case where.Fields:
		return rewrite(p, nil)
	case where.AnyOf:
		return rewrite(nil, p)
	case where.Dual:
		return rewrite(p.Fields, p.AnyOf)
	case *where.Group:
		if p == nil {
			return where.Or()
		}
		return *p
	case *where.Leaf:
		if p == nil {
			return where.Or()
		}
		return *p
	case *where.Fields:
		if p == nil {
			return where.Or()
		}
		return rewrite(*p, nil)
	case *where.AnyOf:
		if p == nil {
			return where.Or()
		}
		return rewrite(nil, *p)
	case *where.Dual:
		if p == nil {
			return where.Or()
		}
		return rewrite(p.Fields, p.AnyOf)
	default:
		panic(fmt.Sprintf("internal error: unknown predicate type %T", p))
	}
}

// rewrite turns the simple shapes into a tree. The fields become an "and"
// group of leaves and the members of anyOf become an "or" group appended to
// it. Without any fields the "or" group stands alone.
func rewrite(fields where.Fields, anyOf where.AnyOf) where.Node {
	var leaves []where.Node
	for _, f := range fields {
		if !f.Cmp.IsSet() {
			continue
		}
		leaves = append(leaves, where.Cond(f.Cmp.Op, f.Column, f.Cmp.Value, f.Cmp.Second))
	}

	var orBranch *where.Group
	if len(anyOf) > 0 {
		members := make([]where.Node, len(anyOf))
		for i, member := range anyOf {
			members[i] = Normalize(member)
		}
		g := where.Or(members...)
		orBranch = &g
	}

	if len(leaves) > 0 {
		if orBranch != nil {
			leaves = append(leaves, *orBranch)
		}
		return where.And(leaves...)
	}
	if orBranch != nil {
		return *orBranch
	}
	return where.Or()
}

// Compile compiles p into a boolean expression. The boolean result is false
// when p imposes no condition at all, in which case the fragment is empty
// and no where clause should be written.
func Compile(p where.Predicate, resolve Resolver) (fragment.Fragment, bool, error) {
	c := compiler{resolve: resolve}
	f, n, err := c.node(Normalize(p), false)
	if err != nil {
		return fragment.Fragment{}, false, err
	}
	return f, n > 0, nil
}

type compiler struct {
	resolve Resolver
}

// node compiles n and returns the number of conditions it contributed: 0
// for an empty group, 1 for a leaf and the number of compiled members for
// a group. A nested group with more than one member is wrapped in
// parentheses.
func (c compiler) node(n where.Node, nested bool) (fragment.Fragment, int, error) {
	switch n := n.(type) {
	case where.Leaf:
		f, err := c.leaf(n)
		if err != nil {
			return fragment.Fragment{}, 0, err
		}
		return f, 1, nil
	case where.Group:
		return c.group(n, nested)
	case *where.Leaf:
		if n == nil {
			return fragment.Fragment{}, 0, nil
		}
		return c.node(*n, nested)
	case *where.Group:
		if n == nil {
			return fragment.Fragment{}, 0, nil
		}
		return c.node(*n, nested)
	case nil:
		return fragment.Fragment{}, 0, nil
	default:
		panic(fmt.Sprintf("internal error: unknown predicate node %T", n))
	}
}

func (c compiler) group(g where.Group, nested bool) (fragment.Fragment, int, error) {
	var members []fragment.Fragment
	for _, child := range g.Children {
		f, n, err := c.node(child, true)
		if err != nil {
			return fragment.Fragment{}, 0, err
		}
		if n == 0 {
			continue
		}
		members = append(members, f)
	}
	if len(members) == 0 {
		return fragment.Fragment{}, 0, nil
	}

	f := fragment.Join(members, " "+string(g.Tag)+" ")
	if nested && len(members) > 1 {
		f = fragment.Text("(").Append(f).AppendText(")")
	}
	return f, len(members), nil
}

func (c compiler) leaf(l where.Leaf) (fragment.Fragment, error) {
	column, err := c.resolve(l.Column)
	if err != nil {
		return fragment.Fragment{}, err
	}

	if l.Value == nil {
		switch l.Op {
		case "=":
			return fragment.Text(column + " is null"), nil
		case "!=", "<>":
			return fragment.Text(column + " is not null"), nil
		}
	}

	switch strings.ToLower(l.Op) {
	case "= any":
		return fragment.Text(column + " = any (").Append(fragment.Value(l.Value)).AppendText(")"), nil
	case "between", "not between":
		return fragment.Concat(
			fragment.Text(column+" "+l.Op+" "),
			fragment.Value(l.Value),
			fragment.Text(" and "),
			fragment.Value(l.Second),
		), nil
	}
	return fragment.Text(column + " " + l.Op + " ").Append(fragment.Value(l.Value)), nil
}
