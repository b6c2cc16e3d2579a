// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package where defines the filter predicates accepted by sqlcraft.

A predicate can be written in three shapes. The simple shapes are shorthand
and are rewritten into the tree shape before they are compiled.

Fields is an implicit AND over columns:

	where.Fields{
		{"female", where.Cmp("=", false)},
		{"color", where.Cmp("!=", "blue")},
	}
	// female = $1 and color != $2

AnyOf is an OR over simple predicates:

	where.AnyOf{
		where.Fields{{"female", where.Cmp("=", false)}},
		where.Fields{{"color", where.Cmp("!=", "blue")}},
	}
	// female = $1 or color != $2

Dual combines both, the OR group becoming the last member of the AND:

	where.Dual{
		Fields: where.Fields{{"female", where.Cmp("=", false)}},
		AnyOf: where.AnyOf{
			where.Fields{{"color", where.Cmp("=", "blue")}},
			where.Fields{{"color", where.Cmp("=", "green")}},
		},
	}
	// female = $1 and (color = $2 or color = $3)

The tree shape nests And and Or groups over leaf conditions:

	where.Or(
		where.Cond("=", "female", false),
		where.And(
			where.Cond("=", "color", "blue"),
			where.Cond("between", "age", 20, 30),
		),
	)
	// female = $1 or (color = $2 and age between $3 and $4)

Comparing with a nil value using "=" produces "is null", and using "!=" or
"<>" produces "is not null", at any depth and in any shape.

Operators are copied into the SQL text verbatim so that dialect specific
operators can be used. They are not sanitized: never build them from
untrusted input.
*/
package where

// Predicate is a filter in any of the accepted shapes.
type Predicate interface {
	// predicate is a marker method.
	predicate()
}

// Node is a member of the canonical predicate tree, either a Group or a
// Leaf.
type Node interface {
	Predicate

	// node is a marker method.
	node()
}

// Tag is the boolean connective of a Group.
type Tag string

const (
	TagAnd Tag = "and"
	TagOr  Tag = "or"
)

// Group joins its children with its Tag. A group without children imposes
// no condition.
type Group struct {
	Tag      Tag
	Children []Node
}

// Marker functions for Predicate and Node.
func (Group) predicate() {}
func (Group) node()      {}

// And returns a group that is true when all of children are true.
func And(children ...Node) Group {
	return Group{Tag: TagAnd, Children: children}
}

// Or returns a group that is true when any of children is true.
func Or(children ...Node) Group {
	return Group{Tag: TagOr, Children: children}
}

// Leaf compares a column with one value, or two for the between operators.
type Leaf struct {
	Op     string
	Column string
	Value  any
	// Second is the upper bound of "between" and "not between". It is
	// ignored by other operators.
	Second any
}

// Marker functions for Predicate and Node.
func (Leaf) predicate() {}
func (Leaf) node()      {}

// Cond returns a leaf comparing column with value using op. An optional
// second value is the upper bound of "between" and "not between".
//
// Only an untyped nil value turns "=" into "is null" and "!=" or "<>" into
// "is not null". A typed nil, such as (*string)(nil), is bound as an
// argument like any other value.
func Cond(op, column string, value any, second ...any) Leaf {
	l := Leaf{Op: op, Column: column, Value: value}
	if len(second) > 0 {
		l.Second = second[0]
	}
	return l
}

// Comparison is the operator and operand(s) applied to one column of a
// Fields predicate. A Comparison with an empty Op is unset and the field
// holding it is skipped.
type Comparison struct {
	Op     string
	Value  any
	Second any
}

// Cmp returns a Comparison of op with value and an optional second value.
// As with Cond, only an untyped nil value compiles to "is null" or
// "is not null".
func Cmp(op string, value any, second ...any) Comparison {
	c := Comparison{Op: op, Value: value}
	if len(second) > 0 {
		c.Second = second[0]
	}
	return c
}

// IsSet reports whether the comparison has an operator.
func (c Comparison) IsSet() bool {
	return c.Op != ""
}

// Field pairs a column with a comparison.
type Field struct {
	Column string
	Cmp    Comparison
}

// Fields is a conjunction of column comparisons, kept in order.
type Fields []Field

// AnyOf is a disjunction of predicates, kept in order.
type AnyOf []Predicate

// Dual is a conjunction of Fields with one extra member, the disjunction
// AnyOf.
type Dual struct {
	Fields Fields
	AnyOf  AnyOf
}

// Marker functions for Predicate.
func (Fields) predicate() {}
func (AnyOf) predicate()  {}
func (Dual) predicate()   {}
