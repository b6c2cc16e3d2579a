// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package fragment implements the parameterized SQL fragment used to build
// statements: an ordered list of literal text pieces interleaved with bound
// argument values.
package fragment

import (
	"strconv"
	"strings"
)

// Fragment is a piece of SQL with bound arguments. The text pieces and the
// arguments interleave as texts[0], args[0], texts[1], args[1], ...,
// texts[n]. There is always exactly one more text piece than there are
// arguments.
//
// A Fragment is immutable. Every operation returns a new Fragment with its
// own backing arrays, so fragments may be shared freely between goroutines
// and reused in several statements.
type Fragment struct {
	texts []string
	args  []any
}

// Text returns a fragment holding only literal SQL text.
func Text(s string) Fragment {
	return Fragment{texts: []string{s}}
}

// Value returns a fragment holding a single bound argument.
func Value(v any) Fragment {
	return Fragment{texts: []string{"", ""}, args: []any{v}}
}

// pieces returns the text pieces of f. The zero Fragment is treated as a
// single empty text piece.
func (f Fragment) pieces() []string {
	if len(f.texts) == 0 {
		return []string{""}
	}
	return f.texts
}

// Append returns the concatenation of f and o. The last text piece of f is
// merged with the first text piece of o.
func (f Fragment) Append(o Fragment) Fragment {
	ft, ot := f.pieces(), o.pieces()
	texts := make([]string, 0, len(ft)+len(ot)-1)
	texts = append(texts, ft[:len(ft)-1]...)
	texts = append(texts, ft[len(ft)-1]+ot[0])
	texts = append(texts, ot[1:]...)

	var args []any
	if n := len(f.args) + len(o.args); n > 0 {
		args = make([]any, 0, n)
		args = append(args, f.args...)
		args = append(args, o.args...)
	}
	return Fragment{texts: texts, args: args}
}

// AppendText returns f followed by the literal text s.
func (f Fragment) AppendText(s string) Fragment {
	return f.Append(Text(s))
}

// Texts returns a copy of the literal text pieces.
func (f Fragment) Texts() []string {
	p := f.pieces()
	texts := make([]string, len(p))
	copy(texts, p)
	return texts
}

// Args returns a copy of the bound arguments in binding order.
func (f Fragment) Args() []any {
	args := make([]any, len(f.args))
	copy(args, f.args)
	return args
}

// NumArgs returns the number of bound arguments.
func (f Fragment) NumArgs() int {
	return len(f.args)
}

// SQL returns the SQL text with the arguments replaced by the positional
// placeholders $1, $2, ... in binding order.
func (f Fragment) SQL() string {
	return f.Render(func(i int, _ any) string {
		return "$" + strconv.Itoa(i+1)
	})
}

// Render interleaves the text pieces with the strings returned by
// placeholder for each argument. i is the zero based argument index.
func (f Fragment) Render(placeholder func(i int, arg any) string) string {
	var b strings.Builder
	p := f.pieces()
	for i, text := range p {
		b.WriteString(text)
		if i < len(f.args) {
			b.WriteString(placeholder(i, f.args[i]))
		}
	}
	return b.String()
}

// Concat folds frags left to right with Append. Concatenating no fragments
// returns the empty fragment.
func Concat(frags ...Fragment) Fragment {
	var out Fragment
	for i, f := range frags {
		if i == 0 {
			out = f
			continue
		}
		out = out.Append(f)
	}
	return out
}

// Join concatenates frags with the literal sep between successive fragments.
func Join(frags []Fragment, sep string) Fragment {
	var out Fragment
	for i, f := range frags {
		if i == 0 {
			out = f
			continue
		}
		out = out.AppendText(sep).Append(f)
	}
	return out
}

// ValueList binds every item as its own argument, separated by ", ". Items
// are never interpolated into the text, whatever their type.
func ValueList(items []any) Fragment {
	frags := make([]Fragment, len(items))
	for i, item := range items {
		frags[i] = Value(item)
	}
	return Join(frags, ", ")
}

// WrappedValueList is ValueList surrounded by parentheses.
func WrappedValueList(items []any) Fragment {
	return Text("(").Append(ValueList(items)).AppendText(")")
}
