// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlcraft

import (
	"errors"
	"fmt"

	"github.com/canonical/sqlcraft/internal/escape"
	"github.com/canonical/sqlcraft/where"
)

// ErrUnknownKind is returned by ParseKind for names that are not a
// statement kind.
var ErrUnknownKind = errors.New("unknown statement kind")

// Kind selects the statement built by CreateQuery.
type Kind string

const (
	Select Kind = "select"
	Insert Kind = "insert"
	Update Kind = "update"
	Delete Kind = "delete"
)

// ParseKind validates a statement kind coming from outside the program.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := assemblers[k]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Options describes a statement. Which fields are used depends on Kind:
//
//   - Select: Table, Columns, Where, OrderBy, Limit, Offset.
//   - Insert: Table, Values, Columns, Returning.
//   - Update: Table, Set, Where, Returning.
//   - Delete: Table, Where, Returning.
//
// Column names are logical names, resolved through Table.Aliases.
type Options struct {
	Kind  Kind
	Table Table

	// Columns is the projection of a select, or the column list of an
	// insert. An insert without Columns uses every column found in Values.
	Columns []string
	// Values are the rows of an insert.
	Values []Record
	// Set holds the assignments of an update.
	Set Record
	// Where filters the rows of a select, update or delete. nil selects
	// every row.
	Where where.Predicate
	// OrderBy sorts the rows of a select.
	OrderBy []Order
	// Limit and Offset paginate a select. Zero means unset.
	Limit  int
	Offset int
	// Returning lists the columns to return from an insert, update or
	// delete.
	Returning []string
}

// Order sorts a select by one column.
type Order struct {
	Column string
	// Sort is "asc", "desc", or the name of an ordering operator which is
	// written as "using <Sort>". Empty leaves the database default.
	Sort string
	// Nulls is "first" or "last". Empty leaves the database default.
	Nulls string
}

// Builder builds statements using a given identifier escaper.
type Builder struct {
	// Escaper escapes identifiers. nil uses the PostgreSQL rules, quoting
	// only the identifiers that need it.
	Escaper func(name string) string
}

// QuoteAll is a Builder escaper that double quotes every identifier.
var QuoteAll = escape.QuoteAlways

var defaultBuilder = &Builder{}

// CreateQuery builds the statement described by opts with the default
// Builder.
func CreateQuery(opts Options) (*Statement, error) {
	return defaultBuilder.CreateQuery(opts)
}

// CreateQuery builds the statement described by opts.
//
// An insert without values or columns, and an update without assignments,
// have nothing to do: CreateQuery then returns a nil Statement and a nil
// error. Callers must check for a nil Statement before using it.
//
// CreateQuery panics if opts.Kind is not one of the Kind constants. Use
// ParseKind to validate kinds that are not constants of the program.
func (b *Builder) CreateQuery(opts Options) (stmt *Statement, err error) {
	assemble, ok := assemblers[opts.Kind]
	if !ok {
		panic(fmt.Sprintf("sqlcraft: unknown statement kind %q", opts.Kind))
	}
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot create %s query: %w", opts.Kind, err)
		}
	}()

	a := &assembler{opts: opts, table: b.resolver(opts.Table)}
	f, ok, err := assemble(a)
	if err != nil || !ok {
		return nil, err
	}
	return &Statement{f: f}, nil
}

func (b *Builder) resolver(t Table) resolver {
	ident := escape.PostgresIdent
	if b != nil && b.Escaper != nil {
		ident = b.Escaper
	}
	return resolver{table: t, ident: ident}
}
