// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlcraft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/canonical/sqlcraft/internal/escape"
)

// ErrCyclicAlias is returned when following the aliases of a table column
// comes back to a name already seen.
var ErrCyclicAlias = errors.New("cyclic alias")

// Table names the table a statement works on and maps the logical column
// names used in Options to the physical column names of the table.
//
// An alias may point to another alias; the chain is followed until a name
// without an alias is found. For example, with
//
//	Table{Name: "people", Aliases: map[string]string{"isFemale": "female"}}
//
// the logical column isFemale is written as female in the SQL, and a select
// of isFemale projects "female as "isFemale"".
//
// The table name itself is written into select, update and delete
// statements as it is, without escaping. Never build it from untrusted
// input.
type Table struct {
	Name    string
	Aliases map[string]string
}

// T returns a table without aliases.
func T(name string) Table {
	return Table{Name: name}
}

// TableName returns the table name as written in select, update and delete
// statements.
func (t Table) TableName() string {
	return t.Name
}

// ColumnName follows the aliases of the logical column name and returns the
// escaped physical name.
func (t Table) ColumnName(logical string) (string, error) {
	return resolver{table: t, ident: escape.PostgresIdent}.column(logical)
}

// resolver resolves and escapes the column names of a table.
type resolver struct {
	table Table
	ident escape.Escaper
}

// tableName returns the table name as written in the SQL.
func (r resolver) tableName() string {
	return r.table.TableName()
}

// escape escapes an identifier.
func (r resolver) escape(name string) string {
	return escape.Identifier(r.ident, name)
}

// physical follows the alias chain of column and returns the physical,
// unescaped name.
func (r resolver) physical(column string) (string, error) {
	if len(r.table.Aliases) == 0 {
		return column, nil
	}
	seen := make(map[string]bool, len(r.table.Aliases)+1)
	chain := []string{column}
	for {
		next, ok := r.table.Aliases[column]
		if !ok || next == "" {
			return column, nil
		}
		seen[column] = true
		if seen[next] {
			chain = append(chain, next)
			return "", fmt.Errorf("%w in table %s: %s", ErrCyclicAlias, r.table.Name, strings.Join(chain, " -> "))
		}
		chain = append(chain, next)
		column = next
	}
}

// column resolves and escapes a logical column name.
func (r resolver) column(name string) (string, error) {
	physical, err := r.physical(name)
	if err != nil {
		return "", err
	}
	return r.escape(physical), nil
}

// columns resolves and escapes a list of logical column names.
func (r resolver) columns(names []string) ([]string, error) {
	cols := make([]string, len(names))
	for i, name := range names {
		col, err := r.column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return cols, nil
}

// projection writes the columns of a select or returning clause. Columns
// whose physical name differs from their logical name are renamed back to
// the logical name with "as".
func (r resolver) projection(names []string) (string, error) {
	parts := make([]string, len(names))
	for i, name := range names {
		col, err := r.column(name)
		if err != nil {
			return "", err
		}
		if logical := r.escape(name); col != logical {
			col = col + " as " + logical
		}
		parts[i] = col
	}
	return strings.Join(parts, ", "), nil
}
