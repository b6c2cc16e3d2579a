// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlcraft

import (
	"strings"

	"github.com/canonical/sqlcraft/internal/condition"
	"github.com/canonical/sqlcraft/internal/fragment"
)

// assemblers maps each statement kind to the function building it. The
// boolean result is false when the statement has nothing to do.
var assemblers = map[Kind]func(*assembler) (fragment.Fragment, bool, error){
	Select: (*assembler).selectStatement,
	Insert: (*assembler).insertStatement,
	Update: (*assembler).updateStatement,
	Delete: (*assembler).deleteStatement,
}

// assembler builds the clauses of one statement.
type assembler struct {
	opts  Options
	table resolver
}

func (a *assembler) selectStatement() (fragment.Fragment, bool, error) {
	projection := "*"
	if len(a.opts.Columns) > 0 {
		var err error
		projection, err = a.table.projection(a.opts.Columns)
		if err != nil {
			return fragment.Fragment{}, false, err
		}
	}
	q := fragment.Text("select " + projection + " from " + a.table.tableName())

	q, err := a.appendWhere(q)
	if err != nil {
		return fragment.Fragment{}, false, err
	}
	q, err = a.appendOrderBy(q)
	if err != nil {
		return fragment.Fragment{}, false, err
	}
	if a.opts.Limit != 0 {
		q = q.AppendText(" limit ").Append(fragment.Value(a.opts.Limit))
	}
	if a.opts.Offset != 0 {
		q = q.AppendText(" offset ").Append(fragment.Value(a.opts.Offset))
	}
	return q, true, nil
}

func (a *assembler) insertStatement() (fragment.Fragment, bool, error) {
	if len(a.opts.Values) == 0 {
		return fragment.Fragment{}, false, nil
	}
	columns := a.opts.Columns
	if columns == nil {
		columns = unionColumns(a.opts.Values)
	}
	if len(columns) == 0 {
		return fragment.Fragment{}, false, nil
	}

	cols, err := a.table.columns(columns)
	if err != nil {
		return fragment.Fragment{}, false, err
	}

	rows := make([]fragment.Fragment, len(a.opts.Values))
	for i, record := range a.opts.Values {
		row := make([]any, len(columns))
		for j, col := range columns {
			// A record without the column inserts null.
			row[j], _ = record.Get(col)
		}
		rows[i] = fragment.WrappedValueList(row)
	}

	table := a.table.escape(a.table.tableName())
	q := fragment.Text("insert into " + table + " (" + strings.Join(cols, ", ") + ") values ").
		Append(fragment.Join(rows, ", "))
	return a.appendReturning(q)
}

func (a *assembler) updateStatement() (fragment.Fragment, bool, error) {
	if len(a.opts.Set) == 0 {
		return fragment.Fragment{}, false, nil
	}
	cols, err := a.table.columns(a.opts.Set.Columns())
	if err != nil {
		return fragment.Fragment{}, false, err
	}
	values := make([]any, len(a.opts.Set))
	for i, p := range a.opts.Set {
		values[i] = p.Value
	}

	// Several columns are assigned with a row value constructor.
	var left string
	var right fragment.Fragment
	if len(cols) > 1 {
		left = "(" + strings.Join(cols, ",") + ")"
		right = fragment.WrappedValueList(values)
	} else {
		left = cols[0]
		right = fragment.Value(values[0])
	}

	q := fragment.Text("update " + a.table.tableName() + " set " + left + " = ").Append(right)
	q, err = a.appendWhere(q)
	if err != nil {
		return fragment.Fragment{}, false, err
	}
	return a.appendReturning(q)
}

func (a *assembler) deleteStatement() (fragment.Fragment, bool, error) {
	q, err := a.appendWhere(fragment.Text("delete from " + a.table.tableName()))
	if err != nil {
		return fragment.Fragment{}, false, err
	}
	return a.appendReturning(q)
}

// appendWhere appends the where clause, if the statement has a condition.
func (a *assembler) appendWhere(q fragment.Fragment) (fragment.Fragment, error) {
	cond, ok, err := condition.Compile(a.opts.Where, a.table.column)
	if err != nil {
		return fragment.Fragment{}, err
	}
	if !ok {
		return q, nil
	}
	return q.AppendText(" where ").Append(cond), nil
}

// appendOrderBy appends the order by clause, if the statement has one.
func (a *assembler) appendOrderBy(q fragment.Fragment) (fragment.Fragment, error) {
	if len(a.opts.OrderBy) == 0 {
		return q, nil
	}
	clauses := make([]string, len(a.opts.OrderBy))
	for i, o := range a.opts.OrderBy {
		col, err := a.table.column(o.Column)
		if err != nil {
			return fragment.Fragment{}, err
		}
		switch o.Sort {
		case "":
		case "asc", "desc":
			col += " " + o.Sort
		default:
			col += " using " + o.Sort
		}
		if o.Nulls != "" {
			col += " nulls " + o.Nulls
		}
		clauses[i] = col
	}
	return q.AppendText(" order by " + strings.Join(clauses, ", ")), nil
}

// appendReturning appends the returning clause, if columns are requested.
func (a *assembler) appendReturning(q fragment.Fragment) (fragment.Fragment, bool, error) {
	if len(a.opts.Returning) == 0 {
		return q, true, nil
	}
	projection, err := a.table.projection(a.opts.Returning)
	if err != nil {
		return fragment.Fragment{}, false, err
	}
	return q.AppendText(" returning " + projection), true, nil
}
