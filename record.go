// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlcraft

import (
	"fmt"
	"sort"

	"github.com/canonical/sqlcraft/internal/reflect"
)

// Pair is one column of a Record.
type Pair struct {
	Column string
	Value  any
}

// Record maps logical column names to values, in order. It holds the rows
// of an insert and the assignments of an update.
type Record []Pair

// Get returns the value of column and whether the record has it.
func (r Record) Get(column string) (any, bool) {
	for _, p := range r {
		if p.Column == column {
			return p.Value, true
		}
	}
	return nil, false
}

// Columns returns the column names of the record in order.
func (r Record) Columns() []string {
	cols := make([]string, len(r))
	for i, p := range r {
		cols[i] = p.Column
	}
	return cols
}

// RecordFromMap returns a record holding the entries of m, sorted by column
// name.
func RecordFromMap(m map[string]any) Record {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	r := make(Record, len(cols))
	for i, col := range cols {
		r[i] = Pair{Column: col, Value: m[col]}
	}
	return r
}

// RecordOf returns a record holding the fields of the struct v, or of the
// struct v points to, that have a "db" tag. The tag gives the column name.
// Fields are kept in declaration order. Fields tagged "omitempty", as in
// `db:"name,omitempty"`, are left out when they hold their zero value.
//
//	type Person struct {
//		Name   string `db:"name"`
//		Female bool   `db:"isFemale"`
//		Notes  string `db:"notes,omitempty"`
//	}
//
//	sqlcraft.RecordOf(Person{Name: "Chris"})
//	// Record{{"name", "Chris"}, {"isFemale", false}}
func RecordOf(v any) (Record, error) {
	info, err := reflect.Cache().Reflect(v)
	if err != nil {
		return nil, fmt.Errorf("cannot get record: %w", err)
	}
	s, ok := info.(reflect.Struct)
	if !ok {
		return nil, fmt.Errorf("cannot get record: need struct, got %s", info.Kind())
	}
	values, err := s.Values(v)
	if err != nil {
		return nil, fmt.Errorf("cannot get record: %w", err)
	}
	r := make(Record, len(values))
	for i, fv := range values {
		r[i] = Pair{Column: fv.Tag, Value: fv.Value}
	}
	return r, nil
}

// RecordsOf returns a record for each element of a slice of structs.
func RecordsOf[T any](vs []T) ([]Record, error) {
	rs := make([]Record, len(vs))
	for i, v := range vs {
		r, err := RecordOf(v)
		if err != nil {
			return nil, err
		}
		rs[i] = r
	}
	return rs, nil
}

// columnSet is an insertion ordered set of column names.
type columnSet struct {
	order []string
	seen  map[string]bool
}

func newColumnSet() *columnSet {
	return &columnSet{seen: map[string]bool{}}
}

func (s *columnSet) add(col string) {
	if s.seen[col] {
		return
	}
	s.seen[col] = true
	s.order = append(s.order, col)
}

// unionColumns returns every column used by records, in the order they are
// first seen.
func unionColumns(records []Record) []string {
	set := newColumnSet()
	for _, r := range records {
		for _, p := range r {
			set.add(p.Column)
		}
	}
	return set.order
}
