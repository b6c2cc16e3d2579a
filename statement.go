// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlcraft

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/canonical/sqlcraft/internal/fragment"
)

// Statement is a parameterized SQL statement built by CreateQuery. It is
// immutable.
//
// The statement is made of literal text pieces interleaved with arguments:
// Texts()[0], Args()[0], Texts()[1], Args()[1], ... SQL returns the text
// with $1, $2, ... in place of the arguments, ready to be passed to a
// database/sql driver together with Args:
//
//	stmt, err := sqlcraft.CreateQuery(opts)
//	...
//	rows, err := db.QueryContext(ctx, stmt.SQL(), stmt.Args()...)
type Statement struct {
	f fragment.Fragment
}

// SQL returns the statement text with positional placeholders.
func (s *Statement) SQL() string {
	return s.f.SQL()
}

// Args returns the arguments bound to the placeholders, in order.
func (s *Statement) Args() []any {
	return s.f.Args()
}

// Texts returns the literal text pieces surrounding the arguments. There is
// always one more piece than there are arguments.
func (s *Statement) Texts() []string {
	return s.f.Texts()
}

// String returns the statement text with positional placeholders.
func (s *Statement) String() string {
	return s.SQL()
}

// Inline returns the statement text with the arguments written in as SQL
// literals. It is meant for logs and debugging output only: the result must
// never be sent to a database.
func (s *Statement) Inline() string {
	return s.f.Render(func(_ int, arg any) string {
		return literal(arg)
	})
}

// literal renders a value as a PostgreSQL literal. Nil pointers, as well
// as nil maps and slices, are null.
func literal(v any) string {
	if isNil(v) {
		return "null"
	}
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return pq.QuoteLiteral(v)
	case []byte:
		return `'\x` + hex.EncodeToString(v) + `'`
	case bool:
		return strconv.FormatBool(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v)
	case time.Time:
		return pq.QuoteLiteral(v.Format(time.RFC3339Nano))
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return pq.QuoteLiteral(fmt.Sprint(v))
		}
		return literal(dv)
	case fmt.Stringer:
		return pq.QuoteLiteral(v.String())
	default:
		return pq.QuoteLiteral(fmt.Sprint(v))
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
