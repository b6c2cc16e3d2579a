// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package escape escapes SQL identifiers for PostgreSQL.
package escape

import (
	"strings"

	"github.com/lib/pq"
)

// Escaper escapes a single identifier. It never fails; escaping is purely
// syntactic.
type Escaper func(name string) string

// PostgresIdent returns name unchanged if it can be used as a bare
// PostgreSQL identifier and quotes it otherwise. A name is left bare when it
// is made of letters, digits, underscores and dollar signs, does not start
// with a digit or dollar sign and is not a reserved word.
//
// Letter case is not considered, so PostgresIdent("isFemale") returns
// isFemale, which PostgreSQL folds to lower case. Identifier corrects this.
func PostgresIdent(name string) string {
	if isBare(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteAlways quotes every identifier, whatever its contents.
func QuoteAlways(name string) string {
	return pq.QuoteIdentifier(name)
}

// Identifier escapes name with ident and then double quotes the result if
// name is case sensitive but ident left it untouched.
func Identifier(ident Escaper, name string) string {
	escaped := ident(name)
	if name != strings.ToLower(name) && escaped == name {
		return `"` + escaped + `"`
	}
	return escaped
}

func isBare(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && (r == '$' || '0' <= r && r <= '9'):
		default:
			return false
		}
	}
	return !reserved[strings.ToLower(name)]
}

// reserved holds the PostgreSQL key words that cannot be used as bare
// column or table names.
var reserved = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "asymmetric": true,
	"authorization": true, "binary": true, "both": true, "case": true,
	"cast": true, "check": true, "collate": true, "collation": true,
	"column": true, "concurrently": true, "constraint": true, "create": true,
	"cross": true, "current_catalog": true, "current_date": true,
	"current_role": true, "current_schema": true, "current_time": true,
	"current_timestamp": true, "current_user": true, "default": true,
	"deferrable": true, "desc": true, "distinct": true, "do": true,
	"else": true, "end": true, "except": true, "false": true, "fetch": true,
	"for": true, "foreign": true, "freeze": true, "from": true, "full": true,
	"grant": true, "group": true, "having": true, "ilike": true, "in": true,
	"initially": true, "inner": true, "intersect": true, "into": true,
	"is": true, "isnull": true, "join": true, "lateral": true, "leading": true,
	"left": true, "like": true, "limit": true, "localtime": true,
	"localtimestamp": true, "natural": true, "not": true, "notnull": true,
	"null": true, "offset": true, "on": true, "only": true, "or": true,
	"order": true, "outer": true, "overlaps": true, "placing": true,
	"primary": true, "references": true, "returning": true, "right": true,
	"select": true, "session_user": true, "similar": true, "some": true,
	"symmetric": true, "system_user": true, "table": true,
	"tablesample": true, "then": true, "to": true, "trailing": true,
	"true": true, "union": true, "unique": true, "user": true, "using": true,
	"variadic": true, "verbose": true, "when": true, "where": true,
	"window": true, "with": true,
}
