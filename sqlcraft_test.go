// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlcraft_test

import (
	"database/sql"
	"errors"
	"sync"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlcraft"
	"github.com/canonical/sqlcraft/where"
)

type QuerySuite struct{}

var _ = Suite(&QuerySuite{})

var people = sqlcraft.Table{
	Name: "people",
	Aliases: map[string]string{
		"isFemale": "female",
	},
}

var validQueryTests = []struct {
	summary      string
	opts         sqlcraft.Options
	expectedSQL  string
	expectedArgs []any
}{{
	summary: "insert single value",
	opts: sqlcraft.Options{
		Kind:   sqlcraft.Insert,
		Table:  sqlcraft.T("people"),
		Values: []sqlcraft.Record{{{"name", "Chris"}, {"female", false}}},
	},
	expectedSQL:  "insert into people (name, female) values ($1, $2)",
	expectedArgs: []any{"Chris", false},
}, {
	summary: "insert single value with aliases",
	opts: sqlcraft.Options{
		Kind:   sqlcraft.Insert,
		Table:  people,
		Values: []sqlcraft.Record{{{"name", "Chris"}, {"isFemale", false}}},
	},
	expectedSQL:  "insert into people (name, female) values ($1, $2)",
	expectedArgs: []any{"Chris", false},
}, {
	summary: "insert single value with returning",
	opts: sqlcraft.Options{
		Kind:      sqlcraft.Insert,
		Table:     sqlcraft.T("people"),
		Values:    []sqlcraft.Record{{{"name", "Chris"}, {"female", false}}},
		Returning: []string{"name", "female"},
	},
	expectedSQL:  "insert into people (name, female) values ($1, $2) returning name, female",
	expectedArgs: []any{"Chris", false},
}, {
	summary: "insert single value with returning with aliases",
	opts: sqlcraft.Options{
		Kind:      sqlcraft.Insert,
		Table:     people,
		Values:    []sqlcraft.Record{{{"name", "Chris"}, {"isFemale", false}}},
		Returning: []string{"name", "isFemale"},
	},
	expectedSQL:  `insert into people (name, female) values ($1, $2) returning name, female as "isFemale"`,
	expectedArgs: []any{"Chris", false},
}, {
	summary: "insert multiple values",
	opts: sqlcraft.Options{
		Kind:  sqlcraft.Insert,
		Table: sqlcraft.T("people"),
		Values: []sqlcraft.Record{
			{{"name", "Chris"}, {"female", false}},
			{{"name", "Chris 2"}, {"female", true}},
		},
		Returning: []string{"name", "female"},
	},
	expectedSQL:  "insert into people (name, female) values ($1, $2), ($3, $4) returning name, female",
	expectedArgs: []any{"Chris", false, "Chris 2", true},
}, {
	summary: "insert uses the union of the record columns",
	opts: sqlcraft.Options{
		Kind:  sqlcraft.Insert,
		Table: sqlcraft.T("people"),
		Values: []sqlcraft.Record{
			{{"name", "Chris"}},
			{{"color", "blue"}, {"name", "Kevin"}},
			{{"age", 30}},
		},
	},
	expectedSQL:  "insert into people (name, color, age) values ($1, $2, $3), ($4, $5, $6), ($7, $8, $9)",
	expectedArgs: []any{"Chris", nil, nil, "Kevin", "blue", nil, nil, nil, 30},
}, {
	summary: "insert with explicit columns",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Insert,
		Table:   sqlcraft.T("people"),
		Columns: []string{"color"},
		Values: []sqlcraft.Record{
			{{"name", "Chris"}, {"color", "blue"}},
			{{"name", "Kevin"}},
		},
	},
	expectedSQL:  "insert into people (color) values ($1), ($2)",
	expectedArgs: []any{"blue", nil},
}, {
	summary: "insert escapes the table name",
	opts: sqlcraft.Options{
		Kind:   sqlcraft.Insert,
		Table:  sqlcraft.T("People"),
		Values: []sqlcraft.Record{{{"name", "Chris"}}},
	},
	expectedSQL:  `insert into "People" (name) values ($1)`,
	expectedArgs: []any{"Chris"},
}, {
	summary: "select single column",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
	},
	expectedSQL:  "select name from people",
	expectedArgs: []any{},
}, {
	summary: "select multiple columns",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name", "female"},
	},
	expectedSQL:  "select name, female from people",
	expectedArgs: []any{},
}, {
	summary: "select without columns",
	opts: sqlcraft.Options{
		Kind:  sqlcraft.Select,
		Table: sqlcraft.T("people"),
	},
	expectedSQL:  "select * from people",
	expectedArgs: []any{},
}, {
	summary: "select with aliases",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   people,
		Columns: []string{"name", "isFemale"},
		Where:   where.Fields{{"isFemale", where.Cmp("=", true)}},
	},
	expectedSQL:  `select name, female as "isFemale" from people where female = $1`,
	expectedArgs: []any{true},
}, {
	summary: "select with simple where",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Where:   where.Fields{{"female", where.Cmp("=", false)}},
	},
	expectedSQL:  "select name from people where female = $1",
	expectedArgs: []any{false},
}, {
	summary: "select with where and",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Where: where.Fields{
			{"female", where.Cmp("=", false)},
			{"color", where.Cmp("!=", "blue")},
		},
	},
	expectedSQL:  "select name from people where female = $1 and color != $2",
	expectedArgs: []any{false, "blue"},
}, {
	summary: "select with where or",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Where: where.AnyOf{
			where.Fields{{"female", where.Cmp("=", false)}},
			where.Fields{{"color", where.Cmp("!=", "blue")}},
		},
	},
	expectedSQL:  "select name from people where female = $1 or color != $2",
	expectedArgs: []any{false, "blue"},
}, {
	summary: "select with where a and (b or c)",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Where: where.Dual{
			Fields: where.Fields{{"female", where.Cmp("=", false)}},
			AnyOf: where.AnyOf{
				where.Fields{{"color", where.Cmp("=", "blue")}},
				where.Fields{{"color", where.Cmp("=", "green")}},
			},
		},
	},
	expectedSQL:  "select name from people where female = $1 and (color = $2 or color = $3)",
	expectedArgs: []any{false, "blue", "green"},
}, {
	summary: "select with where a or (b and c) or d",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Where: where.AnyOf{
			where.Fields{{"female", where.Cmp("=", false)}},
			where.Fields{{"color", where.Cmp("=", "blue")}, {"female", where.Cmp("=", true)}},
			where.Fields{{"color", where.Cmp("=", "green")}},
		},
	},
	expectedSQL:  "select name from people where female = $1 or (color = $2 and female = $3) or color = $4",
	expectedArgs: []any{false, "blue", true, "green"},
}, {
	summary: "select with tree where",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   people,
		Columns: []string{"name"},
		Where: where.Or(
			where.Cond("=", "isFemale", true),
			where.And(
				where.Cond("between", "age", 20, 30),
				where.Cond("= any", "color", []string{"blue", "green"}),
			),
		),
	},
	expectedSQL:  "select name from people where female = $1 or (age between $2 and $3 and color = any ($4))",
	expectedArgs: []any{true, 20, 30, []string{"blue", "green"}},
}, {
	summary: "select with where and order by",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Where:   where.Fields{{"color", where.Cmp("=", "blue")}},
		OrderBy: []sqlcraft.Order{{Column: "name", Sort: "asc"}},
	},
	expectedSQL:  "select name from people where color = $1 order by name asc",
	expectedArgs: []any{"blue"},
}, {
	summary: "select with every order by form",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   people,
		Columns: []string{"name"},
		OrderBy: []sqlcraft.Order{
			{Column: "name", Sort: "desc", Nulls: "last"},
			{Column: "age", Sort: "<"},
			{Column: "isFemale", Nulls: "first"},
			{Column: "id"},
		},
	},
	expectedSQL:  "select name from people order by name desc nulls last, age using <, female nulls first, id",
	expectedArgs: []any{},
}, {
	summary: "select with limit and offset",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Where:   where.Fields{{"color", where.Cmp("=", "blue")}},
		Limit:   10,
		Offset:  20,
	},
	expectedSQL:  "select name from people where color = $1 limit $2 offset $3",
	expectedArgs: []any{"blue", 10, 20},
}, {
	summary: "select with zero limit and offset",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Offset:  5,
	},
	expectedSQL:  "select name from people offset $1",
	expectedArgs: []any{5},
}, {
	summary: "select with empty where",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Where:   where.AnyOf{},
	},
	expectedSQL:  "select name from people",
	expectedArgs: []any{},
}, {
	summary: "select with case sensitive and reserved columns",
	opts: sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"firstName", "user"},
		Where:   where.Fields{{"order", where.Cmp(">", 1)}},
	},
	expectedSQL:  `select "firstName", "user" from people where "order" > $1`,
	expectedArgs: []any{1},
}, {
	summary: "update with where",
	opts: sqlcraft.Options{
		Kind:  sqlcraft.Update,
		Table: sqlcraft.T("people"),
		Set:   sqlcraft.Record{{"color", "green"}},
		Where: where.Fields{{"color", where.Cmp("=", "blue")}},
	},
	expectedSQL:  "update people set color = $1 where color = $2",
	expectedArgs: []any{"green", "blue"},
}, {
	summary: "update multiple columns",
	opts: sqlcraft.Options{
		Kind:      sqlcraft.Update,
		Table:     people,
		Set:       sqlcraft.Record{{"color", "green"}, {"isFemale", true}},
		Where:     where.Fields{{"id", where.Cmp("=", 3)}},
		Returning: []string{"id", "isFemale"},
	},
	expectedSQL:  `update people set (color,female) = ($1, $2) where id = $3 returning id, female as "isFemale"`,
	expectedArgs: []any{"green", true, 3},
}, {
	summary: "update without where",
	opts: sqlcraft.Options{
		Kind:  sqlcraft.Update,
		Table: sqlcraft.T("people"),
		Set:   sqlcraft.Record{{"color", nil}},
	},
	expectedSQL:  "update people set color = $1",
	expectedArgs: []any{nil},
}, {
	summary: "delete with where",
	opts: sqlcraft.Options{
		Kind:  sqlcraft.Delete,
		Table: sqlcraft.T("people"),
		Where: where.Fields{{"color", where.Cmp("=", "blue")}},
	},
	expectedSQL:  "delete from people where color = $1",
	expectedArgs: []any{"blue"},
}, {
	summary: "delete with where is null",
	opts: sqlcraft.Options{
		Kind:  sqlcraft.Delete,
		Table: sqlcraft.T("people"),
		Where: where.Fields{{"color", where.Cmp("=", nil)}},
	},
	expectedSQL:  "delete from people where color is null",
	expectedArgs: []any{},
}, {
	summary: "delete with where is not null",
	opts: sqlcraft.Options{
		Kind:  sqlcraft.Delete,
		Table: sqlcraft.T("people"),
		Where: where.Fields{{"color", where.Cmp("!=", nil)}},
	},
	expectedSQL:  "delete from people where color is not null",
	expectedArgs: []any{},
}, {
	summary: "delete everything with returning",
	opts: sqlcraft.Options{
		Kind:      sqlcraft.Delete,
		Table:     people,
		Returning: []string{"isFemale"},
	},
	expectedSQL:  `delete from people returning female as "isFemale"`,
	expectedArgs: []any{},
}}

func (s *QuerySuite) TestValidQuery(c *C) {
	for i, test := range validQueryTests {
		c.Logf("test %d: %s", i, test.summary)
		stmt, err := sqlcraft.CreateQuery(test.opts)
		c.Assert(err, IsNil)
		c.Assert(stmt, NotNil)
		c.Check(stmt.SQL(), Equals, test.expectedSQL)
		c.Check(stmt.Args(), DeepEquals, test.expectedArgs)
		c.Check(stmt.Texts(), HasLen, len(test.expectedArgs)+1)
	}
}

func (s *QuerySuite) TestNothingToDo(c *C) {
	var tests = []struct {
		summary string
		opts    sqlcraft.Options
	}{{
		summary: "insert without values",
		opts:    sqlcraft.Options{Kind: sqlcraft.Insert, Table: sqlcraft.T("people")},
	}, {
		summary: "insert with empty values",
		opts:    sqlcraft.Options{Kind: sqlcraft.Insert, Table: sqlcraft.T("people"), Values: []sqlcraft.Record{}},
	}, {
		summary: "insert of empty records",
		opts:    sqlcraft.Options{Kind: sqlcraft.Insert, Table: sqlcraft.T("people"), Values: []sqlcraft.Record{{}, {}}},
	}, {
		summary: "insert with empty column list",
		opts: sqlcraft.Options{
			Kind:    sqlcraft.Insert,
			Table:   sqlcraft.T("people"),
			Columns: []string{},
			Values:  []sqlcraft.Record{{{"name", "Chris"}}},
		},
	}, {
		summary: "update without set",
		opts:    sqlcraft.Options{Kind: sqlcraft.Update, Table: sqlcraft.T("people")},
	}, {
		summary: "update with empty set",
		opts: sqlcraft.Options{
			Kind:  sqlcraft.Update,
			Table: sqlcraft.T("people"),
			Set:   sqlcraft.Record{},
			Where: where.Fields{{"id", where.Cmp("=", 1)}},
		},
	}}
	for i, test := range tests {
		c.Logf("test %d: %s", i, test.summary)
		stmt, err := sqlcraft.CreateQuery(test.opts)
		c.Check(err, IsNil)
		c.Check(stmt, IsNil)
	}
}

func (s *QuerySuite) TestInsertPlaceholdersAreRowMajor(c *C) {
	var records []sqlcraft.Record
	for i := 0; i < 7; i++ {
		records = append(records, sqlcraft.Record{{"a", i * 10}, {"b", i*10 + 1}, {"c", i*10 + 2}})
	}
	stmt, err := sqlcraft.CreateQuery(sqlcraft.Options{
		Kind:   sqlcraft.Insert,
		Table:  sqlcraft.T("t"),
		Values: records,
	})
	c.Assert(err, IsNil)

	args := stmt.Args()
	c.Assert(args, HasLen, 7*3)
	for row := 0; row < 7; row++ {
		for col := 0; col < 3; col++ {
			c.Check(args[row*3+col], Equals, row*10+col)
		}
	}
}

func (s *QuerySuite) TestTexts(c *C) {
	stmt, err := sqlcraft.CreateQuery(sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Where:   where.Fields{{"color", where.Cmp("=", "blue")}},
		OrderBy: []sqlcraft.Order{{Column: "name", Sort: "asc"}},
	})
	c.Assert(err, IsNil)
	c.Check(stmt.Texts(), DeepEquals, []string{"select name from people where color = ", " order by name asc"})
	c.Check(stmt.Args(), DeepEquals, []any{"blue"})
	c.Check(stmt.String(), Equals, stmt.SQL())
}

func (s *QuerySuite) TestCyclicAlias(c *C) {
	cyclic := sqlcraft.Table{
		Name:    "t",
		Aliases: map[string]string{"a": "b", "b": "c", "c": "a", "d": "d"},
	}
	var tests = []struct {
		summary string
		opts    sqlcraft.Options
		err     string
	}{{
		summary: "where",
		opts: sqlcraft.Options{
			Kind:  sqlcraft.Delete,
			Table: cyclic,
			Where: where.Fields{{"a", where.Cmp("=", 1)}},
		},
		err: "cannot create delete query: cyclic alias in table t: a -> b -> c -> a",
	}, {
		summary: "projection",
		opts: sqlcraft.Options{
			Kind:    sqlcraft.Select,
			Table:   cyclic,
			Columns: []string{"b"},
		},
		err: "cannot create select query: cyclic alias in table t: b -> c -> a -> b",
	}, {
		summary: "self alias",
		opts: sqlcraft.Options{
			Kind:   sqlcraft.Insert,
			Table:  cyclic,
			Values: []sqlcraft.Record{{{"d", 1}}},
		},
		err: "cannot create insert query: cyclic alias in table t: d -> d",
	}, {
		summary: "order by",
		opts: sqlcraft.Options{
			Kind:    sqlcraft.Select,
			Table:   cyclic,
			OrderBy: []sqlcraft.Order{{Column: "c"}},
		},
		err: "cannot create select query: cyclic alias in table t: c -> a -> b -> c",
	}, {
		summary: "update set",
		opts: sqlcraft.Options{
			Kind:  sqlcraft.Update,
			Table: cyclic,
			Set:   sqlcraft.Record{{"a", 1}},
		},
		err: "cannot create update query: cyclic alias in table t: a -> b -> c -> a",
	}}
	for i, test := range tests {
		c.Logf("test %d: %s", i, test.summary)
		stmt, err := sqlcraft.CreateQuery(test.opts)
		c.Check(stmt, IsNil)
		c.Check(err, ErrorMatches, test.err)
		c.Check(errors.Is(err, sqlcraft.ErrCyclicAlias), Equals, true)
	}
}

func (s *QuerySuite) TestAliasChain(c *C) {
	chained := sqlcraft.Table{
		Name:    "t",
		Aliases: map[string]string{"displayName": "name", "name": "full_name"},
	}
	stmt, err := sqlcraft.CreateQuery(sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   chained,
		Columns: []string{"displayName", "name", "full_name"},
		Where:   where.Fields{{"displayName", where.Cmp("=", "x")}},
	})
	c.Assert(err, IsNil)
	c.Check(stmt.SQL(), Equals, `select full_name as "displayName", full_name as name, full_name from t where full_name = $1`)
}

func (s *QuerySuite) TestColumnName(c *C) {
	t := sqlcraft.Table{
		Name:    "People",
		Aliases: map[string]string{"isFemale": "female", "createdAt": "Created At", "x": "y", "y": "x"},
	}
	c.Check(t.TableName(), Equals, "People")

	var tests = []struct {
		logical  string
		expected string
	}{
		{"isFemale", "female"},
		{"createdAt", `"Created At"`},
		{"firstName", `"firstName"`},
		{"name", "name"},
		{"select", `"select"`},
		{`my"col`, `"my""col"`},
	}
	for _, test := range tests {
		name, err := t.ColumnName(test.logical)
		c.Check(err, IsNil)
		c.Check(name, Equals, test.expected)
	}

	_, err := t.ColumnName("x")
	c.Check(err, ErrorMatches, "cyclic alias in table People: x -> y -> x")
}

func (s *QuerySuite) TestUnknownKindPanics(c *C) {
	c.Check(func() {
		_, _ = sqlcraft.CreateQuery(sqlcraft.Options{Kind: "upsert", Table: sqlcraft.T("t")})
	}, PanicMatches, `sqlcraft: unknown statement kind "upsert"`)
}

func (s *QuerySuite) TestParseKind(c *C) {
	for _, name := range []string{"select", "insert", "update", "delete"} {
		k, err := sqlcraft.ParseKind(name)
		c.Check(err, IsNil)
		c.Check(k, Equals, sqlcraft.Kind(name))
	}
	_, err := sqlcraft.ParseKind("SELECT")
	c.Check(err, ErrorMatches, `unknown statement kind "SELECT"`)
	c.Check(errors.Is(err, sqlcraft.ErrUnknownKind), Equals, true)
}

func (s *QuerySuite) TestQuoteAllBuilder(c *C) {
	b := &sqlcraft.Builder{Escaper: sqlcraft.QuoteAll}
	stmt, err := b.CreateQuery(sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   people,
		Columns: []string{"name", "isFemale"},
		Where:   where.Fields{{"color", where.Cmp("=", "blue")}},
	})
	c.Assert(err, IsNil)
	c.Check(stmt.SQL(), Equals, `select "name", "female" as "isFemale" from people where "color" = $1`)
}

func (s *QuerySuite) TestInline(c *C) {
	stmt, err := sqlcraft.CreateQuery(sqlcraft.Options{
		Kind:  sqlcraft.Insert,
		Table: sqlcraft.T("people"),
		Values: []sqlcraft.Record{
			{{"name", "Chris"}, {"color", "blue"}},
			{{"name", "O'Brien"}, {"color", nil}},
		},
	})
	c.Assert(err, IsNil)
	c.Check(stmt.Inline(), Equals, "insert into people (name, color) values ('Chris', 'blue'), ('O''Brien', null)")

	stmt, err = sqlcraft.CreateQuery(sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name", "age"},
		Where:   where.Fields{{"female", where.Cmp("=", true)}, {"age", where.Cmp(">", 30)}},
		Limit:   5,
	})
	c.Assert(err, IsNil)
	c.Check(stmt.Inline(), Equals, "select name, age from people where female = true and age > 30 limit 5")
}

func (s *QuerySuite) TestInlineTypedNil(c *C) {
	stmt, err := sqlcraft.CreateQuery(sqlcraft.Options{
		Kind:  sqlcraft.Delete,
		Table: sqlcraft.T("t"),
		Where: where.Fields{
			{"x", where.Cmp("=", (*string)(nil))},
			{"y", where.Cmp("=", (*sql.NullString)(nil))},
		},
	})
	c.Assert(err, IsNil)
	c.Check(stmt.SQL(), Equals, "delete from t where x = $1 and y = $2")
	c.Check(stmt.Inline(), Equals, "delete from t where x = null and y = null")
}

func (s *QuerySuite) TestPointerPredicates(c *C) {
	var tests = []struct {
		summary  string
		where    where.Predicate
		expected string
	}{
		{"fields", &where.Fields{{"a", where.Cmp("=", 1)}}, "select * from t where a = $1"},
		{"any of", &where.AnyOf{where.Fields{{"a", where.Cmp("=", 1)}}, where.Fields{{"b", where.Cmp("=", 2)}}}, "select * from t where a = $1 or b = $2"},
		{"dual", &where.Dual{Fields: where.Fields{{"a", where.Cmp("=", 1)}}}, "select * from t where a = $1"},
		{"leaf", &where.Leaf{Op: "=", Column: "a", Value: 1}, "select * from t where a = $1"},
		{"nil group", (*where.Group)(nil), "select * from t"},
		{"nil leaf", (*where.Leaf)(nil), "select * from t"},
		{"nil fields", (*where.Fields)(nil), "select * from t"},
		{"nil any of", (*where.AnyOf)(nil), "select * from t"},
		{"nil dual", (*where.Dual)(nil), "select * from t"},
	}
	for i, test := range tests {
		c.Logf("test %d: %s", i, test.summary)
		stmt, err := sqlcraft.CreateQuery(sqlcraft.Options{
			Kind:  sqlcraft.Select,
			Table: sqlcraft.T("t"),
			Where: test.where,
		})
		c.Assert(err, IsNil)
		c.Check(stmt.SQL(), Equals, test.expected)
	}
}

type person struct {
	Name   string `db:"name"`
	Female bool   `db:"isFemale"`
	Color  string `db:"color,omitempty"`
	Secret string
}

func (s *QuerySuite) TestRecordOf(c *C) {
	rs, err := sqlcraft.RecordsOf([]person{
		{Name: "Chris", Female: false, Color: "blue"},
		{Name: "Mary", Female: true},
	})
	c.Assert(err, IsNil)
	c.Check(rs, DeepEquals, []sqlcraft.Record{
		{{"name", "Chris"}, {"isFemale", false}, {"color", "blue"}},
		{{"name", "Mary"}, {"isFemale", true}},
	})

	stmt, err := sqlcraft.CreateQuery(sqlcraft.Options{
		Kind:   sqlcraft.Insert,
		Table:  people,
		Values: rs,
	})
	c.Assert(err, IsNil)
	c.Check(stmt.SQL(), Equals, "insert into people (name, female, color) values ($1, $2, $3), ($4, $5, $6)")
	c.Check(stmt.Args(), DeepEquals, []any{"Chris", false, "blue", "Mary", true, nil})

	r, err := sqlcraft.RecordOf(&person{Name: "Kevin"})
	c.Assert(err, IsNil)
	c.Check(r, DeepEquals, sqlcraft.Record{{"name", "Kevin"}, {"isFemale", false}})

	_, err = sqlcraft.RecordOf(42)
	c.Check(err, ErrorMatches, "cannot get record: need struct, got int")
}

func (s *QuerySuite) TestRecordFromMap(c *C) {
	r := sqlcraft.RecordFromMap(map[string]any{"name": "Chris", "age": 30, "color": "blue"})
	c.Check(r, DeepEquals, sqlcraft.Record{{"age", 30}, {"color", "blue"}, {"name", "Chris"}})
	c.Check(r.Columns(), DeepEquals, []string{"age", "color", "name"})

	v, ok := r.Get("color")
	c.Check(ok, Equals, true)
	c.Check(v, Equals, "blue")
	_, ok = r.Get("missing")
	c.Check(ok, Equals, false)
}

func (s *QuerySuite) TestConcurrentCreateQuery(c *C) {
	opts := sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   people,
		Columns: []string{"name", "isFemale"},
		Where: where.Dual{
			Fields: where.Fields{{"isFemale", where.Cmp("=", true)}},
			AnyOf: where.AnyOf{
				where.Fields{{"color", where.Cmp("=", "blue")}},
				where.Fields{{"color", where.Cmp("=", nil)}},
			},
		},
		OrderBy: []sqlcraft.Order{{Column: "name"}},
		Limit:   3,
	}
	expected, err := sqlcraft.CreateQuery(opts)
	c.Assert(err, IsNil)

	var wg sync.WaitGroup
	results := make([]*sqlcraft.Statement, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = sqlcraft.CreateQuery(opts)
		}(i)
	}
	wg.Wait()

	for _, stmt := range results {
		c.Assert(stmt, NotNil)
		c.Check(stmt.Texts(), DeepEquals, expected.Texts())
		c.Check(stmt.Args(), DeepEquals, expected.Args())
	}
}
