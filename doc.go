/*
sqlcraft builds parameterized SQL statements from plain Go descriptions of the
table, columns, filters, ordering and pagination they work on.

Every value is passed to the database as a bound argument and never written
into the SQL text. Column names are escaped, and can be mapped from the
logical names used by the program to the physical names of the table.
The generated SQL uses PostgreSQL syntax and $1, $2, ... placeholders.

# Basics

A statement is described by an Options value and built with CreateQuery:

	stmt, err := sqlcraft.CreateQuery(sqlcraft.Options{
		Kind:    sqlcraft.Select,
		Table:   sqlcraft.T("people"),
		Columns: []string{"name"},
		Where:   where.Fields{{"color", where.Cmp("=", "blue")}},
		OrderBy: []sqlcraft.Order{{Column: "name", Sort: "asc"}},
	})

	stmt.SQL()  // select name from people where color = $1 order by name asc
	stmt.Args() // [blue]

Inserts take the rows as Records. Without an explicit column list, the columns
are every column found in the records, in the order they first appear:

	stmt, err := sqlcraft.CreateQuery(sqlcraft.Options{
		Kind:  sqlcraft.Insert,
		Table: sqlcraft.T("people"),
		Values: []sqlcraft.Record{
			{{"name", "Chris"}, {"color", "blue"}},
			{{"name", "Kevin"}, {"color", "blue"}},
		},
		Returning: []string{"name"},
	})

	// insert into people (name, color) values ($1, $2), ($3, $4) returning name

Records can also be built from structs with "db" tags using RecordOf.

An insert without rows and an update without assignments have nothing to do.
For those CreateQuery returns a nil *Statement and a nil error.

# Aliases

A Table may carry aliases from logical to physical column names. Filters,
assignments and orderings use the physical name. Projections rename the
physical column back to its logical name:

	people := sqlcraft.Table{
		Name:    "people",
		Aliases: map[string]string{"isFemale": "female"},
	}
	// select name, female as "isFemale" from people where female = $1

Case sensitive logical names are quoted so that they come back from the
database with their case intact.

# Filters

Filters are values of the where package. See its documentation for the
accepted shapes and for how they are parenthesized.
*/
package sqlcraft
