// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package cli

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// writeResults writes the rendered statements in the configured format.
func writeResults(w io.Writer, cfg *Config, results []result) error {
	switch cfg.Format {
	case FormatJSON:
		return writeJSON(w, cfg.Inline, results)
	case FormatTable:
		return writeTable(w, cfg.Inline, results)
	default:
		return writeText(w, cfg.Inline, results)
	}
}

func writeText(w io.Writer, inline bool, results []result) error {
	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "-- %s #%d\n", res.File, res.Document)
		if res.Statement == nil {
			b.WriteString("-- nothing to do\n")
			continue
		}
		if inline {
			b.WriteString(res.Statement.Inline() + ";\n")
			continue
		}
		b.WriteString(res.Statement.SQL() + ";\n")
		if args := res.Statement.Args(); len(args) > 0 {
			encoded, err := encodeArgs(args)
			if err != nil {
				return err
			}
			b.WriteString("-- args: " + encoded + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type jsonStatement struct {
	File     string `json:"file"`
	Document int    `json:"document"`
	SQL      string `json:"sql,omitempty"`
	Args     []any  `json:"args,omitempty"`
	Empty    bool   `json:"empty,omitempty"`
}

func writeJSON(w io.Writer, inline bool, results []result) error {
	statements := make([]jsonStatement, len(results))
	for i, res := range results {
		s := jsonStatement{File: res.File, Document: res.Document}
		switch {
		case res.Statement == nil:
			s.Empty = true
		case inline:
			s.SQL = res.Statement.Inline()
		default:
			s.SQL = res.Statement.SQL()
			args, err := driverValues(res.Statement.Args())
			if err != nil {
				return err
			}
			s.Args = args
		}
		statements[i] = s
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(statements)
}

func writeTable(w io.Writer, inline bool, results []result) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if inline {
		t.AppendHeader(table.Row{"file", "doc", "sql"})
	} else {
		t.AppendHeader(table.Row{"file", "doc", "sql", "args"})
	}

	for _, res := range results {
		row := table.Row{res.File, res.Document}
		switch {
		case res.Statement == nil:
			row = append(row, "(nothing to do)")
		case inline:
			row = append(row, res.Statement.Inline())
		default:
			encoded, err := encodeArgs(res.Statement.Args())
			if err != nil {
				return err
			}
			row = append(row, res.Statement.SQL(), encoded)
		}
		t.AppendRow(row)
	}

	t.Render()
	return nil
}

// driverValues converts arguments implementing driver.Valuer, such as
// arrays, to the value sent to the database.
func driverValues(args []any) ([]any, error) {
	values := make([]any, len(args))
	for i, arg := range args {
		if v, ok := arg.(driver.Valuer); ok {
			dv, err := v.Value()
			if err != nil {
				return nil, fmt.Errorf("cannot convert argument %d: %w", i+1, err)
			}
			arg = dv
		}
		values[i] = arg
	}
	return values, nil
}

// encodeArgs returns the arguments as a compact JSON array.
func encodeArgs(args []any) (string, error) {
	values, err := driverValues(args)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "", fmt.Errorf("cannot encode arguments: %w", err)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}
