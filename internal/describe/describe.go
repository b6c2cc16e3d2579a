// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package describe decodes statement descriptions written in YAML, or in
// JSON which is read as YAML.
//
// A description is a mapping with the fields of sqlcraft.Options:
//
//	kind: select
//	table:
//	  name: people
//	  aliases: {isFemale: female}
//	columns: [name, isFemale]
//	where: {color: ["=", blue]}
//	orderBy: [{column: name, sort: asc}]
//	limit: 10
//
// The where field accepts the following shapes:
//
//   - a mapping from column to [op, value, second] is a conjunction of
//     comparisons. A null comparison is skipped;
//   - a sequence starting with "and" or "or" followed by a sequence of
//     members is an explicit group, and any other sequence starting with a
//     string is a single [op, column, value, second] condition;
//   - a sequence of two elements whose second element is a sequence is a
//     conjunction of comparisons combined with a disjunction;
//   - any other sequence is a disjunction of its members.
//
// Mapping keys keep the order they have in the document.
package describe

import (
	"errors"
	"fmt"
	"io"

	"github.com/lib/pq"
	"gopkg.in/yaml.v3"

	"github.com/canonical/sqlcraft"
	"github.com/canonical/sqlcraft/where"
)

// Decode reads a single description from r.
func Decode(r io.Reader) (sqlcraft.Options, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return sqlcraft.Options{}, errors.New("cannot decode description: empty document")
		}
		return sqlcraft.Options{}, fmt.Errorf("cannot decode description: %w", err)
	}
	opts, err := decodeDocument(&doc)
	if err != nil {
		return sqlcraft.Options{}, fmt.Errorf("cannot decode description: %w", err)
	}
	return opts, nil
}

// DecodeAll reads every description of a multi document stream from r.
func DecodeAll(r io.Reader) ([]sqlcraft.Options, error) {
	dec := yaml.NewDecoder(r)
	var all []sqlcraft.Options
	for i := 1; ; i++ {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return all, nil
		}
		if err != nil {
			return nil, fmt.Errorf("cannot decode description %d: %w", i, err)
		}
		opts, err := decodeDocument(&doc)
		if err != nil {
			return nil, fmt.Errorf("cannot decode description %d: %w", i, err)
		}
		all = append(all, opts)
	}
}

// nodeError reports a problem with a node of the document.
func nodeError(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

// resolve follows aliases and unwraps document nodes.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return n
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func isString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

// pairs calls f on each key/value pair of a mapping node, in document order.
func pairs(n *yaml.Node, f func(key string, value *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return nodeError(n, "expected a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := resolve(n.Content[i])
		if !isString(key) {
			return nodeError(key, "mapping keys must be strings")
		}
		if err := f(key.Value, resolve(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

func decodeDocument(doc *yaml.Node) (sqlcraft.Options, error) {
	root := resolve(doc)
	var opts sqlcraft.Options
	var hasKind, hasTable bool
	err := pairs(root, func(key string, v *yaml.Node) error {
		var err error
		switch key {
		case "kind":
			var kind string
			if err := v.Decode(&kind); err != nil {
				return nodeError(v, "invalid kind: %v", err)
			}
			if opts.Kind, err = sqlcraft.ParseKind(kind); err != nil {
				return nodeError(v, "%v", err)
			}
			hasKind = true
		case "table":
			opts.Table, err = decodeTable(v)
			hasTable = true
		case "columns":
			opts.Columns, err = decodeNames(v)
		case "values":
			opts.Values, err = decodeRecords(v)
		case "set":
			opts.Set, err = decodeRecord(v)
		case "where":
			opts.Where, err = decodeWhere(v)
		case "orderBy":
			opts.OrderBy, err = decodeOrderBy(v)
		case "limit":
			opts.Limit, err = decodeCount(v)
		case "offset":
			opts.Offset, err = decodeCount(v)
		case "returning":
			opts.Returning, err = decodeNames(v)
		default:
			return nodeError(v, "unknown field %q", key)
		}
		return err
	})
	if err != nil {
		return sqlcraft.Options{}, err
	}
	if !hasKind {
		return sqlcraft.Options{}, nodeError(root, "missing kind")
	}
	if !hasTable {
		return sqlcraft.Options{}, nodeError(root, "missing table")
	}
	return opts, nil
}

func decodeTable(n *yaml.Node) (sqlcraft.Table, error) {
	if isString(n) {
		return sqlcraft.T(n.Value), nil
	}
	var t struct {
		Name    string            `yaml:"name"`
		Aliases map[string]string `yaml:"aliases"`
	}
	if n.Kind != yaml.MappingNode {
		return sqlcraft.Table{}, nodeError(n, "table must be a name or a mapping")
	}
	if err := n.Decode(&t); err != nil {
		return sqlcraft.Table{}, nodeError(n, "invalid table: %v", err)
	}
	if t.Name == "" {
		return sqlcraft.Table{}, nodeError(n, "table without name")
	}
	return sqlcraft.Table{Name: t.Name, Aliases: t.Aliases}, nil
}

func decodeNames(n *yaml.Node) ([]string, error) {
	var names []string
	if err := n.Decode(&names); err != nil {
		return nil, nodeError(n, "expected a list of column names")
	}
	return names, nil
}

func decodeCount(n *yaml.Node) (int, error) {
	var count int
	if err := n.Decode(&count); err != nil || count < 0 {
		return 0, nodeError(n, "expected a non negative integer, got %q", n.Value)
	}
	return count, nil
}

// decodeValue decodes a bound value. Sequences become PostgreSQL arrays.
func decodeValue(n *yaml.Node) (any, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, nodeError(n, "invalid value: %v", err)
		}
		return v, nil
	case yaml.SequenceNode:
		items := make([]any, len(n.Content))
		for i, item := range n.Content {
			item = resolve(item)
			if item.Kind != yaml.ScalarNode {
				return nil, nodeError(item, "array items must be scalars")
			}
			if err := item.Decode(&items[i]); err != nil {
				return nil, nodeError(item, "invalid value: %v", err)
			}
		}
		return pq.Array(items), nil
	default:
		return nil, nodeError(n, "values must be scalars or sequences of scalars")
	}
}

func decodeRecord(n *yaml.Node) (sqlcraft.Record, error) {
	r := sqlcraft.Record{}
	err := pairs(n, func(key string, v *yaml.Node) error {
		value, err := decodeValue(v)
		if err != nil {
			return err
		}
		r = append(r, sqlcraft.Pair{Column: key, Value: value})
		return nil
	})
	return r, err
}

func decodeRecords(n *yaml.Node) ([]sqlcraft.Record, error) {
	if n.Kind == yaml.MappingNode {
		r, err := decodeRecord(n)
		if err != nil {
			return nil, err
		}
		return []sqlcraft.Record{r}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, nodeError(n, "values must be a record or a list of records")
	}
	rs := make([]sqlcraft.Record, len(n.Content))
	for i, item := range n.Content {
		r, err := decodeRecord(resolve(item))
		if err != nil {
			return nil, err
		}
		rs[i] = r
	}
	return rs, nil
}

func decodeOrderBy(n *yaml.Node) ([]sqlcraft.Order, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeError(n, "orderBy must be a list")
	}
	orders := make([]sqlcraft.Order, len(n.Content))
	for i, item := range n.Content {
		item = resolve(item)
		if isString(item) {
			orders[i] = sqlcraft.Order{Column: item.Value}
			continue
		}
		var o struct {
			Column string `yaml:"column"`
			Sort   string `yaml:"sort"`
			Nulls  string `yaml:"nulls"`
		}
		if item.Kind != yaml.MappingNode {
			return nil, nodeError(item, "orderBy items must be a column or a mapping")
		}
		if err := item.Decode(&o); err != nil {
			return nil, nodeError(item, "invalid order: %v", err)
		}
		if o.Column == "" {
			return nil, nodeError(item, "order without column")
		}
		orders[i] = sqlcraft.Order{Column: o.Column, Sort: o.Sort, Nulls: o.Nulls}
	}
	return orders, nil
}

// decodeWhere recognizes the shape of a where node.
func decodeWhere(n *yaml.Node) (where.Predicate, error) {
	n = resolve(n)
	switch {
	case isNull(n):
		return nil, nil
	case n.Kind == yaml.MappingNode:
		return decodeFields(n)
	case n.Kind != yaml.SequenceNode:
		return nil, nodeError(n, "where must be a mapping or a sequence")
	case len(n.Content) > 0 && isString(resolve(n.Content[0])):
		return decodeNode(n)
	case len(n.Content) == 2 && resolve(n.Content[1]).Kind == yaml.SequenceNode:
		return decodeDual(n)
	default:
		return decodeAnyOf(n)
	}
}

func decodeFields(n *yaml.Node) (where.Fields, error) {
	fields := where.Fields{}
	err := pairs(n, func(column string, v *yaml.Node) error {
		if isNull(v) {
			return nil
		}
		cmp, err := decodeComparison(v)
		if err != nil {
			return err
		}
		fields = append(fields, where.Field{Column: column, Cmp: cmp})
		return nil
	})
	return fields, err
}

// decodeComparison decodes [op, value, second].
func decodeComparison(n *yaml.Node) (where.Comparison, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) < 2 || len(n.Content) > 3 {
		return where.Comparison{}, nodeError(n, "comparison must be [op, value] or [op, value, second]")
	}
	op := resolve(n.Content[0])
	if !isString(op) {
		return where.Comparison{}, nodeError(op, "operator must be a string")
	}
	values, err := decodeValues(n.Content[1:])
	if err != nil {
		return where.Comparison{}, err
	}
	return where.Cmp(op.Value, values[0], values[1:]...), nil
}

func decodeValues(nodes []*yaml.Node) ([]any, error) {
	values := make([]any, len(nodes))
	for i, v := range nodes {
		value, err := decodeValue(v)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

func decodeAnyOf(n *yaml.Node) (where.AnyOf, error) {
	anyOf := make(where.AnyOf, len(n.Content))
	for i, item := range n.Content {
		item = resolve(item)
		if item.Kind != yaml.MappingNode && item.Kind != yaml.SequenceNode {
			return nil, nodeError(item, "members of a disjunction must be mappings or sequences")
		}
		p, err := decodeWhere(item)
		if err != nil {
			return nil, err
		}
		anyOf[i] = p
	}
	return anyOf, nil
}

func decodeDual(n *yaml.Node) (where.Dual, error) {
	var dual where.Dual
	first := resolve(n.Content[0])
	if !isNull(first) {
		if first.Kind != yaml.MappingNode {
			return where.Dual{}, nodeError(first, "expected a mapping of comparisons")
		}
		fields, err := decodeFields(first)
		if err != nil {
			return where.Dual{}, err
		}
		dual.Fields = fields
	}
	anyOf, err := decodeAnyOf(resolve(n.Content[1]))
	if err != nil {
		return where.Dual{}, err
	}
	dual.AnyOf = anyOf
	return dual, nil
}

// decodeNode decodes an explicit group or condition.
func decodeNode(n *yaml.Node) (where.Node, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 || !isString(resolve(n.Content[0])) {
		return nil, nodeError(n, "expected a group or a condition")
	}
	head := resolve(n.Content[0]).Value
	if head == string(where.TagAnd) || head == string(where.TagOr) {
		if len(n.Content) != 2 || resolve(n.Content[1]).Kind != yaml.SequenceNode {
			return nil, nodeError(n, "%s group must be [%s, [members...]]", head, head)
		}
		members := resolve(n.Content[1]).Content
		children := make([]where.Node, len(members))
		for i, m := range members {
			child, err := decodeNode(resolve(m))
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return where.Group{Tag: where.Tag(head), Children: children}, nil
	}

	if len(n.Content) < 3 || len(n.Content) > 4 {
		return nil, nodeError(n, "condition must be [op, column, value] or [op, column, value, second]")
	}
	column := resolve(n.Content[1])
	if !isString(column) {
		return nil, nodeError(column, "column must be a string")
	}
	values, err := decodeValues(n.Content[2:])
	if err != nil {
		return nil, err
	}
	return where.Cond(head, column.Value, values[0], values[1:]...), nil
}
