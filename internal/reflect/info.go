package reflect

import (
	"reflect"

	"github.com/pkg/errors"
)

// Info describes the ability to return reflection information.
type Info interface {
	Name() string
	Kind() reflect.Kind
}

// Value represents reflection information for a simple type.
type Value struct {
	typ reflect.Type
}

// Kind returns the Value's reflect.Kind.
func (r Value) Kind() reflect.Kind {
	return r.typ.Kind()
}

// Name returns the name of the Value's type.
func (r Value) Name() string {
	return r.typ.Name()
}

// Field represents a single field from a struct type.
type Field struct {
	index []int

	// Name is the name of the struct field.
	Name string

	// Tag is the column name given by the field's "db" tag.
	Tag string

	// OmitEmpty is true when "omitempty" is
	// a property of the field's "db" tag.
	OmitEmpty bool
}

// Struct represents reflected information about a struct type.
type Struct struct {
	typ reflect.Type

	// Fields holds the struct fields with a "db" tag, in declaration order.
	// Fields without a "db" tag are ignored.
	Fields []Field
}

// Kind returns the Struct's reflect.Kind.
func (r Struct) Kind() reflect.Kind {
	return r.typ.Kind()
}

// Name returns the name of the Struct's type.
func (r Struct) Name() string {
	return r.typ.Name()
}

// FieldValue is the value held by a tagged field of a struct value.
type FieldValue struct {
	Tag   string
	Value any
}

// Values returns the values of the tagged fields of v, which must be a
// value of, or a pointer to, the reflected struct type. Fields tagged
// "omitempty" that hold their zero value are left out.
func (r Struct) Values(v any) ([]FieldValue, error) {
	value := reflect.Indirect(reflect.ValueOf(v))
	if !value.IsValid() {
		return nil, errors.New("nil value")
	}
	if value.Type() != r.typ {
		return nil, errors.Errorf("value of type %s does not match %s", value.Type(), r.typ)
	}

	values := make([]FieldValue, 0, len(r.Fields))
	for _, f := range r.Fields {
		fv := value.FieldByIndex(f.index)
		if f.OmitEmpty && fv.IsZero() {
			continue
		}
		values = append(values, FieldValue{Tag: f.Tag, Value: fv.Interface()})
	}
	return values, nil
}
