package reflect

import (
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// cache is responsible for generating, caching and retrieving reflection
// information about the types records are built from. It is safe for
// concurrent use.
type cache struct {
	mutex sync.RWMutex
	cache map[reflect.Type]Info
}

var typeCache = &cache{cache: make(map[reflect.Type]Info)}

// Cache returns the process wide reflection cache. Its only use to callers
// is the Reflect method.
func Cache() *cache {
	return typeCache
}

// Reflect will return the Info of the type of a given value,
// generating and caching as required.
func (r *cache) Reflect(value any) (Info, error) {
	if value == nil {
		return nil, errors.New("cannot reflect nil value")
	}
	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.mutex.RLock()
	info, ok := r.cache[t]
	r.mutex.RUnlock()
	if ok {
		return info, nil
	}

	info, err := generate(t)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	r.cache[t] = info
	r.mutex.Unlock()
	return info, nil
}

// generate produces and returns reflection information for the input
// reflect.Type.
func generate(typ reflect.Type) (Info, error) {
	// If this is a not a struct, we can not provide
	// any further reflection information.
	if typ.Kind() != reflect.Struct {
		return Value{typ: typ}, nil
	}

	info := Struct{typ: typ}
	tags := make(map[string]bool)
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		// Fields without a "db" tag are ignored.
		tag := field.Tag.Get("db")
		if tag == "" {
			continue
		}
		if !field.IsExported() {
			return nil, errors.Errorf("field %q of %s is not exported", field.Name, typ.Name())
		}

		tag, omitEmpty, err := parseTag(tag)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q of %s", field.Name, typ.Name())
		}
		if tags[tag] {
			return nil, errors.Errorf("column %q tagged more than once in %s", tag, typ.Name())
		}
		tags[tag] = true

		info.Fields = append(info.Fields, Field{
			index:     field.Index,
			Name:      field.Name,
			Tag:       tag,
			OmitEmpty: omitEmpty,
		})
	}

	return info, nil
}

// parseTag parses the input tag string and returns its
// name and whether it contains the "omitempty" option.
func parseTag(tag string) (string, bool, error) {
	options := strings.Split(tag, ",")

	var omitEmpty bool
	if len(options) > 1 {
		if strings.ToLower(options[1]) != "omitempty" {
			return "", false, errors.Errorf("unexpected tag value %q", options[1])
		}
		omitEmpty = true
	}

	return options[0], omitEmpty, nil
}
