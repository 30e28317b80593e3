package resource

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type refIDer interface {
	RefID() string
}

var (
	refIDerType = reflect.TypeOf((*refIDer)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// registerRefTypes makes the validator see every Ref used by typ as its string id,
// so `required`, `omitempty` and `dive` behave like on plain ids.
func registerRefTypes(validate *validator.Validate, typ reflect.Type, seen map[reflect.Type]bool) {
	if validate == nil || seen[typ] {
		return
	}
	seen[typ] = true

	if typ.Implements(refIDerType) {
		validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
			return v.Interface().(refIDer).RefID()
		}, reflect.Zero(typ).Interface())
		return
	}

	switch typ.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array:
		registerRefTypes(validate, typ.Elem(), seen)
	case reflect.Struct:
		if typ == timeType {
			return
		}
		for i := 0; i < typ.NumField(); i++ {
			registerRefTypes(validate, typ.Field(i).Type, seen)
		}
	}
}

// bsonFields maps the top-level bson names of a struct to their types.
func bsonFields(typ reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type)
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("bson")
		name := strings.SplitN(tag, ",", 2)[0]
		if strings.Contains(tag, "inline") && f.Type.Kind() == reflect.Struct {
			for k, v := range bsonFields(f.Type) {
				fields[k] = v
			}
			continue
		}
		if name == "-" || f.PkgPath != "" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		fields[name] = f.Type
	}
	return fields
}

// parseValue converts a query value to the kind stored for a field of type typ.
func parseValue(raw string, typ reflect.Type) (interface{}, error) {
	if typ.Implements(refIDerType) {
		return raw, nil
	}
	if typ == timeType {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.New("must be an RFC3339 timestamp")
		}
		return t.UTC(), nil
	}

	switch typ.Kind() {
	case reflect.String:
		return raw, nil
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("must be a boolean")
		}
		return b, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("must be an integer")
		}
		return n, nil
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("must be a number")
		}
		return n, nil
	case reflect.Slice:
		// array fields match documents containing the element
		return parseValue(raw, typ.Elem())
	}
	return nil, errors.Errorf("cannot filter on %s", typ.Kind())
}
