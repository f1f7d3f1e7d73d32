package tx

import (
	"reflect"
	"strings"
	"sync"
)

// flattenField holds pre-computed metadata for a single struct field.
type flattenField struct {
	index     int
	name      string
	omitempty bool
}

// flattenInfo holds cached flatten metadata for a struct type.
type flattenInfo struct {
	fields []flattenField
}

// flattenCache stores pre-computed flattenInfo per type to avoid repeated reflection.
var flattenCache sync.Map // map[reflect.Type]*flattenInfo

// parseFieldTag parses a tx struct tag.
// Format: "FieldName,omitempty". Returns skip=true for tags to ignore ("-").
func parseFieldTag(tag string) (name string, omitempty bool, skip bool) {
	if tag == "" || tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

// getFlattenInfo returns the cached flattenInfo for a struct type.
// On first access, it computes and caches the info.
func getFlattenInfo(t reflect.Type) *flattenInfo {
	if cached, ok := flattenCache.Load(t); ok {
		return cached.(*flattenInfo)
	}

	info := &flattenInfo{}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip embedded fields (like BaseTx)
		if field.Anonymous {
			continue
		}

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		name, omitempty, skip := parseFieldTag(field.Tag.Get("tx"))
		if skip {
			continue
		}

		info.fields = append(info.fields, flattenField{
			index:     i,
			name:      name,
			omitempty: omitempty,
		})
	}

	flattenCache.Store(t, info)
	return info
}

// isEmptyValue returns true if the reflect.Value should be considered empty for omitempty.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.String:
		return v.String() == ""
	case reflect.Slice, reflect.Array:
		return v.Len() == 0
	case reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	default:
		return false
	}
}

// ReflectFlatten generates a flat map from a Transaction using struct tags.
// It starts with Common.ToMap() and adds type-specific fields based on tx tags.
func ReflectFlatten(tx Transaction) (map[string]any, error) {
	m := tx.GetCommon().ToMap()

	v := reflect.ValueOf(tx)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	info := getFlattenInfo(v.Type())

	for _, f := range info.fields {
		val := v.Field(f.index)

		if f.omitempty && isEmptyValue(val) {
			continue
		}

		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				continue
			}
			m[f.name] = val.Elem().Interface()
		} else {
			m[f.name] = val.Interface()
		}
	}

	return m, nil
}
