package transport

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

// Params carries query parameters for a single request. Values may be
// primitives, slices of primitives, or one-level maps of primitives.
type Params map[string]any

// EncodeQuery serializes params into a query string. The rules are a wire
// compatibility contract with the Raven backend and must not drift:
//
//   - nil values are omitted, including nil slice elements and nil values
//     inside nested maps;
//   - slice values repeat the key once per element, preserving element order;
//   - map values flatten one level to key[subkey]=value pairs;
//   - everything else is stringified (booleans as true/false, floats without
//     trailing zeros).
//
// Keys, including flattened key[subkey] forms, are emitted in lexicographic
// order with application/x-www-form-urlencoded escaping (spaces become '+',
// brackets are percent-escaped), so equal inputs always produce
// byte-identical output.
func EncodeQuery(params Params) string {
	if len(params) == 0 {
		return ""
	}

	values := url.Values{}
	for key, value := range params {
		if isNilValue(value) {
			continue
		}

		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				elem := rv.Index(i).Interface()
				if isNilValue(elem) {
					continue
				}
				values.Add(key, stringify(elem))
			}
		case reflect.Map:
			iter := rv.MapRange()
			for iter.Next() {
				nested := iter.Value().Interface()
				if isNilValue(nested) {
					continue
				}
				nestedKey := fmt.Sprintf("%s[%s]", key, stringify(iter.Key().Interface()))
				values.Set(nestedKey, stringify(nested))
			}
		default:
			values.Set(key, stringify(value))
		}
	}

	return values.Encode()
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr {
			return stringify(rv.Elem().Interface())
		}
		return fmt.Sprint(v)
	}
}
