package obj

import (
	"reflect"
)

// IsNil reports whether what is nil, including typed nil pointers, maps,
// slices, channels and funcs stored in an interface.
func IsNil(what interface{}) bool {
	if what == nil {
		return true
	}

	v := reflect.ValueOf(what)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
