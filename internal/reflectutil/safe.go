package reflectutil

import "reflect"

// IndexSafe returns v.Index(i), or an invalid value when v is invalid or
// i is out of range.
func IndexSafe(v reflect.Value, i int) reflect.Value {
	if v.IsValid() && i >= 0 && i < v.Len() {
		return v.Index(i)
	}
	return reflect.Value{}
}

// ElemSafe returns v.Elem() for pointers and interfaces, or an invalid
// value.
func ElemSafe(v reflect.Value) reflect.Value {
	if v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		return v.Elem()
	}
	return reflect.Value{}
}

// FieldSafe returns the i-th field of a valid struct value, or an invalid
// value.
func FieldSafe(valStruct reflect.Value, i int) reflect.Value {
	if valStruct.IsValid() {
		return valStruct.Field(i)
	}
	return reflect.Value{}
}

// IsNillable reports whether values of kind can be nil.
func IsNillable(kind reflect.Kind) bool {
	switch kind {
	case reflect.Ptr,
		reflect.Interface,
		reflect.Slice,
		reflect.Map,
		reflect.Chan,
		reflect.Func:
		return true
	default:
		return false
	}
}

// IsNilValue reports whether v is invalid or a nil value of a nillable
// kind.
func IsNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	return IsNillable(v.Kind()) && v.IsNil()
}

// UnwrapToConcreteValue follows pointers and interfaces down to the
// concrete value. A nil along the way yields an invalid value.
func UnwrapToConcreteValue(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
