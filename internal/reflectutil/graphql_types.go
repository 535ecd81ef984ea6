package reflectutil

import (
	"reflect"

	"github.com/llehouerou/go-graphql-variants/types"
)

const (
	// WrapperMethodName is the name of the method that unwraps container types.
	// Types implementing this method must have an exported field named
	// "Value" that holds the wrapped data.
	WrapperMethodName = "GetGraphQLWrapped"

	// WrapperFieldName is the required name of the field holding wrapped data.
	WrapperFieldName = "Value"
)

// ImplementsGraphQLType reports whether t provides its own GraphQL type
// name.
func ImplementsGraphQLType(t reflect.Type) bool {
	return t.Implements(types.GraphqlTypeInterface)
}

// IsWrapperType reports whether the concrete value behind v has a
// GetGraphQLWrapped method.
func IsWrapperType(v reflect.Value) bool {
	v = UnwrapToConcreteValue(v)
	if !v.IsValid() {
		return false
	}
	return v.MethodByName(WrapperMethodName).IsValid()
}

// UnwrapValue calls GetGraphQLWrapped on a wrapper value. It is used to
// build selections; decoding goes through UnwrapValueField.
func UnwrapValue(v reflect.Value) reflect.Value {
	if !IsWrapperType(v) {
		return reflect.Value{}
	}
	results := UnwrapToConcreteValue(v).MethodByName(WrapperMethodName).Call(nil)
	if len(results) == 0 {
		return reflect.Value{}
	}
	return results[0]
}

// UnwrapValueField returns the writable Value field of a wrapper value,
// or an invalid value.
func UnwrapValueField(v reflect.Value) reflect.Value {
	if !IsWrapperType(v) {
		return reflect.Value{}
	}
	return UnwrapToConcreteValue(v).FieldByName(WrapperFieldName)
}

// GetGraphQLType returns the GraphQL type name carried by v, whose static
// type is t. Nil values yield false.
func GetGraphQLType(v reflect.Value, t reflect.Type) (string, bool) {
	if !ImplementsGraphQLType(t) || IsNilValue(v) {
		return "", false
	}
	graphqlType, ok := v.Interface().(types.GraphQLType)
	if !ok || IsNilValue(reflect.ValueOf(graphqlType)) {
		return "", false
	}
	return graphqlType.GetGraphQLType(), true
}

// GetGraphQLTypeFromType returns the GraphQL type name of t without an
// instance, using a zero value (or a new value for pointer types).
func GetGraphQLTypeFromType(t reflect.Type) (string, bool) {
	if !ImplementsGraphQLType(t) {
		return "", false
	}
	var v reflect.Value
	if t.Kind() == reflect.Ptr {
		v = reflect.New(t.Elem())
	} else {
		v = reflect.Zero(t)
	}
	graphqlType, ok := v.Interface().(types.GraphQLType)
	if !ok {
		return "", false
	}
	return graphqlType.GetGraphQLType(), true
}
