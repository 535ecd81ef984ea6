package types

import "reflect"

// GraphQLType is implemented by Go types that stand for a named GraphQL
// type: schema marker types used as fragment targets, and custom scalars
// used as variables.
type GraphQLType interface {
	GetGraphQLType() string
}

// GraphqlTypeInterface is the reflect.Type of GraphQLType.
var GraphqlTypeInterface = reflect.TypeOf((*GraphQLType)(nil)).Elem()

// TypeName returns the GraphQL type name of the schema type S.
func TypeName[S GraphQLType]() string {
	var s S
	return s.GetGraphQLType()
}
