package graphql

// ID is the GraphQL ID scalar. It serializes as a string.
type ID string

func (ID) GetGraphQLType() string { return "ID" }
