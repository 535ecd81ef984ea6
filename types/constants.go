package types

// GraphQL-related constants used throughout the codebase.
// Centralizing these prevents typos and makes refactoring safer.
const (
	// GraphQLTag is the struct tag name used to specify GraphQL field
	// names, aliases and arguments.
	GraphQLTag = "graphql"

	// ScalarTag is the struct tag name used to mark a field as a scalar
	// type that should not be recursively expanded during query
	// construction.
	ScalarTag = "scalar"

	// TypenameField is the GraphQL introspection field used for type
	// discrimination in unions and interfaces.
	TypenameField = "__typename"

	// FragmentOnPrefix is the prefix of a typed inline fragment
	// (e.g., "... on Droid").
	FragmentOnPrefix = "... on "

	// Indent is the per-level indentation of rendered documents.
	Indent = "  "
)
