package reflectutil

import "strconv"

// IsTrue parses a struct tag value as a boolean. Unparsable values are
// false.
func IsTrue(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
