package bytecode

import "fmt"

// Mismatch reports a disagreement between an expected and a found value.
// Either side may be absent: "expected to exist but didn't" or
// "exists but nothing to compare against".
type Mismatch[T any] struct {
	Expected *T
	Found    *T
}

// Expect builds a Mismatch with only the expected side set.
func Expect[T any](expected T) Mismatch[T] {
	return Mismatch[T]{Expected: &expected}
}

// NewMismatch builds a Mismatch with both sides set.
func NewMismatch[T any](expected, found T) Mismatch[T] {
	return Mismatch[T]{Expected: &expected, Found: &found}
}

func (m Mismatch[T]) String() string {
	format := func(v *T) string {
		if v == nil {
			return "<missing>"
		}
		return fmt.Sprintf("%v", *v)
	}
	return fmt.Sprintf("expected: %s, found: %s", format(m.Expected), format(m.Found))
}
