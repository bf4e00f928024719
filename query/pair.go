package query

import "fmt"

// Pair is an ad-hoc two-field row: [Zip] yields one per aligned position,
// and projections that only need a key and a value, such as a group key with
// its element count (Pair[string, int]), select into it rather than declare a
// struct.
type Pair[A, B any] struct {
	First  A
	Second B
}

// String formats the pair as "(first, second)", which is how pairs print in
// examples and test failure messages.
func (p Pair[A, B]) String() string {
	return fmt.Sprintf("(%v, %v)", p.First, p.Second)
}

// Grouping is a key together with the elements that share it, in source
// order. It is the element type produced by [GroupBy].
type Grouping[K comparable, T any] struct {
	Key   K
	Items []T
}
