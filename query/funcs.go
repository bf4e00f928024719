package query

// This file contains the lazy operators beyond Where/Select, and the
// terminal functions that reduce a sequence to a value. Operators that change
// the element type are package-level functions because methods cannot
// introduce type parameters:
//
//	images := query.Distinct(query.SelectMany(pods, containerImages))
//
// None of the operators here is fused; each wraps its source in one stage.

// ─────────────────────────────────────────────────────────────────────────────
// Slicing
// ─────────────────────────────────────────────────────────────────────────────

// Take returns the first n elements of source. It never pulls element n+1,
// so it bounds infinite sequences. n <= 0 yields an empty sequence.
func Take[T any](source Enumerable[T], n int) Enumerable[T] {
	return Create(func() Enumerator[T] {
		var upstream Enumerator[T]
		taken := 0
		return NewEnumerator(
			func() error {
				upstream = source.Enumerator()
				return nil
			},
			func(y *Yielder[T]) (bool, error) {
				if taken >= n {
					return y.Break(), nil
				}
				ok, err := upstream.MoveNext()
				if err != nil || !ok {
					return false, err
				}
				taken++
				return y.Yield(upstream.Current()), nil
			},
			func() { dispose(upstream) },
		)
	})
}

// TakeWhile returns elements while predicate holds and stops at the first
// element that fails it.
func TakeWhile[T any](source Enumerable[T], predicate func(T) bool) Enumerable[T] {
	return TakeWhileIndexed(source, func(v T, _ int) bool { return predicate(v) })
}

// TakeWhileIndexed is [TakeWhile] with the position of each element.
func TakeWhileIndexed[T any](source Enumerable[T], predicate func(T, int) bool) Enumerable[T] {
	return Create(func() Enumerator[T] {
		var upstream Enumerator[T]
		index := 0
		return NewEnumerator(
			func() error {
				upstream = source.Enumerator()
				return nil
			},
			func(y *Yielder[T]) (bool, error) {
				ok, err := upstream.MoveNext()
				if err != nil || !ok {
					return false, err
				}
				v := upstream.Current()
				if !predicate(v, index) {
					return false, nil
				}
				index++
				return y.Yield(v), nil
			},
			func() { dispose(upstream) },
		)
	})
}

// Skip bypasses the first n elements of source and returns the rest.
func Skip[T any](source Enumerable[T], n int) Enumerable[T] {
	return SkipWhileIndexed(source, func(_ T, i int) bool { return i < n })
}

// SkipWhile bypasses elements while predicate holds and returns the rest,
// starting with the first element that fails it.
func SkipWhile[T any](source Enumerable[T], predicate func(T) bool) Enumerable[T] {
	return SkipWhileIndexed(source, func(v T, _ int) bool { return predicate(v) })
}

// SkipWhileIndexed is [SkipWhile] with the position of each element.
func SkipWhileIndexed[T any](source Enumerable[T], predicate func(T, int) bool) Enumerable[T] {
	return Create(func() Enumerator[T] {
		var upstream Enumerator[T]
		skipping := true
		index := 0
		return NewEnumerator(
			func() error {
				upstream = source.Enumerator()
				return nil
			},
			func(y *Yielder[T]) (bool, error) {
				for {
					ok, err := upstream.MoveNext()
					if err != nil || !ok {
						return false, err
					}
					v := upstream.Current()
					if skipping && predicate(v, index) {
						index++
						continue
					}
					skipping = false
					return y.Yield(v), nil
				}
			},
			func() { dispose(upstream) },
		)
	})
}

// Concat returns the elements of first followed by those of each of rest.
// Each source is opened only when the previous one is exhausted and disposed.
func Concat[T any](first Enumerable[T], rest ...Enumerable[T]) Enumerable[T] {
	sources := append([]Enumerable[T]{first}, rest...)
	return Create(func() Enumerator[T] {
		var current Enumerator[T]
		next := 0
		return NewEnumerator(nil,
			func(y *Yielder[T]) (bool, error) {
				for {
					if current == nil {
						if next >= len(sources) {
							return false, nil
						}
						current = sources[next].Enumerator()
						next++
					}
					ok, err := current.MoveNext()
					if err != nil {
						return false, err
					}
					if ok {
						return y.Yield(current.Current()), nil
					}
					current = nil
				}
			},
			func() { dispose(current) },
		)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Projection
// ─────────────────────────────────────────────────────────────────────────────

// SelectMany projects every element to a sequence and flattens the results.
//
//	containers := query.SelectMany(pods, func(p *unstructured.Unstructured) query.Enumerable[any] {
//	    return query.From(resource.Slice(p, "spec.containers"))
//	})
func SelectMany[T, R any](source Enumerable[T], selector func(T) Enumerable[R]) Enumerable[R] {
	return Create(func() Enumerator[R] {
		var upstream Enumerator[T]
		var inner Enumerator[R]
		return NewEnumerator(
			func() error {
				upstream = source.Enumerator()
				return nil
			},
			func(y *Yielder[R]) (bool, error) {
				for {
					if inner != nil {
						ok, err := inner.MoveNext()
						if err != nil {
							return false, err
						}
						if ok {
							return y.Yield(inner.Current()), nil
						}
						inner = nil
					}
					ok, err := upstream.MoveNext()
					if err != nil || !ok {
						return false, err
					}
					inner = selector(upstream.Current()).Enumerator()
				}
			},
			func() {
				dispose(inner)
				dispose(upstream)
			},
		)
	})
}

// TrySelect projects every element through a selector that may fail. A
// selector error is a production error: the traversal is disposed and the
// error is returned from MoveNext (and so from ForEach / ToSlice).
func TrySelect[T, R any](source Enumerable[T], selector func(T) (R, error)) Enumerable[R] {
	return Create(func() Enumerator[R] {
		var upstream Enumerator[T]
		return NewEnumerator(
			func() error {
				upstream = source.Enumerator()
				return nil
			},
			func(y *Yielder[R]) (bool, error) {
				ok, err := upstream.MoveNext()
				if err != nil || !ok {
					return false, err
				}
				v, err := selector(upstream.Current())
				if err != nil {
					return false, err
				}
				return y.Yield(v), nil
			},
			func() { dispose(upstream) },
		)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Set & grouping
// ─────────────────────────────────────────────────────────────────────────────

// Distinct returns the elements of source with duplicates removed, keeping the
// first occurrence of each.
func Distinct[T comparable](source Enumerable[T]) Enumerable[T] {
	return DistinctBy(source, func(v T) T { return v })
}

// DistinctBy removes elements whose key has already been seen.
//
//	query.DistinctBy(objects, func(o *unstructured.Unstructured) types.UID { return o.GetUID() })
func DistinctBy[T any, K comparable](source Enumerable[T], key func(T) K) Enumerable[T] {
	return Create(func() Enumerator[T] {
		var upstream Enumerator[T]
		var seen map[K]struct{}
		return NewEnumerator(
			func() error {
				upstream = source.Enumerator()
				seen = make(map[K]struct{})
				return nil
			},
			func(y *Yielder[T]) (bool, error) {
				for {
					ok, err := upstream.MoveNext()
					if err != nil || !ok {
						return false, err
					}
					v := upstream.Current()
					k := key(v)
					if _, dup := seen[k]; dup {
						continue
					}
					seen[k] = struct{}{}
					return y.Yield(v), nil
				}
			},
			func() {
				dispose(upstream)
				seen = nil
			},
		)
	})
}

// GroupBy groups elements by the key extracted by fn. Groups come out in the
// order their keys were first seen; items keep source order.
//
// The whole source is read on the first MoveNext of a traversal.
func GroupBy[T any, K comparable](source Enumerable[T], fn func(T) K) Enumerable[Grouping[K, T]] {
	return Create(func() Enumerator[Grouping[K, T]] {
		var groups []Grouping[K, T]
		i := 0
		return NewEnumerator(
			func() error {
				index := make(map[K]int)
				return source.ForEach(func(v T, _ int) bool {
					k := fn(v)
					pos, ok := index[k]
					if !ok {
						pos = len(groups)
						index[k] = pos
						groups = append(groups, Grouping[K, T]{Key: k})
					}
					groups[pos].Items = append(groups[pos].Items, v)
					return true
				})
			},
			func(y *Yielder[Grouping[K, T]]) (bool, error) {
				if i >= len(groups) {
					return y.Break(), nil
				}
				i++
				return y.Yield(groups[i-1]), nil
			},
			func() { groups = nil },
		)
	})
}

// Join correlates outer and inner elements with equal keys (an inner
// equi-join) and projects each matching pair through result.
//
// inner is read into a lookup when the traversal starts; outer is streamed and
// its order is kept. For each outer element, matches come out in inner order.
//
//	query.Join(events, pods,
//	    func(e *unstructured.Unstructured) string { return resource.String(e, "involvedObject.uid") },
//	    func(p *unstructured.Unstructured) string { return string(p.GetUID()) },
//	    func(e, p *unstructured.Unstructured) Row { … })
func Join[O, I, R any, K comparable](
	outer Enumerable[O],
	inner Enumerable[I],
	outerKey func(O) K,
	innerKey func(I) K,
	result func(O, I) R,
) Enumerable[R] {
	return Create(func() Enumerator[R] {
		var (
			upstream Enumerator[O]
			lookup   map[K][]I
			current  O
			matches  []I
		)
		return NewEnumerator(
			func() error {
				lookup = make(map[K][]I)
				err := inner.ForEach(func(v I, _ int) bool {
					k := innerKey(v)
					lookup[k] = append(lookup[k], v)
					return true
				})
				if err != nil {
					return err
				}
				upstream = outer.Enumerator()
				return nil
			},
			func(y *Yielder[R]) (bool, error) {
				for len(matches) == 0 {
					ok, err := upstream.MoveNext()
					if err != nil || !ok {
						return false, err
					}
					current = upstream.Current()
					matches = lookup[outerKey(current)]
				}
				m := matches[0]
				matches = matches[1:]
				return y.Yield(result(current, m)), nil
			},
			func() {
				dispose(upstream)
				lookup = nil
			},
		)
	})
}

// Zip pairs the elements of a and b position by position and stops at the end
// of the shorter sequence.
func Zip[A, B any](a Enumerable[A], b Enumerable[B]) Enumerable[Pair[A, B]] {
	return Create(func() Enumerator[Pair[A, B]] {
		var ea Enumerator[A]
		var eb Enumerator[B]
		return NewEnumerator(
			func() error {
				ea = a.Enumerator()
				eb = b.Enumerator()
				return nil
			},
			func(y *Yielder[Pair[A, B]]) (bool, error) {
				okA, err := ea.MoveNext()
				if err != nil || !okA {
					return false, err
				}
				okB, err := eb.MoveNext()
				if err != nil || !okB {
					return false, err
				}
				return y.Yield(Pair[A, B]{First: ea.Current(), Second: eb.Current()}), nil
			},
			func() {
				dispose(ea)
				dispose(eb)
			},
		)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Terminal functions
// ─────────────────────────────────────────────────────────────────────────────

// Count drives source to completion and returns the number of elements.
func Count[T any](source Enumerable[T]) (int, error) {
	n := 0
	err := source.ForEach(func(T, int) bool {
		n++
		return true
	})
	return n, err
}

// Any reports whether some element satisfies predicate. It stops at the first
// match.
func Any[T any](source Enumerable[T], predicate func(T) bool) (bool, error) {
	_, ok, err := First(source.Where(predicate))
	return ok, err
}

// First returns the first element of source. ok is false when source is
// empty. Only one element is pulled.
func First[T any](source Enumerable[T]) (v T, ok bool, err error) {
	err = source.ForEach(func(x T, _ int) bool {
		v, ok = x, true
		return false
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v, ok, nil
}

// FirstOrFail returns the first element satisfying predicate, or
// [ErrNoMatchingItems].
func FirstOrFail[T any](source Enumerable[T], predicate func(T) bool) (T, error) {
	v, ok, err := First(source.Where(predicate))
	if err != nil {
		return v, err
	}
	if !ok {
		return v, ErrNoMatchingItems
	}
	return v, nil
}

// Aggregate folds source into a single value of type U, starting from seed.
//
//	sum, err := query.Aggregate(query.Range(1, 4), 0, func(acc, n int) int { return acc + n })
func Aggregate[T, U any](source Enumerable[T], seed U, fn func(U, T) U) (U, error) {
	acc := seed
	err := source.ForEach(func(v T, _ int) bool {
		acc = fn(acc, v)
		return true
	})
	if err != nil {
		return seed, err
	}
	return acc, nil
}

// ToMap builds a map keyed by the value extracted by key.
// When several elements share a key, the last one wins.
func ToMap[T any, K comparable](source Enumerable[T], key func(T) K) (map[K]T, error) {
	out := make(map[K]T)
	err := source.ForEach(func(v T, _ int) bool {
		out[key(v)] = v
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
