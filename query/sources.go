package query

import (
	"context"
	"iter"
)

// Number is the constraint for [Range].
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Range returns count numbers starting at start and advancing by step
// (default 1): start, start+step, start+2*step, …
//
//	query.Range(5, 10)      // 5 … 14
//	query.Range(0, 4, 5)    // 0, 5, 10, 15
//	query.Range(7, 3, 0)    // 7, 7, 7
//	query.Range(1, 0)       // empty; so is any count <= 0
//
// Only step[0] is used when more than one step is supplied.
func Range[N Number](start N, count int, step ...N) Enumerable[N] {
	var inc N = 1
	if len(step) > 0 {
		inc = step[0]
	}
	return Create(func() Enumerator[N] {
		var value N
		index := 0
		return NewEnumerator(
			func() error {
				value = start - inc
				return nil
			},
			func(y *Yielder[N]) (bool, error) {
				if index >= count {
					return y.Break(), nil
				}
				index++
				value += inc
				return y.Yield(value), nil
			},
			nil,
		)
	})
}

// Of returns a sequence over the given items (copied).
func Of[T any](items ...T) Enumerable[T] {
	return From(items)
}

// From returns a sequence over a copy of items; later changes to the slice are
// not observed.
func From[T any](items []T) Enumerable[T] {
	dst := make([]T, len(items))
	copy(dst, items)
	return fromSlice(dst)
}

// fromSlice enumerates items without copying them.
func fromSlice[T any](items []T) Enumerable[T] {
	return Create(func() Enumerator[T] {
		i := 0
		return NewEnumerator(nil,
			func(y *Yielder[T]) (bool, error) {
				if i >= len(items) {
					return y.Break(), nil
				}
				i++
				return y.Yield(items[i-1]), nil
			},
			nil,
		)
	})
}

// Empty returns a sequence with no elements.
func Empty[T any]() Enumerable[T] {
	return Create(func() Enumerator[T] {
		return NewEnumerator(nil, func(y *Yielder[T]) (bool, error) { return y.Break(), nil }, nil)
	})
}

// Repeat returns v count times. A count <= 0 yields an empty sequence.
func Repeat[T any](v T, count int) Enumerable[T] {
	return Select(Range(0, count), func(int) T { return v })
}

// Generate returns the infinite sequence fn(0), fn(1), fn(2), …
// Bound it with [Take], [TakeWhile] or an early return from ForEach.
func Generate[T any](fn func(i int) T) Enumerable[T] {
	return Create(func() Enumerator[T] {
		i := 0
		return NewEnumerator(nil,
			func(y *Yielder[T]) (bool, error) {
				v := fn(i)
				i++
				return y.Yield(v), nil
			},
			nil,
		)
	})
}

// FromSeq adapts a range-over-func iterator. Each traversal calls iter.Pull on
// seq and stops it when the traversal ends, so seq is restartable exactly when
// the underlying iterator is.
func FromSeq[T any](seq iter.Seq[T]) Enumerable[T] {
	return Create(func() Enumerator[T] {
		var (
			next func() (T, bool)
			stop func()
		)
		return NewEnumerator(
			func() error {
				next, stop = iter.Pull(seq)
				return nil
			},
			func(y *Yielder[T]) (bool, error) {
				v, ok := next()
				if !ok {
					return y.Break(), nil
				}
				return y.Yield(v), nil
			},
			func() { stop() },
		)
	})
}

// FromChannel adapts a push-based stream into a pull sequence. A traversal
// ends when ch is closed and fails with ctx.Err() once ctx is done.
//
// Values received by one traversal are consumed from ch; a second traversal
// only sees what is left.
func FromChannel[T any](ctx context.Context, ch <-chan T) Enumerable[T] {
	return Create(func() Enumerator[T] {
		return NewEnumerator(nil,
			func(y *Yielder[T]) (bool, error) {
				select {
				case <-ctx.Done():
					return false, ctx.Err()
				case v, ok := <-ch:
					if !ok {
						return y.Break(), nil
					}
					return y.Yield(v), nil
				}
			},
			nil,
		)
	})
}

// Seq returns source as a range-over-func iterator. A production error is
// yielded once, paired with the zero value, and ends the iteration.
//
//	for pod, err := range query.Seq(pods) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(pod.GetName())
//	}
func Seq[T any](source Enumerable[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		e := source.Enumerator()
		defer e.Dispose()
		for {
			ok, err := e.MoveNext()
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok || !yield(e.Current(), nil) {
				return
			}
		}
	}
}
