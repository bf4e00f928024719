package query

// ─────────────────────────────────────────────────────────────────────────────
// Fused stages
//
// whereEnumerable holds a source and one predicate. Further index-free Where
// calls conjoin into that predicate; a Select turns it into a whereSelect.
//
// whereSelect holds the nearest non-fused source and a step function that
// runs the fused chain (filters and projections in call order) over one
// source element. Its element type differs from the source's, and methods
// cannot name the source type, so the source is kept behind a pipeline
// closure that binds the step to one traversal.
// ─────────────────────────────────────────────────────────────────────────────

// cursor is the element-type-independent half of an Enumerator.
type cursor interface {
	MoveNext() (bool, error)
	Dispose()
}

// pipeline opens one traversal of a fused stage's source. step reads the
// source's current element and reports false when the chain filtered it out.
type pipeline[T any] func() (src cursor, step func() (T, bool))

type whereEnumerable[T any] struct {
	source    Enumerable[T]
	predicate func(T) bool
}

func (w *whereEnumerable[T]) Enumerator() Enumerator[T] {
	var upstream Enumerator[T]
	return NewEnumerator(
		func() error {
			upstream = w.source.Enumerator()
			return nil
		},
		func(y *Yielder[T]) (bool, error) {
			for {
				ok, err := upstream.MoveNext()
				if err != nil || !ok {
					return false, err
				}
				if v := upstream.Current(); w.predicate(v) {
					return y.Yield(v), nil
				}
			}
		},
		func() { dispose(upstream) },
	)
}

func (w *whereEnumerable[T]) Where(predicate func(T) bool) Enumerable[T] {
	prev := w.predicate
	return &whereEnumerable[T]{
		source:    w.source,
		predicate: func(v T) bool { return prev(v) && predicate(v) },
	}
}

func (w *whereEnumerable[T]) WhereIndexed(predicate func(T, int) bool) Enumerable[T] {
	return whereIndexed[T](w, predicate)
}

func (w *whereEnumerable[T]) ForEach(action func(T, int) bool) error { return forEach[T](w, action) }

func (w *whereEnumerable[T]) ToSlice() ([]T, error) { return toSlice[T](w) }

type whereSelect[T any] struct {
	// source is the root of the fused chain, kept for identity checks; open
	// captures it with its concrete element type.
	source any
	open   pipeline[T]
}

// newWhereSelect starts a fused chain over source. predicate may be nil.
func newWhereSelect[S, T any](source Enumerable[S], predicate func(S) bool, selector func(S) T) *whereSelect[T] {
	return &whereSelect[T]{
		source: source,
		open: func() (cursor, func() (T, bool)) {
			e := source.Enumerator()
			if predicate == nil {
				return e, func() (T, bool) { return selector(e.Current()), true }
			}
			return e, func() (T, bool) {
				v := e.Current()
				if !predicate(v) {
					var zero T
					return zero, false
				}
				return selector(v), true
			}
		},
	}
}

// thenSelect extends the chain of ws with selector.
func thenSelect[T, R any](ws *whereSelect[T], selector func(T) R) *whereSelect[R] {
	open := ws.open
	return &whereSelect[R]{
		source: ws.source,
		open: func() (cursor, func() (R, bool)) {
			src, step := open()
			return src, func() (R, bool) {
				v, ok := step()
				if !ok {
					var zero R
					return zero, false
				}
				return selector(v), true
			}
		},
	}
}

func (ws *whereSelect[T]) Enumerator() Enumerator[T] {
	var (
		src  cursor
		step func() (T, bool)
	)
	return NewEnumerator(
		func() error {
			src, step = ws.open()
			return nil
		},
		func(y *Yielder[T]) (bool, error) {
			for {
				ok, err := src.MoveNext()
				if err != nil || !ok {
					return false, err
				}
				if v, keep := step(); keep {
					return y.Yield(v), nil
				}
			}
		},
		func() {
			if src != nil {
				src.Dispose()
			}
		},
	)
}

// Where extends the fused chain; predicate sees the projected element.
func (ws *whereSelect[T]) Where(predicate func(T) bool) Enumerable[T] {
	open := ws.open
	return &whereSelect[T]{
		source: ws.source,
		open: func() (cursor, func() (T, bool)) {
			src, step := open()
			return src, func() (T, bool) {
				v, ok := step()
				if !ok || !predicate(v) {
					var zero T
					return zero, false
				}
				return v, true
			}
		},
	}
}

func (ws *whereSelect[T]) WhereIndexed(predicate func(T, int) bool) Enumerable[T] {
	return whereIndexed[T](ws, predicate)
}

func (ws *whereSelect[T]) ForEach(action func(T, int) bool) error { return forEach[T](ws, action) }

func (ws *whereSelect[T]) ToSlice() ([]T, error) { return toSlice[T](ws) }

// ─────────────────────────────────────────────────────────────────────────────
// Projection
// ─────────────────────────────────────────────────────────────────────────────

// Select projects every element of source through selector.
//
// Select fuses with index-free Where and Select stages directly upstream of it:
//
//	query.Select(query.Select(query.Range(5, 5), timesTen), double)
//
// traverses the range once and calls timesTen and double once per element.
func Select[T, R any](source Enumerable[T], selector func(T) R) Enumerable[R] {
	switch s := source.(type) {
	case *whereSelect[T]:
		return thenSelect(s, selector)
	case *whereEnumerable[T]:
		return newWhereSelect(s.source, s.predicate, selector)
	default:
		return newWhereSelect(source, nil, selector)
	}
}

// SelectIndexed projects every element together with its zero-based position
// as it leaves source. It is never fused: it wraps source, fused or not, and
// keeps its own counter per traversal.
//
//	query.SelectIndexed(query.Of("a", "b"), func(s string, i int) string {
//	    return strconv.Itoa(i) + s
//	}) // → ["0a", "1b"]
func SelectIndexed[T, R any](source Enumerable[T], selector func(T, int) R) Enumerable[R] {
	return Create(func() Enumerator[R] {
		var upstream Enumerator[T]
		index := 0
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
				v := selector(upstream.Current(), index)
				index++
				return y.Yield(v), nil
			},
			func() { dispose(upstream) },
		)
	})
}
