package query

// Enumerable is an immutable, restartable description of an ordered and
// possibly infinite series of values.
//
// Every call to Enumerator starts an independent traversal from the beginning;
// building a cursor never mutates the Enumerable. Where and WhereIndexed return
// new values and leave the receiver untouched, so an Enumerable can be shared
// between goroutines without locking.
//
// Implementations are obtained from constructors ([Create], [From], [Range],
// …) and operators; the unexported stage types behind them cooperate to fuse
// index-free Where/Select chains.
type Enumerable[T any] interface {
	// Enumerator returns a fresh cursor positioned before the first element.
	Enumerator() Enumerator[T]

	// Where returns the elements for which predicate returns true.
	// Consecutive index-free filters and projections are fused into one stage.
	Where(predicate func(T) bool) Enumerable[T]

	// WhereIndexed is Where with the zero-based position of each element as it
	// leaves the receiver. It is never fused.
	WhereIndexed(predicate func(T, int) bool) Enumerable[T]

	// ForEach drives a traversal to completion, calling action(element, index)
	// for each element. Returning false from action stops the traversal early.
	// The cursor is disposed on every exit path.
	ForEach(action func(T, int) bool) error

	// ToSlice collects every element. It does not terminate on an infinite
	// sequence; bound it first (e.g. with [Take]).
	ToSlice() ([]T, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Generic (non-fused) stage
// ─────────────────────────────────────────────────────────────────────────────

// sequence is an Enumerable backed by an enumerator factory.
type sequence[T any] struct {
	getEnumerator func() Enumerator[T]
}

// Create returns an Enumerable whose traversals are produced by getEnumerator.
// It is the input boundary for custom sources:
//
//	lines := query.Create(func() query.Enumerator[string] {
//	    var sc *bufio.Scanner
//	    var f *os.File
//	    return query.NewEnumerator(
//	        func() (err error) {
//	            f, err = os.Open(path)
//	            sc = bufio.NewScanner(f)
//	            return err
//	        },
//	        func(y *query.Yielder[string]) (bool, error) {
//	            if sc.Scan() {
//	                return y.Yield(sc.Text()), nil
//	            }
//	            return y.Break(), sc.Err()
//	        },
//	        func() { f.Close() },
//	    )
//	})
//
// getEnumerator is called once per traversal and must return a new cursor each
// time.
func Create[T any](getEnumerator func() Enumerator[T]) Enumerable[T] {
	return &sequence[T]{getEnumerator: getEnumerator}
}

func (s *sequence[T]) Enumerator() Enumerator[T] { return s.getEnumerator() }

func (s *sequence[T]) Where(predicate func(T) bool) Enumerable[T] {
	return &whereEnumerable[T]{source: s, predicate: predicate}
}

func (s *sequence[T]) WhereIndexed(predicate func(T, int) bool) Enumerable[T] {
	return whereIndexed[T](s, predicate)
}

func (s *sequence[T]) ForEach(action func(T, int) bool) error { return forEach[T](s, action) }

func (s *sequence[T]) ToSlice() ([]T, error) { return toSlice[T](s) }

// whereIndexed filters source with an index-aware predicate. The index counts
// the elements leaving source, so it is per traversal.
func whereIndexed[T any](source Enumerable[T], predicate func(T, int) bool) Enumerable[T] {
	return Create(func() Enumerator[T] {
		var upstream Enumerator[T]
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
					i := index
					index++
					if predicate(v, i) {
						return y.Yield(v), nil
					}
				}
			},
			func() { dispose(upstream) },
		)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Terminal operations
// ─────────────────────────────────────────────────────────────────────────────

func forEach[T any](source Enumerable[T], action func(T, int) bool) error {
	e := source.Enumerator()
	defer e.Dispose()

	for index := 0; ; index++ {
		ok, err := e.MoveNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if !action(e.Current(), index) {
			return nil
		}
	}
}

func toSlice[T any](source Enumerable[T]) ([]T, error) {
	out := []T{}
	err := forEach(source, func(v T, _ int) bool {
		out = append(out, v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// dispose disposes e if a traversal got far enough to open it.
func dispose[T any](e Enumerator[T]) {
	if e != nil {
		e.Dispose()
	}
}
