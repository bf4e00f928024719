package query

// Enumerator is a single-use, stateful cursor over an [Enumerable].
//
//	e := seq.Enumerator()
//	defer e.Dispose()
//	for {
//	    ok, err := e.MoveNext()
//	    if err != nil || !ok {
//	        break
//	    }
//	    use(e.Current())
//	}
//
// An Enumerator is owned by one caller and must not be advanced concurrently.
type Enumerator[T any] interface {
	// MoveNext advances the cursor and reports whether a new current element
	// is available. Once it has returned false (or an error) every later call
	// returns (false, nil).
	MoveNext() (bool, error)

	// Current returns the element produced by the last successful MoveNext.
	// It panics with [ErrNoCurrent] when there is none.
	Current() T

	// Dispose releases upstream resources. It is safe to call more than once.
	Dispose()
}

// state is the lifecycle position of an enumerator.
type state uint8

const (
	stateBefore state = iota
	stateRunning
	stateAfter
)

// Yielder is the slot a production hook writes its next element into.
//
//	func(y *query.Yielder[int]) (bool, error) {
//	    if i >= n {
//	        return y.Break(), nil
//	    }
//	    i++
//	    return y.Yield(i), nil
//	}
type Yielder[T any] struct {
	current T
	ok      bool
}

// Yield stores v as the current element and returns true.
func (y *Yielder[T]) Yield(v T) bool {
	y.current = v
	y.ok = true
	return true
}

// Break returns false; it reads as "no more elements" at the call site.
func (y *Yielder[T]) Break() bool { return false }

func (y *Yielder[T]) clear() {
	var zero T
	y.current = zero
	y.ok = false
}

// enumerator is the shared state machine behind every operator.
type enumerator[T any] struct {
	state      state
	yielder    Yielder[T]
	initialize func() error
	tryNext    func(*Yielder[T]) (bool, error)
	release    func()
}

// NewEnumerator builds an [Enumerator] from three hooks:
//
//   - initialize runs once, on the first MoveNext, before anything is produced.
//   - tryNext produces the next element through the [Yielder] and returns true,
//     or returns false when the source is exhausted.
//   - release frees whatever initialize acquired. It runs exactly once if
//     initialize ran: on exhaustion, on an error or panic from a hook, or on
//     Dispose.
//
// initialize and release may be nil.
func NewEnumerator[T any](initialize func() error, tryNext func(*Yielder[T]) (bool, error), release func()) Enumerator[T] {
	return &enumerator[T]{
		initialize: initialize,
		tryNext:    tryNext,
		release:    release,
	}
}

// MoveNext implements [Enumerator].
func (e *enumerator[T]) MoveNext() (bool, error) {
	if e.state == stateAfter {
		return false, nil
	}

	// Dispose on every path that does not produce an element, panics included.
	produced := false
	defer func() {
		if !produced {
			e.Dispose()
		}
	}()

	if e.state == stateBefore {
		e.state = stateRunning
		if e.initialize != nil {
			if err := e.initialize(); err != nil {
				return false, err
			}
		}
	}

	ok, err := e.tryNext(&e.yielder)
	if err != nil || !ok {
		return false, err
	}
	produced = true
	return true, nil
}

// Current implements [Enumerator].
func (e *enumerator[T]) Current() T {
	if !e.yielder.ok {
		panic(ErrNoCurrent)
	}
	return e.yielder.current
}

// Dispose implements [Enumerator].
func (e *enumerator[T]) Dispose() {
	running := e.state == stateRunning
	e.state = stateAfter
	e.yielder.clear()
	if running && e.release != nil {
		e.release()
	}
}
