package query_test

import (
	"errors"
	"testing"

	"github.com/hasbyte1/go-kube-query/query"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// probe records how a hook-built enumerator is driven.
type probe struct {
	inits    int
	pulls    int
	releases int
}

// counting returns a restartable source of 1..n that records hook calls in p.
func counting(p *probe, n int) query.Enumerable[int] {
	return query.Create(func() query.Enumerator[int] {
		i := 0
		return query.NewEnumerator(
			func() error { p.inits++; return nil },
			func(y *query.Yielder[int]) (bool, error) {
				if i >= n {
					return y.Break(), nil
				}
				p.pulls++
				i++
				return y.Yield(i), nil
			},
			func() { p.releases++ },
		)
	})
}

func mustPanicWith(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("panic value = %v; want %v", r, want)
		}
	}()
	fn()
}

// ─────────────────────────────────────────────────────────────────────────────
// State machine
// ─────────────────────────────────────────────────────────────────────────────

func TestEnumerator_LifecycleRunsHooksOnce(t *testing.T) {
	var p probe
	e := counting(&p, 2).Enumerator()

	if p.inits != 0 {
		t.Fatal("initialize must not run before the first MoveNext")
	}
	for i := 1; i <= 2; i++ {
		ok, err := e.MoveNext()
		if err != nil || !ok {
			t.Fatalf("MoveNext #%d = %v, %v; want true, nil", i, ok, err)
		}
		if got := e.Current(); got != i {
			t.Fatalf("Current = %d; want %d", got, i)
		}
	}
	ok, err := e.MoveNext()
	if err != nil || ok {
		t.Fatalf("MoveNext at end = %v, %v; want false, nil", ok, err)
	}
	if p.inits != 1 || p.releases != 1 {
		t.Fatalf("inits=%d releases=%d; want 1, 1", p.inits, p.releases)
	}

	// After: no more hook calls.
	for i := 0; i < 3; i++ {
		if ok, err := e.MoveNext(); ok || err != nil {
			t.Fatalf("MoveNext after exhaustion = %v, %v", ok, err)
		}
	}
	e.Dispose()
	if p.inits != 1 || p.releases != 1 || p.pulls != 2 {
		t.Fatalf("hooks re-ran after exhaustion: %+v", p)
	}
}

func TestEnumerator_EmptySourceDisposesOnFirstMoveNext(t *testing.T) {
	var p probe
	e := counting(&p, 0).Enumerator()
	if ok, err := e.MoveNext(); ok || err != nil {
		t.Fatalf("MoveNext = %v, %v; want false, nil", ok, err)
	}
	if p.inits != 1 || p.releases != 1 {
		t.Fatalf("inits=%d releases=%d; want 1, 1", p.inits, p.releases)
	}
}

func TestEnumerator_DisposeBeforeStartSkipsRelease(t *testing.T) {
	var p probe
	e := counting(&p, 3).Enumerator()
	e.Dispose()
	e.Dispose()

	if ok, _ := e.MoveNext(); ok {
		t.Fatal("MoveNext after Dispose must return false")
	}
	if p.inits != 0 || p.releases != 0 {
		t.Fatalf("inits=%d releases=%d; want 0, 0", p.inits, p.releases)
	}
}

func TestEnumerator_DisposeIsIdempotent(t *testing.T) {
	var p probe
	e := counting(&p, 3).Enumerator()
	e.MoveNext()
	e.Dispose()
	e.Dispose()
	e.Dispose()
	if p.releases != 1 {
		t.Fatalf("releases = %d; want 1", p.releases)
	}
	if ok, _ := e.MoveNext(); ok {
		t.Fatal("MoveNext after Dispose must return false")
	}
}

func TestEnumerator_ProductionErrorDisposesThenPropagates(t *testing.T) {
	boom := errors.New("boom")
	released := 0
	calls := 0
	e := query.NewEnumerator(nil,
		func(y *query.Yielder[int]) (bool, error) {
			calls++
			if calls == 2 {
				return false, boom
			}
			return y.Yield(calls), nil
		},
		func() { released++ },
	)

	if ok, err := e.MoveNext(); !ok || err != nil {
		t.Fatalf("first MoveNext = %v, %v", ok, err)
	}
	ok, err := e.MoveNext()
	if ok || !errors.Is(err, boom) {
		t.Fatalf("second MoveNext = %v, %v; want false, boom", ok, err)
	}
	if released != 1 {
		t.Fatalf("released = %d; want 1", released)
	}
	if ok, err := e.MoveNext(); ok || err != nil {
		t.Fatalf("MoveNext after error = %v, %v; want false, nil", ok, err)
	}
	if calls != 2 {
		t.Fatalf("tryNext calls = %d; want 2", calls)
	}
}

func TestEnumerator_InitializeErrorDisposes(t *testing.T) {
	boom := errors.New("init failed")
	released := 0
	e := query.NewEnumerator(
		func() error { return boom },
		func(y *query.Yielder[int]) (bool, error) {
			t.Fatal("tryNext must not run after a failed initialize")
			return false, nil
		},
		func() { released++ },
	)
	if _, err := e.MoveNext(); !errors.Is(err, boom) {
		t.Fatalf("err = %v; want %v", err, boom)
	}
	if released != 1 {
		t.Fatalf("released = %d; want 1", released)
	}
}

func TestEnumerator_PanicDisposesThenRepanics(t *testing.T) {
	released := 0
	e := query.NewEnumerator(nil,
		func(y *query.Yielder[int]) (bool, error) { panic("kaboom") },
		func() { released++ },
	)

	func() {
		defer func() {
			if r := recover(); r != "kaboom" {
				t.Fatalf("recovered %v; want kaboom", r)
			}
		}()
		e.MoveNext()
	}()

	if released != 1 {
		t.Fatalf("released = %d; want 1", released)
	}
	if ok, err := e.MoveNext(); ok || err != nil {
		t.Fatalf("MoveNext after panic = %v, %v; want false, nil", ok, err)
	}
}

func TestEnumerator_CurrentMisuse(t *testing.T) {
	var p probe
	e := counting(&p, 1).Enumerator()

	mustPanicWith(t, query.ErrNoCurrent, func() { e.Current() })

	e.MoveNext()
	if e.Current() != 1 {
		t.Fatal("Current after a successful MoveNext")
	}

	e.MoveNext() // exhausted
	mustPanicWith(t, query.ErrNoCurrent, func() { e.Current() })
}

func TestEnumerator_CurrentAfterDispose(t *testing.T) {
	var p probe
	e := counting(&p, 3).Enumerator()
	e.MoveNext()
	e.Dispose()
	mustPanicWith(t, query.ErrNoCurrent, func() { e.Current() })
}
