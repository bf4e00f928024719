package query

import "testing"

func TestWhereWhere_FusesOntoOriginalSource(t *testing.T) {
	root := Range(1, 10)
	w, ok := root.Where(func(x int) bool { return x > 2 }).
		Where(func(x int) bool { return x < 8 }).
		Where(func(x int) bool { return x%2 == 1 }).(*whereEnumerable[int])
	if !ok {
		t.Fatal("chained Where did not produce a whereEnumerable")
	}
	if w.source != root {
		t.Fatal("fused Where must reference the original source, not a wrapper")
	}
}

func TestSelectChain_FusesOntoOriginalSource(t *testing.T) {
	root := Range(1, 10)
	stage := Select(Select(Select(root, func(x int) int { return x + 1 }),
		func(x int) string { return string(rune('a' + x)) }),
		func(s string) int { return len(s) })

	ws, ok := stage.(*whereSelect[int])
	if !ok {
		t.Fatalf("Select chain produced %T; want *whereSelect[int]", stage)
	}
	if ws.source != root {
		t.Fatal("fused Select must reference the original source")
	}
}

func TestWhereThenSelect_FusesOntoWhereSource(t *testing.T) {
	root := Range(1, 10)
	stage := Select(root.Where(func(x int) bool { return x > 3 }), func(x int) int { return -x }).
		Where(func(x int) bool { return x < -5 })

	ws, ok := stage.(*whereSelect[int])
	if !ok {
		t.Fatalf("where/select/where produced %T; want *whereSelect[int]", stage)
	}
	if ws.source != root {
		t.Fatal("fused stage must reference the root under the first Where")
	}
}

func TestIndexedOperators_WrapTheFusedStage(t *testing.T) {
	root := Range(1, 10)
	fused := Select(root, func(x int) int { return x * 2 })

	if _, ok := fused.WhereIndexed(func(int, int) bool { return true }).(*sequence[int]); !ok {
		t.Fatal("WhereIndexed on a fused stage must produce a generic wrapper")
	}
	if _, ok := SelectIndexed(fused, func(x, _ int) int { return x }).(*sequence[int]); !ok {
		t.Fatal("SelectIndexed on a fused stage must produce a generic wrapper")
	}

	// A later index-free Where starts a new fusion on top of the wrapper.
	wrapped := fused.WhereIndexed(func(int, int) bool { return true })
	w, ok := wrapped.Where(func(int) bool { return true }).(*whereEnumerable[int])
	if !ok || w.source != wrapped {
		t.Fatal("Where after an indexed wrapper must fuse onto that wrapper")
	}
}
