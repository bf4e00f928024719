package query_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/hasbyte1/go-kube-query/query"
)

// ─────────────────────────────────────────────────────────────────────────────
// Slicing
// ─────────────────────────────────────────────────────────────────────────────

func TestTake(t *testing.T) {
	assertSeq(t, query.Take(seq, 3), []int{5, 6, 7})
	assertSeq(t, query.Take(seq, 0), []int{})
	assertSeq(t, query.Take(seq, -1), []int{})
	assertSeq(t, query.Take(seq2, 50), []int{5, 6, 7, 8, 9})
}

func TestTake_DoesNotPullPastLimit(t *testing.T) {
	var p probe
	assertSeq(t, query.Take(counting(&p, 10), 3), []int{1, 2, 3})
	if p.pulls != 3 || p.releases != 1 {
		t.Fatalf("probe = %+v; want 3 pulls and 1 release", p)
	}
}

func TestTakeWhileAndSkipWhile(t *testing.T) {
	lessThan8 := func(x int) bool { return x < 8 }
	assertSeq(t, query.TakeWhile(seq, lessThan8), []int{5, 6, 7})
	assertSeq(t, query.SkipWhile(seq2, lessThan8), []int{8, 9})
	assertSeq(t, query.TakeWhileIndexed(seq, func(_ int, i int) bool { return i < 2 }), []int{5, 6})
	assertSeq(t, query.SkipWhileIndexed(seq2, func(_ int, i int) bool { return i < 3 }), []int{8, 9})
}

func TestSkip(t *testing.T) {
	assertSeq(t, query.Skip(seq2, 2), []int{7, 8, 9})
	assertSeq(t, query.Skip(seq2, 0), []int{5, 6, 7, 8, 9})
	assertSeq(t, query.Skip(seq2, 10), []int{})
}

func TestConcat(t *testing.T) {
	assertSeq(t, query.Concat(query.Of(1, 2), query.Empty[int](), query.Of(3)), []int{1, 2, 3})
	assertSeq(t, query.Concat(query.Of(1)), []int{1})
}

func TestConcat_DisposesOpenSourceOnEarlyStop(t *testing.T) {
	var a, b probe
	got, err := query.Take(query.Concat(counting(&a, 2), counting(&b, 5)), 3).ToSlice()
	if err != nil {
		t.Fatal(err)
	}
	assertSlice(t, got, []int{1, 2, 1})
	if a.releases != 1 || b.releases != 1 || b.pulls != 1 {
		t.Fatalf("a=%+v b=%+v", a, b)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Projection
// ─────────────────────────────────────────────────────────────────────────────

func TestSelectMany(t *testing.T) {
	words := query.SelectMany(query.Of("hello world", "", "foo bar baz"), func(s string) query.Enumerable[string] {
		return query.From(strings.Fields(s))
	})
	assertSeq(t, words, []string{"hello", "world", "foo", "bar", "baz"})
}

func TestSelectMany_DisposesInnerOnEarlyStop(t *testing.T) {
	var inner probe
	outer := query.Range(0, 3)
	flat := query.SelectMany(outer, func(int) query.Enumerable[int] { return counting(&inner, 4) })

	got, err := query.Take(flat, 6).ToSlice()
	if err != nil {
		t.Fatal(err)
	}
	assertSlice(t, got, []int{1, 2, 3, 4, 1, 2})
	if inner.inits != 2 || inner.releases != 2 {
		t.Fatalf("inner probe = %+v; want 2 inits and 2 releases", inner)
	}
}

func TestTrySelect(t *testing.T) {
	var released bool
	boom := errors.New("bad element")
	src := query.Create(func() query.Enumerator[int] {
		i := 0
		return query.NewEnumerator(nil,
			func(y *query.Yielder[int]) (bool, error) {
				i++
				return y.Yield(i), nil
			},
			func() { released = true },
		)
	})

	out, err := query.TrySelect(src, func(x int) (string, error) {
		if x == 3 {
			return "", boom
		}
		return strings.Repeat("#", x), nil
	}).ToSlice()

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v; want %v", err, boom)
	}
	if out != nil {
		t.Fatalf("out = %v; want nil on error", out)
	}
	if !released {
		t.Fatal("infinite source not released after selector error")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Set & grouping
// ─────────────────────────────────────────────────────────────────────────────

func TestDistinct(t *testing.T) {
	images := query.Of("mysql:5.7", "nginx", "mysql:5.7", "mysql:8.0", "nginx")
	assertSeq(t, query.Distinct(images), []string{"mysql:5.7", "nginx", "mysql:8.0"})
}

func TestDistinctBy(t *testing.T) {
	assertSeq(t, query.DistinctBy(seq, func(x int) int { return x % 3 }), []int{5, 6, 7})
}

func TestGroupBy(t *testing.T) {
	groups, err := query.GroupBy(query.Of("apple", "avocado", "banana", "blueberry", "cherry"),
		func(s string) byte { return s[0] }).ToSlice()
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 3 {
		t.Fatalf("got %d groups; want 3", len(groups))
	}
	want := []struct {
		key   byte
		items []string
	}{
		{'a', []string{"apple", "avocado"}},
		{'b', []string{"banana", "blueberry"}},
		{'c', []string{"cherry"}},
	}
	for i, w := range want {
		if groups[i].Key != w.key {
			t.Fatalf("group %d key = %c; want %c", i, groups[i].Key, w.key)
		}
		assertSlice(t, groups[i].Items, w.items)
	}
}

func TestGroupBy_Restartable(t *testing.T) {
	g := query.GroupBy(seq2, func(x int) bool { return x%2 == 0 })
	for i := 0; i < 2; i++ {
		n, err := query.Count(g)
		if err != nil || n != 2 {
			t.Fatalf("traversal %d: Count = %d, %v; want 2", i, n, err)
		}
	}
}

func TestJoin(t *testing.T) {
	type pod struct{ name, node string }
	type node struct{ name, zone string }

	pods := query.Of(pod{"a", "n1"}, pod{"b", "n2"}, pod{"c", "n1"}, pod{"d", "n9"})
	nodes := query.Of(node{"n1", "us-east"}, node{"n2", "eu-west"})

	joined := query.Join(pods, nodes,
		func(p pod) string { return p.node },
		func(n node) string { return n.name },
		func(p pod, n node) string { return p.name + "@" + n.zone })

	assertSeq(t, joined, []string{"a@us-east", "b@eu-west", "c@us-east"})
}

func TestJoin_MultipleMatchesKeepInnerOrder(t *testing.T) {
	joined := query.Join(query.Of(1, 2), query.Of("1a", "2a", "1b"),
		func(x int) byte { return byte('0' + x) },
		func(s string) byte { return s[0] },
		func(_ int, s string) string { return s })
	assertSeq(t, joined, []string{"1a", "1b", "2a"})
}

func TestJoin_InnerErrorPropagates(t *testing.T) {
	boom := errors.New("inner failed")
	inner := query.TrySelect(query.Of(1), func(int) (int, error) { return 0, boom })
	_, err := query.Join(query.Of(1), inner,
		func(x int) int { return x }, func(x int) int { return x },
		func(a, b int) int { return a + b }).ToSlice()
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v; want %v", err, boom)
	}
}

func TestZip(t *testing.T) {
	pairs, err := query.Zip(query.Of("a", "b", "c"), query.Range(1, 2)).ToSlice()
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 || pairs[0].String() != "(a, 1)" || pairs[1].String() != "(b, 2)" {
		t.Fatalf("Zip = %v", pairs)
	}
}

func TestGroupBy_IntoCountPairs(t *testing.T) {
	groups := query.GroupBy(query.Of("web", "db", "web", "cache", "web"), func(s string) string { return s })
	counts, err := query.Select(groups, func(g query.Grouping[string, string]) query.Pair[string, int] {
		return query.Pair[string, int]{First: g.Key, Second: len(g.Items)}
	}).ToSlice()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, p := range counts {
		got = append(got, p.String())
	}
	if want := "(web, 3) (db, 1) (cache, 1)"; strings.Join(got, " ") != want {
		t.Fatalf("counts = %v; want %s", got, want)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Terminal functions
// ─────────────────────────────────────────────────────────────────────────────

func TestCount(t *testing.T) {
	n, err := query.Count(seq.Where(even))
	if err != nil || n != 5 {
		t.Fatalf("Count = %d, %v; want 5", n, err)
	}
}

func TestAny(t *testing.T) {
	var p probe
	ok, err := query.Any(counting(&p, 100), func(x int) bool { return x == 3 })
	if err != nil || !ok {
		t.Fatalf("Any = %v, %v; want true", ok, err)
	}
	if p.pulls != 3 {
		t.Fatalf("Any pulled %d elements; want 3", p.pulls)
	}

	ok, _ = query.Any(seq2, func(x int) bool { return x > 100 })
	if ok {
		t.Fatal("Any should be false")
	}
}

func TestFirst(t *testing.T) {
	v, ok, err := query.First(seq.Where(func(x int) bool { return x > 10 }))
	if err != nil || !ok || v != 11 {
		t.Fatalf("First = %v, %v, %v; want 11, true, nil", v, ok, err)
	}
	_, ok, _ = query.First(query.Empty[int]())
	if ok {
		t.Fatal("First of empty should report false")
	}
}

func TestFirstOrFail(t *testing.T) {
	if _, err := query.FirstOrFail(seq2, func(x int) bool { return x > 100 }); !errors.Is(err, query.ErrNoMatchingItems) {
		t.Fatalf("err = %v; want ErrNoMatchingItems", err)
	}
	v, err := query.FirstOrFail(seq2, even)
	if err != nil || v != 6 {
		t.Fatalf("FirstOrFail = %v, %v; want 6", v, err)
	}
}

func TestAggregate(t *testing.T) {
	sum, err := query.Aggregate(query.Range(1, 4), 0, func(acc, n int) int { return acc + n })
	if err != nil || sum != 10 {
		t.Fatalf("Aggregate = %v, %v; want 10", sum, err)
	}
	joined, _ := query.Aggregate(query.Of("a", "b"), "", func(acc string, s string) string { return acc + s })
	if joined != "ab" {
		t.Fatalf("Aggregate = %q; want ab", joined)
	}
}

func TestToMap(t *testing.T) {
	m, err := query.ToMap(query.Of("a", "bb", "cc"), func(s string) int { return len(s) })
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 || m[1] != "a" || m[2] != "cc" {
		t.Fatalf("ToMap = %v", m)
	}
}
