// Package query provides a lazy, pull-based sequence engine with a fluent,
// LINQ-style API for filtering, projecting, grouping and joining data, in
// particular the resource objects returned by a cluster API.
//
// # Overview
//
// The central types are [Enumerable][T], an immutable and restartable
// description of a (possibly infinite) series of values, and [Enumerator][T],
// the single-use cursor that performs one traversal of it:
//
//	evens := query.Range(5, 10).
//	    Where(func(n int) bool { return n%2 == 0 })
//
//	doubled := query.Select(evens, func(n int) int { return n * 2 })
//	out, err := doubled.ToSlice() // → [12 16 20 24 28], nil
//
// Nothing is evaluated until a terminal operation ([Enumerable.ForEach],
// [Enumerable.ToSlice], [Count], [First], …) drives the cursor.
//
// # Fusion
//
// Chains of index-free Where and Select calls are fused: they collapse into a
// single stage over the nearest non-fused source, so
//
//	query.Select(query.Select(src, f), g)
//
// pulls each element of src once and evaluates g(f(x)) without an extra
// enumerator layer. Callbacks that observe the positional index
// ([Enumerable.WhereIndexed], [SelectIndexed]) cannot be fused; they wrap the
// stage they are called on and count positions of the elements leaving it.
//
// # Type-transforming operations
//
// Go generics do not allow methods to introduce new type parameters, so
// operations that change the element type are package-level functions:
// [Select], [SelectIndexed], [SelectMany], [TrySelect], [GroupBy], [Join],
// [Zip], [Aggregate], [ToMap].
//
// # Resource safety
//
// Every enumerator is built by [NewEnumerator] from an (initialize, tryNext,
// release) triple and shares one state machine. The release hook runs exactly
// once on every exit path: exhaustion, error, panic, early stop from ForEach, or
// an explicit [Enumerator.Dispose].
//
// # Concurrency
//
// An Enumerable may be shared freely between goroutines; each traversal gets its
// own Enumerator. An Enumerator must not be advanced from more than one
// goroutine.
package query
