// Package fn holds the small generic combinators used to assemble pipelines
// without mutable intermediate state.
package fn

// Compose chains fns left to right: Compose(f, g)(x) == g(f(x)).
// With no functions it returns the identity.
func Compose[T any](fns ...func(T) T) func(T) T {
	return func(v T) T {
		for _, f := range fns {
			v = f(v)
		}
		return v
	}
}

// Tap runs a side effect on the value and passes it through unchanged.
func Tap[T any](effect func(T)) func(T) T {
	return func(v T) T {
		effect(v)
		return v
	}
}

// Swap flips the arguments of a binary function.
func Swap[A, R any](f func(A, A) R) func(A, A) R {
	return func(a, b A) R {
		return f(b, a)
	}
}

// Not negates a predicate.
func Not[T any](p func(T) bool) func(T) bool {
	return func(v T) bool {
		return !p(v)
	}
}

// Every holds when all predicates hold. It holds for an empty list.
func Every[T any](ps ...func(T) bool) func(T) bool {
	return func(v T) bool {
		for _, p := range ps {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// Some holds when at least one predicate holds.
func Some[T any](ps ...func(T) bool) func(T) bool {
	return func(v T) bool {
		for _, p := range ps {
			if p(v) {
				return true
			}
		}
		return false
	}
}

// Curry2 partially applies the first argument of a binary function.
func Curry2[A, B, R any](f func(A, B) R) func(A) func(B) R {
	return func(a A) func(B) R {
		return func(b B) R {
			return f(a, b)
		}
	}
}

// Map applies f to every element into a new slice.
func Map[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

// Filter keeps the elements satisfying p, in order, into a new slice.
func Filter[T any](in []T, p func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if p(v) {
			out = append(out, v)
		}
	}
	return out
}
