package runeset

// MaxRune is the highest code point a Matcher ranges over.
const MaxRune rune = 0x10FFFF

// Matcher is a predicate that returns true for certain code points.
//
// Implementations of Matcher must not change their state on a call to
// Match.
type Matcher interface {
	// Match returns true iff code point r is in the set.
	Match(r rune) bool

	// ForEachRange calls f exactly once for each maximal run of
	// consecutive code points in the set. The runs for successive calls
	// are guaranteed to be in ascending order and non-overlapping.
	ForEachRange(f func(lo, hi rune))

	// String returns a string representation of the set.
	String() string
}

// Count returns the number of code points in the set.
func Count(m Matcher) int {
	n := 0
	m.ForEachRange(func(lo, hi rune) {
		n += int(hi-lo) + 1
	})
	return n
}

// Ranges appends each maximal run of m to out, then returns the updated
// slice.
func Ranges(m Matcher, out []Range) []Range {
	m.ForEachRange(func(lo, hi rune) {
		out = append(out, Range{Lo: lo, Hi: hi})
	})
	return out
}
