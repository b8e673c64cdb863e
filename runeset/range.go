package runeset

import (
	"sort"
)

// Range represents a range of consecutive code points.
//
// If Lo < Hi, then this Range represents the code points Lo, Lo+1, ...,
// Hi-1, Hi.
//
// If Lo == Hi, then this Range represents the single code point Lo.
//
// If Lo > Hi, then this Range represents the null set.
type Range struct {
	Lo rune
	Hi rune
}

// Of returns a Matcher that matches any code point that falls in one of
// the given Range entries.
//
// This is usually the best choice if most of the code points in your set
// are consecutive, and the number of such ranges is small.
func Of(rs ...Range) Matcher {
	return makeRange(rs)
}

// Between returns a Matcher for the single inclusive range [lo, hi].
func Between(lo, hi rune) Matcher {
	return makeRange([]Range{{Lo: lo, Hi: hi}})
}

type mRange struct {
	Ranges []Range
}

var _ Matcher = (*mRange)(nil)

func (m *mRange) Match(r rune) bool {
	i := sort.Search(len(m.Ranges), func(i int) bool {
		return m.Ranges[i].Hi >= r
	})
	if i >= len(m.Ranges) {
		return false
	}
	rr := m.Ranges[i]
	return rr.Lo <= r && r <= rr.Hi
}

func (m *mRange) ForEachRange(f func(lo, hi rune)) {
	for _, rr := range m.Ranges {
		f(rr.Lo, rr.Hi)
	}
}

func (m *mRange) String() string {
	return genericString(m)
}

func makeRange(rs []Range) *mRange {
	return &mRange{Ranges: coalesceRanges(rs)}
}

func coalesceRanges(a []Range) []Range {
	// (*mRange).Match makes some assumptions for efficiency, so we have
	// to guarantee that:
	//
	// - All Range entries have Lo <= Hi
	//
	// - There are no overlapping Range entries
	//
	// - The Range entries are sorted by Lo
	//
	// Since we're already doing all this work, we also coalesce
	// adjacent-but-non-overlapping ranges into a single range.

	b := make([]Range, 0, len(a))
	for _, r := range a {
		if r.Hi >= r.Lo {
			b = append(b, r)
		}
	}
	sort.Slice(b, func(i, j int) bool { return b[i].Lo < b[j].Lo })

	if len(b) < 2 {
		return b
	}

	c := make([]Range, 0, len(b))
	var lastHi rune
	var have bool
	for _, r := range b {
		switch {
		case have && lastHi >= r.Hi:
			// fully contained in the previous entry
		case have && lastHi+1 >= r.Lo:
			// adjacent or partially overlapping: extend
			c[len(c)-1].Hi = r.Hi
			lastHi = r.Hi
		default:
			c = append(c, r)
			lastHi = r.Hi
			have = true
		}
	}
	return c
}
