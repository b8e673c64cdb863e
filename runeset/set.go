package runeset

// Set returns a Matcher that matches any of the given code points.
func Set(rs ...rune) Matcher {
	ranges := make([]Range, len(rs))
	for i, r := range rs {
		ranges[i] = Range{Lo: r, Hi: r}
	}
	return makeRange(ranges)
}
