package runeset

// All returns a Matcher that matches every code point.
func All() Matcher { return singletonAll }

type mAll struct{}

var _ Matcher = (*mAll)(nil)
var singletonAll = &mAll{}

func (m *mAll) Match(r rune) bool {
	return r >= 0 && r <= MaxRune
}

func (m *mAll) ForEachRange(f func(lo, hi rune)) {
	f(0, MaxRune)
}

func (m *mAll) String() string { return "." }
