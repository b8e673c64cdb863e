package runeset

// Exactly returns a Matcher that matches one specific code point.
func Exactly(r rune) Matcher {
	return &mExact{Rune: r}
}

type mExact struct{ Rune rune }

var _ Matcher = (*mExact)(nil)

func (m *mExact) Match(r rune) bool {
	return r == m.Rune
}

func (m *mExact) ForEachRange(f func(lo, hi rune)) {
	f(m.Rune, m.Rune)
}

func (m *mExact) String() string {
	return genericString(m)
}
