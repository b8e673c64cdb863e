package runeset

// None returns a Matcher that never matches any code point.
func None() Matcher { return singletonNone }

type mNone struct{}

var _ Matcher = (*mNone)(nil)
var singletonNone = &mNone{}

func (m *mNone) Match(r rune) bool             { return false }
func (m *mNone) ForEachRange(func(lo, hi rune)) {}
func (m *mNone) String() string                { return "!." }
