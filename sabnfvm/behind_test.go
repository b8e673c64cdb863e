package sabnfvm

import (
	"testing"
)

func TestBKA_TBS(t *testing.T) {
	// S = "abc" bka("bc") "def"
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Tbs("abc"), Bka(Tbs("bc")), Tbs("def")))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"abcdef", true, 6, 6},
	})
}

func TestBKN_TBS(t *testing.T) {
	// S = head bkn("b") "def"; head = "abc" / "abb"
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Rnm("head"), Bkn(Tbs("b")), Tbs("def")))
		b.Rule("head", Alt(Tbs("abc"), Tbs("abb")))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"abcdef", true, 6, 6},
		parseRow{"abbdef", false, 0, 3},
	})
}

func TestBKA_CAT_RightToLeft(t *testing.T) {
	// The behind concatenation matches its items right to left, ending
	// at the anchor.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Tbs("xyz"), Bka(Cat(Tbs("x"), Tbs("y"), Tbs("z"))), Tbs("!")))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"xyz!", true, 4, 4},
	})
}

func TestBKA_REP(t *testing.T) {
	// bka(1*digit) after the digits: the repetition walks leftward and
	// stops at input index 0.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Rep(1, RepInfinite, Trg('0', '9')), Bka(Rep(1, RepInfinite, Trg('0', '9'))), Tbs("x")))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"123x", true, 4, 4},
		parseRow{"1x", true, 2, 2},
	})
}

func TestBKA_TRG(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Rep(1, RepInfinite, Trg('a', 'z')), Bka(Trg('x', 'z')), Tbs("1")))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"az1", true, 3, 3},
		parseRow{"za1", false, 0, 2},
	})
}

func TestBKA_TLS_Fold(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Tbs("ABC"), Bka(Tls("abc")), Tbs("!")))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"ABC!", true, 4, 4},
	})
}

func TestBKA_AtInputStart(t *testing.T) {
	// A look-behind pattern that would have to start before input index
	// 0 fails rather than wrapping.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Tbs("a"), Bka(Tbs("xa")), Tbs("b")))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"ab", false, 0, 1},
	})
}

func TestBKN_EmptyBehindAtStart(t *testing.T) {
	// bkn("x") at the very beginning: nothing precedes the anchor, so
	// the negative look-behind succeeds.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Bkn(Tbs("x")), Tbs("ab")))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"ab", true, 2, 2},
	})
}

func TestBKA_NestedLookAhead(t *testing.T) {
	// A look-ahead inside a look-behind runs forward again.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Tbs("ab"), Bka(Cat(And(Tbs("b")), Tbs("b"))), Tbs("c")))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"abc", true, 3, 3},
	})
}

func TestLookAround_NoSideEffects(t *testing.T) {
	// Captures recorded inside a look-around must not survive it: the
	// BKR after the look-ahead still sees the capture from before it.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(
			Rnm("A"),
			And(Cat(Tbs("zz"), Rnm("A"))),
			Tbs("zz"),
			Rnm("A"),
			Bkr("A", CaseSensitive, ModeUniversal),
		))
		b.Rule("A", Alt(Tbs("x"), Tbs("y")))
	})
	// Inside the look-ahead A matches "y" at index 3, but that capture
	// is discarded; the final BKR compares against the last real A.
	runParseTests(t, g, "S", []parseRow{
		parseRow{"xzzyy", true, 5, 5},
		parseRow{"xzzyx", false, 0, 4},
	})
}
