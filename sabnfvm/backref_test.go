package sabnfvm

import (
	"testing"
)

// scopedGrammar is the canonical scoping fixture:
//
//	S = A B bkr(A)
//	B = A "b" bkr(A)
//	A = "x" / "y"
//
// where both back-references use the given mode.
func scopedGrammar(t *testing.T, mode BkrMode) *Grammar {
	t.Helper()
	return mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Rnm("A"), Rnm("B"), Bkr("A", CaseSensitive, mode)))
		b.Rule("B", Cat(Rnm("A"), Tbs("b"), Bkr("A", CaseSensitive, mode)))
		b.Rule("A", Alt(Tbs("x"), Tbs("y")))
	})
}

func TestBKR_ParentScoping(t *testing.T) {
	g := scopedGrammar(t, ModeParent)
	runParseTests(t, g, "S", []parseRow{
		parseRow{"xybyx", true, 5, 5},
		parseRow{"xybyy", false, 0, 4},
	})
}

func TestBKR_UniversalScoping(t *testing.T) {
	g := scopedGrammar(t, ModeUniversal)
	runParseTests(t, g, "S", []parseRow{
		parseRow{"xybyy", true, 5, 5},
		parseRow{"xybyx", false, 0, 4},
	})
}

func TestBKR_Parent(t *testing.T) {
	// S = A bkr(A); A = "x" / "y"
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Rnm("A"), Bkr("A", CaseSensitive, ModeParent)))
		b.Rule("A", Alt(Tbs("x"), Tbs("y")))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"xx", true, 2, 2},
		parseRow{"yy", true, 2, 2},
		parseRow{"xy", false, 0, 1},
	})
}

func TestBKR_RoundTrip(t *testing.T) {
	// After A captures a phrase, bkr(A) matches exactly that phrase.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Rnm("A"), Tbs("-"), Bkr("A", CaseSensitive, ModeUniversal)))
		b.Rule("A", Rep(1, RepInfinite, Trg('a', 'z')))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"abc-abc", true, 7, 7},
		parseRow{"abc-abd", false, 0, 4},
		parseRow{"abc-ab", false, 0, 4},
	})
}

func TestBKR_CaseInsensitive(t *testing.T) {
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Rnm("A"), Tbs("-"), Bkr("A", CaseInsensitive, ModeUniversal)))
		b.Rule("A", Rep(1, RepInfinite, Alt(Trg('a', 'z'), Trg('A', 'Z'))))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"abc-ABC", true, 7, 7},
		parseRow{"AbC-aBc", true, 7, 7},
	})
}

func TestBKR_NoCapture(t *testing.T) {
	// bkr(A) before any A has matched: no frame entry, NOMATCH.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Alt(Cat(Bkr("A", CaseSensitive, ModeUniversal), Rnm("A")), Rnm("A")))
		b.Rule("A", Tbs("x"))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"x", true, 1, 1},
	})
}

func TestBKR_EmptyCapture(t *testing.T) {
	// A zero-length capture back-references as EMPTY.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Rnm("A"), Tbs("z"), Bkr("A", CaseSensitive, ModeUniversal), Tbs("z")))
		b.Rule("A", Tls(""))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"zz", true, 2, 2},
	})
}

func TestBKR_Behind(t *testing.T) {
	// bka(bkr(A)) right after the capture: the captured phrase is
	// exactly what precedes the anchor.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Rnm("A"), Bka(Bkr("A", CaseSensitive, ModeUniversal)), Tbs("!")))
		b.Rule("A", Rep(1, RepInfinite, Trg('a', 'z')))
	})
	runParseTests(t, g, "S", []parseRow{
		parseRow{"abc!", true, 4, 4},
	})
}

func TestBKR_UDT(t *testing.T) {
	// Back-referenced UDT: the callback's capture participates in the
	// frames exactly like a rule capture.
	g := mustBuild(t, func(b *Builder) {
		b.Rule("S", Cat(Udt("u_word", false), Tbs("-"), Bkr("u_word", CaseSensitive, ModeUniversal)))
	})
	p := NewParser()
	p.SetUDTCallback("u_word", func(d *CallbackData) {
		n := 0
		for d.PhraseIndex+n < len(d.Input) {
			c := d.Input[d.PhraseIndex+n]
			if c < 'a' || c > 'z' {
				break
			}
			n++
		}
		if n == 0 {
			d.State = NoMatchState
			return
		}
		d.State = MatchState
		d.PhraseLength = n
	})
	result, err := p.ParseString(g, "S", "abc-abc", nil)
	if err != nil {
		t.Fatalf("%s: error: %v", t.Name(), err)
	}
	if !result.Success || result.Matched != 7 {
		t.Errorf("%s: got %+v", t.Name(), result)
	}
}
