package main

import (
	"github.com/chronos-tachyon/go-sabnf/runeset"
	"github.com/chronos-tachyon/go-sabnf/sabnfvm"
)

// floatGrammar recognizes decimal floating point numbers such as "1",
// "-3.14", ".5e-3" and "2E6".
func floatGrammar() *sabnfvm.Grammar {
	b := sabnfvm.NewBuilder()
	b.Rule("float", sabnfvm.Cat(
		sabnfvm.Opt(sabnfvm.Rnm("sign")),
		sabnfvm.Rnm("decimal"),
		sabnfvm.Opt(sabnfvm.Rnm("exponent")),
	))
	b.Rule("sign", sabnfvm.Cls(runeset.Set('+', '-')))
	b.Rule("decimal", sabnfvm.Alt(
		sabnfvm.Cat(
			sabnfvm.Rnm("digits"),
			sabnfvm.Opt(sabnfvm.Cat(sabnfvm.Tbs("."), sabnfvm.Opt(sabnfvm.Rnm("digits")))),
		),
		sabnfvm.Cat(sabnfvm.Tbs("."), sabnfvm.Rnm("digits")),
	))
	b.Rule("digits", sabnfvm.Rep(1, sabnfvm.RepInfinite, sabnfvm.Trg('0', '9')))
	b.Rule("exponent", sabnfvm.Cat(
		sabnfvm.Tls("e"),
		sabnfvm.Opt(sabnfvm.Rnm("sign")),
		sabnfvm.Rnm("digits"),
	))
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}

// pairGrammar recognizes "word=word" where the right word repeats the left
// one, case-insensitively: "abc=ABC" matches, "abc=abd" does not.
func pairGrammar() *sabnfvm.Grammar {
	b := sabnfvm.NewBuilder()
	b.Rule("pair", sabnfvm.Cat(
		sabnfvm.Rnm("word"),
		sabnfvm.Tbs("="),
		sabnfvm.Bkr("word", sabnfvm.CaseInsensitive, sabnfvm.ModeUniversal),
	))
	b.Rule("word", sabnfvm.Rep(1, sabnfvm.RepInfinite, sabnfvm.Cls(runeset.Or(
		runeset.Between('a', 'z'),
		runeset.Between('A', 'Z'),
	))))
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}

var demoGrammars = map[string]struct {
	grammar *sabnfvm.Grammar
	start   string
}{
	"float": {floatGrammar(), "float"},
	"pair":  {pairGrammar(), "pair"},
}
