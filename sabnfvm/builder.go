package sabnfvm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chronos-tachyon/go-sabnf/runeset"
)

// ErrBuild is the category of errors reported by Builder.Build.
var ErrBuild = errors.New("grammar build error")

func buildError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBuild, fmt.Sprintf(format, args...))
}

// Element is one node of an operator tree under construction. Elements are
// created by the operator constructors below and handed to Builder.Rule;
// they carry no state of their own after Build.
type Element struct {
	code     OpCode
	children []*Element
	min, max int
	name     string
	empty    bool
	lo, hi   rune
	chars    []rune
	caseMode CaseMode
	mode     BkrMode
	err      error
}

// Alt builds an ordered alternation.
func Alt(alternatives ...*Element) *Element {
	e := &Element{code: OpALT, children: alternatives}
	if len(alternatives) == 0 {
		e.err = buildError("ALT with no alternatives")
	}
	return e
}

// Cat builds a concatenation.
func Cat(items ...*Element) *Element {
	e := &Element{code: OpCAT, children: items}
	if len(items) == 0 {
		e.err = buildError("CAT with no items")
	}
	return e
}

// Rep builds a repetition with inclusive bounds; use RepInfinite for an
// unbounded max.
func Rep(min, max int, item *Element) *Element {
	e := &Element{code: OpREP, min: min, max: max, children: []*Element{item}}
	if min < 0 || max < 1 || min > max {
		e.err = buildError("REP with bounds [%d,%d]", min, max)
	}
	return e
}

// Opt builds an optional item, equivalent to Rep(0, 1, item).
func Opt(item *Element) *Element {
	return Rep(0, 1, item)
}

// Star builds zero-or-more, equivalent to Rep(0, RepInfinite, item).
func Star(item *Element) *Element {
	return Rep(0, RepInfinite, item)
}

// Rnm builds a rule invocation by name.
func Rnm(name string) *Element {
	return &Element{code: OpRNM, name: name}
}

// Udt builds a user-defined terminal reference. empty declares whether the
// UDT may match zero characters; every reference to the same UDT must
// agree on it.
func Udt(name string, empty bool) *Element {
	return &Element{code: OpUDT, name: name, empty: empty}
}

// And builds a positive look-ahead.
func And(item *Element) *Element {
	return &Element{code: OpAND, children: []*Element{item}}
}

// Not builds a negative look-ahead.
func Not(item *Element) *Element {
	return &Element{code: OpNOT, children: []*Element{item}}
}

// Bka builds a positive look-behind.
func Bka(item *Element) *Element {
	return &Element{code: OpBKA, children: []*Element{item}}
}

// Bkn builds a negative look-behind.
func Bkn(item *Element) *Element {
	return &Element{code: OpBKN, children: []*Element{item}}
}

// Trg builds a single-character range match.
func Trg(lo, hi rune) *Element {
	e := &Element{code: OpTRG, lo: lo, hi: hi}
	if lo > hi {
		e.err = buildError("TRG with range [%#x,%#x]", lo, hi)
	}
	return e
}

// Tbs builds an exact, case-sensitive literal.
func Tbs(s string) *Element {
	e := &Element{code: OpTBS, chars: []rune(s)}
	if len(e.chars) == 0 {
		e.err = buildError("TBS with empty literal")
	}
	return e
}

// Tls builds an ASCII case-insensitive literal. An empty Tls matches the
// empty string.
func Tls(s string) *Element {
	return &Element{code: OpTLS, chars: foldRunes([]rune(s))}
}

// Bkr builds a back-reference to the named rule or UDT.
func Bkr(name string, c CaseMode, m BkrMode) *Element {
	return &Element{code: OpBKR, name: name, caseMode: c, mode: m}
}

// Abg builds a begin-of-window anchor; Aen an end-of-window anchor.
func Abg() *Element { return &Element{code: OpABG} }
func Aen() *Element { return &Element{code: OpAEN} }

// Cls builds a character class from a rune set: an alternation over the
// set's maximal ranges, or a bare range match when one range suffices.
func Cls(m runeset.Matcher) *Element {
	ranges := runeset.Ranges(m, nil)
	switch len(ranges) {
	case 0:
		return &Element{code: OpALT, err: buildError("empty character class %s", m)}
	case 1:
		return Trg(ranges[0].Lo, ranges[0].Hi)
	}
	alts := make([]*Element, len(ranges))
	for i, r := range ranges {
		alts[i] = Trg(r.Lo, r.Hi)
	}
	return Alt(alts...)
}

type ruleDef struct {
	name string
	root *Element
}

// Builder assembles a Grammar from named operator trees. It is the
// in-process stand-in for an external grammar generator: it flattens each
// rule's tree to the opcode table layout the evaluator expects, collects
// UDT declarations, resolves rule and back-reference names, and marks
// back-referenced targets.
type Builder struct {
	defs []ruleDef
	err  error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Rule defines a named rule. Rules are indexed in definition order;
// definition order does not otherwise matter, and mutually recursive
// rules are fine.
func (b *Builder) Rule(name string, root *Element) {
	if name == "" && b.err == nil {
		b.err = buildError("rule with empty name")
	}
	b.defs = append(b.defs, ruleDef{name: name, root: root})
}

// Build flattens the rule trees into a validated Grammar.
func (b *Builder) Build() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.defs) == 0 {
		return nil, buildError("no rules defined")
	}

	g := &Grammar{Rules: make([]Rule, len(b.defs))}
	ruleIdx := make(map[string]int, len(b.defs))
	for i, def := range b.defs {
		lower := strings.ToLower(def.name)
		if _, dup := ruleIdx[lower]; dup {
			return nil, buildError("rule %q defined twice", def.name)
		}
		ruleIdx[lower] = i
		g.Rules[i] = Rule{Name: def.name, Lower: lower, Index: i}
	}

	// First pass: collect UDT declarations in first-reference order.
	udtIdx := make(map[string]int)
	for _, def := range b.defs {
		if err := collectUDTs(def.root, g, ruleIdx, udtIdx); err != nil {
			return nil, err
		}
	}

	// Second pass: flatten and resolve.
	for i, def := range b.defs {
		var ops []Op
		if _, err := emit(&ops, def.root, g, ruleIdx, udtIdx); err != nil {
			return nil, fmt.Errorf("rule %q: %w", def.name, err)
		}
		g.Rules[i].Ops = ops
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func collectUDTs(e *Element, g *Grammar, ruleIdx, udtIdx map[string]int) error {
	if e == nil {
		return buildError("nil element")
	}
	if e.err != nil {
		return e.err
	}
	if e.code == OpUDT {
		lower := strings.ToLower(e.name)
		if lower == "" {
			return buildError("UDT with empty name")
		}
		if _, isRule := ruleIdx[lower]; isRule {
			return buildError("UDT %q collides with a rule name", e.name)
		}
		if j, seen := udtIdx[lower]; seen {
			if g.UDTs[j].Empty != e.empty {
				return buildError("UDT %q referenced with conflicting empty flags", e.name)
			}
		} else {
			udtIdx[lower] = len(g.UDTs)
			g.UDTs = append(g.UDTs, UDT{
				Name:  e.name,
				Lower: lower,
				Empty: e.empty,
				Index: len(g.UDTs),
			})
		}
	}
	for _, c := range e.children {
		if err := collectUDTs(c, g, ruleIdx, udtIdx); err != nil {
			return err
		}
	}
	return nil
}

// emit appends e's subtree to dst in evaluator layout: single-child
// operators keep their child at the next index, ALT and CAT record their
// children's start indices.
func emit(dst *[]Op, e *Element, g *Grammar, ruleIdx, udtIdx map[string]int) (int, error) {
	if e == nil {
		return 0, buildError("nil element")
	}
	if e.err != nil {
		return 0, e.err
	}

	i := len(*dst)
	*dst = append(*dst, Op{Code: e.code})

	switch e.code {
	case OpALT, OpCAT:
		children := make([]int, len(e.children))
		for k, c := range e.children {
			ci, err := emit(dst, c, g, ruleIdx, udtIdx)
			if err != nil {
				return 0, err
			}
			children[k] = ci
		}
		(*dst)[i].Children = children

	case OpREP:
		(*dst)[i].Min = e.min
		(*dst)[i].Max = e.max
		if _, err := emit(dst, e.children[0], g, ruleIdx, udtIdx); err != nil {
			return 0, err
		}

	case OpAND, OpNOT, OpBKA, OpBKN:
		if _, err := emit(dst, e.children[0], g, ruleIdx, udtIdx); err != nil {
			return 0, err
		}

	case OpRNM:
		ri, found := ruleIdx[strings.ToLower(e.name)]
		if !found {
			return 0, buildError("reference to undefined rule %q", e.name)
		}
		(*dst)[i].Index = ri

	case OpUDT:
		ui := udtIdx[strings.ToLower(e.name)]
		(*dst)[i].Index = ui
		(*dst)[i].Empty = e.empty

	case OpTRG:
		(*dst)[i].Lo = e.lo
		(*dst)[i].Hi = e.hi

	case OpTBS, OpTLS:
		(*dst)[i].Chars = e.chars

	case OpBKR:
		lower := strings.ToLower(e.name)
		if ri, found := ruleIdx[lower]; found {
			(*dst)[i].Index = ri
			g.Rules[ri].IsBackRef = true
		} else if ui, found := udtIdx[lower]; found {
			(*dst)[i].Index = len(g.Rules) + ui
			g.UDTs[ui].IsBackRef = true
		} else {
			return 0, buildError("back-reference to undefined name %q", e.name)
		}
		(*dst)[i].Case = e.caseMode
		(*dst)[i].Mode = e.mode
	}
	return i, nil
}
