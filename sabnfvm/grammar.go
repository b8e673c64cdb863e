package sabnfvm

import (
	"fmt"
	"strings"
)

// Rule is one named grammar production. Its opcode table is a contiguous
// slice addressed from index 0; an RNM that invokes the rule re-enters the
// evaluator at Ops[0].
type Rule struct {
	// Name is the rule name as written in the grammar.
	Name string

	// Lower is Name folded to lower case. Rule names are matched
	// case-insensitively, and back-reference frames are keyed by Lower.
	Lower string

	// Ops is the rule's opcode table.
	Ops []Op

	// IsBackRef is true iff some BKR in the grammar targets this rule.
	// Captures are only recorded for back-referenced rules.
	IsBackRef bool

	// Index is this rule's position in Grammar.Rules.
	Index int
}

// UDT is a user-defined terminal: a rule-like node with no opcodes whose
// matching logic is supplied as a callback at parse time.
type UDT struct {
	Name  string
	Lower string

	// Empty declares whether the UDT may match the empty string. A UDT
	// callback returning EMPTY when Empty is false is a fatal error.
	Empty bool

	// IsBackRef is true iff some BKR in the grammar targets this UDT.
	IsBackRef bool

	// Index is this UDT's position in Grammar.UDTs.
	Index int
}

// Grammar is a pre-compiled grammar object: immutable rule, UDT and opcode
// tables produced by an external generator or by a Builder. A Grammar is
// read-only once built and may be shared by any number of concurrent
// parses.
type Grammar struct {
	Rules []Rule
	UDTs  []UDT
}

// RuleIndex resolves a rule name, case-insensitively.
func (g *Grammar) RuleIndex(name string) (int, bool) {
	lower := strings.ToLower(name)
	for i := range g.Rules {
		if g.Rules[i].Lower == lower {
			return i, true
		}
	}
	return 0, false
}

// UDTIndex resolves a UDT name, case-insensitively.
func (g *Grammar) UDTIndex(name string) (int, bool) {
	lower := strings.ToLower(name)
	for i := range g.UDTs {
		if g.UDTs[i].Lower == lower {
			return i, true
		}
	}
	return 0, false
}

// NodeCount is the size of the rule+UDT node id space: rules occupy ids
// [0, len(Rules)), UDTs the ids above them. AST node ids and BKR indices
// both live in this space.
func (g *Grammar) NodeCount() int {
	return len(g.Rules) + len(g.UDTs)
}

// nodeName returns the grammar name for a node id, and whether the id is
// in range.
func (g *Grammar) nodeName(id int) (string, bool) {
	if id >= 0 && id < len(g.Rules) {
		return g.Rules[id].Name, true
	}
	id -= len(g.Rules)
	if id >= 0 && id < len(g.UDTs) {
		return g.UDTs[id].Name, true
	}
	return "", false
}

// nodeLower returns the lower-case grammar name for a node id.
func (g *Grammar) nodeLower(id int) (string, bool) {
	if id >= 0 && id < len(g.Rules) {
		return g.Rules[id].Lower, true
	}
	id -= len(g.Rules)
	if id >= 0 && id < len(g.UDTs) {
		return g.UDTs[id].Lower, true
	}
	return "", false
}

// hasBackRef reports whether any rule or UDT is back-referenced. The
// evaluator allocates back-reference frames only when this is true.
func (g *Grammar) hasBackRef() bool {
	for i := range g.Rules {
		if g.Rules[i].IsBackRef {
			return true
		}
	}
	for i := range g.UDTs {
		if g.UDTs[i].IsBackRef {
			return true
		}
	}
	return false
}

// Validate checks the grammar object's shape: table indices in range,
// names present and correctly folded, operator fields consistent. The
// parser facade calls it before every parse; generators should call it
// once after construction.
func (g *Grammar) Validate() error {
	if g == nil {
		return setupError(ErrGrammar, "grammar is nil")
	}
	if len(g.Rules) == 0 {
		return setupError(ErrGrammar, "grammar has no rules")
	}

	seen := make(map[string]struct{}, g.NodeCount())
	for i := range g.Rules {
		rule := &g.Rules[i]
		if err := g.validateName(rule.Name, rule.Lower, rule.Index, i, "rule", seen); err != nil {
			return err
		}
		if len(rule.Ops) == 0 {
			return setupError(ErrGrammar, "rule %q has no opcodes", rule.Name)
		}
		for j := range rule.Ops {
			if err := g.validateOp(rule, j); err != nil {
				return err
			}
		}
	}
	for i := range g.UDTs {
		udt := &g.UDTs[i]
		if err := g.validateName(udt.Name, udt.Lower, udt.Index, i, "udt", seen); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grammar) validateName(name, lower string, index, i int, kind string, seen map[string]struct{}) error {
	if name == "" {
		return setupError(ErrGrammar, "%s %d has no name", kind, i)
	}
	if lower != strings.ToLower(name) {
		return setupError(ErrGrammar, "%s %q: lower-case name is %q", kind, name, lower)
	}
	if index != i {
		return setupError(ErrGrammar, "%s %q: index %d at position %d", kind, name, index, i)
	}
	if _, dup := seen[lower]; dup {
		return setupError(ErrGrammar, "%s %q: duplicate name", kind, name)
	}
	seen[lower] = struct{}{}
	return nil
}

func (g *Grammar) validateOp(rule *Rule, j int) error {
	op := &rule.Ops[j]
	at := func(format string, args ...interface{}) error {
		detail := fmt.Sprintf(format, args...)
		return setupError(ErrGrammar, "rule %q opcode %d (%s): %s", rule.Name, j, op.Code, detail)
	}

	switch op.Code {
	case OpALT, OpCAT:
		if len(op.Children) == 0 {
			return at("no children")
		}
		for _, c := range op.Children {
			if c <= j || c >= len(rule.Ops) {
				return at("child index %d out of range", c)
			}
		}

	case OpREP:
		if op.Min < 0 || op.Max < 1 || op.Min > op.Max {
			return at("bad bounds [%d,%d]", op.Min, op.Max)
		}
		if j+1 >= len(rule.Ops) {
			return at("missing child opcode")
		}

	case OpAND, OpNOT, OpBKA, OpBKN:
		if j+1 >= len(rule.Ops) {
			return at("missing child opcode")
		}

	case OpRNM:
		if op.Index < 0 || op.Index >= len(g.Rules) {
			return at("rule index %d out of range", op.Index)
		}

	case OpUDT:
		if op.Index < 0 || op.Index >= len(g.UDTs) {
			return at("udt index %d out of range", op.Index)
		}
		if op.Empty != g.UDTs[op.Index].Empty {
			return at("empty flag disagrees with udt %q", g.UDTs[op.Index].Name)
		}

	case OpTRG:
		if op.Lo > op.Hi {
			return at("bad range [%#x,%#x]", op.Lo, op.Hi)
		}

	case OpTBS:
		if len(op.Chars) == 0 {
			return at("empty literal")
		}

	case OpTLS:
		for _, r := range op.Chars {
			if r >= 'A' && r <= 'Z' {
				return at("literal %q not folded to lower case", string(op.Chars))
			}
		}

	case OpBKR:
		if op.Index < 0 || op.Index >= g.NodeCount() {
			return at("target index %d out of range", op.Index)
		}

	case OpABG, OpAEN:
		// no operands

	default:
		return at("unknown operator")
	}
	return nil
}
