package sabnfvm

import (
	"strings"
)

// Result is the outcome of a parse.
type Result struct {
	// Success is true iff the final state is MATCH or EMPTY and the
	// matched phrase covers the whole active window.
	Success bool

	// State is the start rule's final state.
	State State

	// Length is the active window length and Matched the number of
	// window characters the start rule matched.
	Length  int
	Matched int

	// MaxMatched is the character count from the window start to the
	// farthest point reached by any completed operator outside
	// look-around; on failure it spans the longest prefix the grammar
	// could make sense of.
	MaxMatched int

	// MaxTreeDepth and NodeHits are the observed parse-tree depth and
	// the total number of opcode evaluations.
	MaxTreeDepth int
	NodeHits     int

	// InputLength is the full input length; SubBegin, SubEnd and
	// SubLength describe the active window.
	InputLength int
	SubBegin    int
	SubEnd      int
	SubLength   int
}

// Parser is the engine facade. It wires a grammar object, an input window,
// the registered callbacks and the attached diagnostics into an Execution
// and runs it. The zero value is not usable; call NewParser.
//
// A Parser may be reused for any number of sequential parses. For parallel
// parsing, give each goroutine its own Parser; only the Grammar is shared.
type Parser struct {
	ast   *AST
	trace *Trace
	stats *Stats

	ruleCallbacks map[string]Callback
	udtCallbacks  map[string]Callback

	// MaxNodeHits and MaxTreeDepth are the run-wide safety caps; zero
	// means unbounded. Breaching one aborts the parse with a fatal
	// error.
	MaxNodeHits  int
	MaxTreeDepth int
}

// NewParser returns a parser with no diagnostics attached and no
// callbacks registered.
func NewParser() *Parser {
	return &Parser{
		ruleCallbacks: make(map[string]Callback),
		udtCallbacks:  make(map[string]Callback),
	}
}

// EnableAST attaches an AST builder and returns it for node selection.
func (p *Parser) EnableAST() *AST {
	if p.ast == nil {
		p.ast = &AST{}
	}
	return p.ast
}

// EnableTrace attaches a trace recorder and returns it for configuration.
func (p *Parser) EnableTrace() *Trace {
	if p.trace == nil {
		p.trace = NewTrace()
	}
	return p.trace
}

// EnableStats attaches a statistics collector and returns it.
func (p *Parser) EnableStats() *Stats {
	if p.stats == nil {
		p.stats = &Stats{}
	}
	return p.stats
}

// AST, Trace and Stats return the attached diagnostics, nil when not
// enabled.
func (p *Parser) AST() *AST     { return p.ast }
func (p *Parser) Trace() *Trace { return p.trace }
func (p *Parser) Stats() *Stats { return p.stats }

// DisableAST, DisableTrace and DisableStats detach the corresponding
// diagnostic from future parses.
func (p *Parser) DisableAST() *Parser   { p.ast = nil; return p }
func (p *Parser) DisableTrace() *Parser { p.trace = nil; return p }
func (p *Parser) DisableStats() *Parser { p.stats = nil; return p }

// SetRuleCallback registers an optional callback for the named rule. The
// name is resolved, case-insensitively, when the next parse initializes.
func (p *Parser) SetRuleCallback(name string, cb Callback) {
	p.ruleCallbacks[strings.ToLower(name)] = cb
}

// SetUDTCallback registers the mandatory callback for the named UDT.
func (p *Parser) SetUDTCallback(name string, cb Callback) {
	p.udtCallbacks[strings.ToLower(name)] = cb
}

// Parse matches the whole input against the named start rule.
func (p *Parser) Parse(g *Grammar, startRule string, input []rune, userData interface{}) (Result, error) {
	return p.ParseSubstring(g, startRule, input, 0, len(input), userData)
}

// ParseString converts a Go string to code points and parses it.
func (p *Parser) ParseString(g *Grammar, startRule, input string, userData interface{}) (Result, error) {
	return p.Parse(g, startRule, []rune(input), userData)
}

// ParseSubstring matches the window [begin, begin+length) of the input
// against the named start rule. Characters outside the window are still
// visible to look-ahead and look-behind.
func (p *Parser) ParseSubstring(g *Grammar, startRule string, input []rune, begin, length int, userData interface{}) (Result, error) {
	if err := g.Validate(); err != nil {
		return Result{}, err
	}
	start, found := g.RuleIndex(startRule)
	if !found {
		return Result{}, setupError(ErrStartRule, "%q", startRule)
	}
	return p.parse(g, start, input, begin, length, userData)
}

// ParseAt is ParseSubstring with the start rule given by index.
func (p *Parser) ParseAt(g *Grammar, startRule int, input []rune, begin, length int, userData interface{}) (Result, error) {
	if err := g.Validate(); err != nil {
		return Result{}, err
	}
	if startRule < 0 || startRule >= len(g.Rules) {
		return Result{}, setupError(ErrStartRule, "index %d", startRule)
	}
	return p.parse(g, startRule, input, begin, length, userData)
}

func (p *Parser) parse(g *Grammar, start int, input []rune, begin, length int, userData interface{}) (Result, error) {
	if begin < 0 || length < 0 || begin+length > len(input) {
		return Result{}, setupError(ErrWindow, "begin %d length %d of input %d", begin, length, len(input))
	}

	ruleCallbacks := make([]Callback, len(g.Rules))
	for name, cb := range p.ruleCallbacks {
		i, found := g.RuleIndex(name)
		if !found {
			return Result{}, setupError(ErrCallbackName, "rule %q", name)
		}
		ruleCallbacks[i] = cb
	}
	udtCallbacks := make([]Callback, len(g.UDTs))
	for name, cb := range p.udtCallbacks {
		i, found := g.UDTIndex(name)
		if !found {
			return Result{}, setupError(ErrCallbackName, "udt %q", name)
		}
		udtCallbacks[i] = cb
	}
	for i := range g.UDTs {
		if udtCallbacks[i] == nil {
			return Result{}, setupError(ErrUDTCallback, "%q", g.UDTs[i].Name)
		}
	}

	if p.ast != nil {
		if err := p.ast.init(g, input); err != nil {
			return Result{}, err
		}
	}
	if p.trace != nil {
		if err := p.trace.init(g); err != nil {
			return Result{}, err
		}
	}
	if p.stats != nil {
		p.stats.init(g)
	}

	x := &Execution{
		G:             g,
		I:             input,
		Begin:         begin,
		End:           begin + length,
		framesActive:  g.hasBackRef(),
		ruleCallbacks: ruleCallbacks,
		udtCallbacks:  udtCallbacks,
		userData:      userData,
		ast:           p.ast,
		trace:         p.trace,
		stats:         p.stats,
		maxNodeHits:   p.MaxNodeHits,
		maxTreeDepth:  p.MaxTreeDepth,
		maxMatched:    begin,
	}

	startOps := []Op{{Code: OpRNM, Index: start}}
	if err := x.execute(startOps, 0, begin); err != nil {
		return Result{}, err
	}

	return Result{
		Success:      (x.state == MatchState || x.state == EmptyState) && x.phraseLength == length,
		State:        x.state,
		Length:       length,
		Matched:      x.phraseLength,
		MaxMatched:   x.maxMatched - begin,
		MaxTreeDepth: x.deepestDepth,
		NodeHits:     x.nodeHits,
		InputLength:  len(input),
		SubBegin:     begin,
		SubEnd:       begin + length,
		SubLength:    length,
	}, nil
}
