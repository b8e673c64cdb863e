package sabnfvm

// Counts is one bucket of outcome counters.
type Counts struct {
	Empty   int
	Match   int
	NoMatch int
	Total   int
}

func (c *Counts) bump(state State) {
	switch state {
	case EmptyState:
		c.Empty++
	case MatchState:
		c.Match++
	case NoMatchState:
		c.NoMatch++
	}
	c.Total++
}

// Stats counts opcode evaluation outcomes per operator and per named rule
// or UDT. Create one with Parser.EnableStats; it is reset at the start of
// every parse.
type Stats struct {
	ops   [opCodeCount]Counts
	rules []Counts
	udts  []Counts
	total Counts
	g     *Grammar
}

func (s *Stats) init(g *Grammar) {
	s.g = g
	s.ops = [opCodeCount]Counts{}
	s.rules = make([]Counts, len(g.Rules))
	s.udts = make([]Counts, len(g.UDTs))
	s.total = Counts{}
}

// collect is called by the evaluator once per completed opcode.
func (s *Stats) collect(op *Op, state State) {
	s.ops[op.Code].bump(state)
	s.total.bump(state)
	switch op.Code {
	case OpRNM:
		s.rules[op.Index].bump(state)
	case OpUDT:
		s.udts[op.Index].bump(state)
	}
}

// OperatorCounts returns the counts for one operator.
func (s *Stats) OperatorCounts(code OpCode) Counts {
	if int(code) >= int(opCodeCount) {
		return Counts{}
	}
	return s.ops[code]
}

// RuleCounts returns the counts for a named rule or UDT.
func (s *Stats) RuleCounts(name string) (Counts, bool) {
	if s.g == nil {
		return Counts{}, false
	}
	if i, found := s.g.RuleIndex(name); found {
		return s.rules[i], true
	}
	if i, found := s.g.UDTIndex(name); found {
		return s.udts[i], true
	}
	return Counts{}, false
}

// TotalCounts returns the counts accumulated over every opcode executed.
func (s *Stats) TotalCounts() Counts {
	return s.total
}
