package sabnfvm

import (
	"bytes"
	"fmt"
	"strings"
)

// DefaultTraceRecords is the default trace ring capacity.
const DefaultTraceRecords = 5000

// FilterAll and FilterNone are the wildcard names accepted by the trace
// filters in place of explicit operator or rule names.
const (
	FilterAll  = "<ALL>"
	FilterNone = "<NONE>"
)

type filterMode uint8

const (
	filterNone filterMode = iota
	filterAll
	filterSet
)

// TraceRecord is one down or up event retained by the trace ring.
type TraceRecord struct {
	// Down is true for the record emitted before an opcode's handler
	// runs, false for the record emitted after.
	Down bool

	// Depth is the opcode's depth in the parse tree.
	Depth int

	// Line is this record's line number, counted over all records
	// emitted during the parse, retained or not.
	Line int

	// PairedLine is the line number of the matching up record (on a
	// down record) or down record (on an up record). It is -1 on a down
	// record whose up has not arrived, and back-patching is skipped when
	// the down record has already been evicted from the ring.
	PairedLine int

	// Op is a snapshot of the opcode being evaluated, and Name the rule,
	// UDT or back-reference target name for the named operators.
	Op   Op
	Name string

	// State and Phrase are the handler's outcome; on a down record State
	// is ActiveState and Phrase carries the index only.
	State  State
	Phrase Phrase

	// LookKind and LookAnchor describe the look-around context the
	// opcode ran in.
	LookKind   LookKind
	LookAnchor int
}

// String provides a one-line rendering of the record.
func (r *TraceRecord) String() string {
	var buf bytes.Buffer
	dir := 'u'
	if r.Down {
		dir = 'd'
	}
	fmt.Fprintf(&buf, "%d:%c:%d ", r.Line, dir, r.Depth)
	buf.WriteString(strings.Repeat(".", r.Depth))
	buf.WriteString(r.Op.Code.String())
	if r.Name != "" {
		fmt.Fprintf(&buf, "(%s)", r.Name)
	}
	fmt.Fprintf(&buf, " %s%s", r.State, r.Phrase)
	if r.LookKind != LookNone {
		fmt.Fprintf(&buf, " %s@%d", r.LookKind, r.LookAnchor)
	}
	return buf.String()
}

// Trace is the trace recorder: a circular buffer of down/up records with
// per-parse operator and rule filters. Create one with Parser.EnableTrace
// or NewTrace, configure it before parsing, and read it with Emit
// afterwards.
//
// Defaults: 5000 records, keep the last N on overflow, operators filtered
// to <NONE>, rules filtered to <ALL> — that is, only rule, UDT and
// back-reference evaluations are traced unless operators are switched on.
type Trace struct {
	maxRecords int
	keepFirst  bool

	opsMode   filterMode
	operators map[OpCode]bool

	rulesMode filterMode
	ruleNames map[string]bool

	ring    ring
	records []TraceRecord
	open    []int
}

// NewTrace returns a trace recorder with default configuration.
func NewTrace() *Trace {
	return &Trace{
		maxRecords: DefaultTraceRecords,
		opsMode:    filterNone,
		rulesMode:  filterAll,
	}
}

// SetMaxRecords sets the ring capacity. keepFirst false (the default)
// retains the last n records of an overflowing parse; true retains the
// first n instead.
func (t *Trace) SetMaxRecords(n int, keepFirst bool) {
	if n < 1 {
		n = DefaultTraceRecords
	}
	t.maxRecords = n
	t.keepFirst = keepFirst
}

// SetOperatorFilter selects which operators are traced: FilterAll,
// FilterNone, or an explicit list of operator names. Unknown operator
// names are an error.
func (t *Trace) SetOperatorFilter(names ...string) error {
	if mode, ok := wildcardMode(names); ok {
		t.opsMode = mode
		t.operators = nil
		return nil
	}
	set := make(map[OpCode]bool, len(names))
	for _, name := range names {
		code, found := OpCodeByName(name)
		if !found {
			return setupError(ErrFilterName, "operator %q", name)
		}
		set[code] = true
	}
	t.opsMode = filterSet
	t.operators = set
	return nil
}

// SetRuleFilter selects which rules and UDTs are traced: FilterAll,
// FilterNone, or an explicit list of names. Names are validated against
// the grammar when the next parse initializes.
func (t *Trace) SetRuleFilter(names ...string) {
	if mode, ok := wildcardMode(names); ok {
		t.rulesMode = mode
		t.ruleNames = nil
		return
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = true
	}
	t.rulesMode = filterSet
	t.ruleNames = set
}

func wildcardMode(names []string) (filterMode, bool) {
	if len(names) == 1 {
		switch strings.ToUpper(names[0]) {
		case FilterAll:
			return filterAll, true
		case FilterNone:
			return filterNone, true
		}
	}
	return 0, false
}

// init validates the rule filter against the grammar and resets the ring
// for a fresh parse.
func (t *Trace) init(g *Grammar) error {
	if t.maxRecords < 1 {
		t.maxRecords = DefaultTraceRecords
	}
	for name := range t.ruleNames {
		if _, found := g.RuleIndex(name); found {
			continue
		}
		if _, found := g.UDTIndex(name); found {
			continue
		}
		return setupError(ErrFilterName, "rule %q", name)
	}
	t.ring.init(t.maxRecords, !t.keepFirst)
	if len(t.records) != t.maxRecords {
		t.records = make([]TraceRecord, t.maxRecords)
	}
	t.open = t.open[:0]
	return nil
}

// enabled applies the filters: named operators (RNM, UDT, BKR) go through
// the rule filter, everything else through the operator filter.
func (t *Trace) enabled(op *Op, name string) bool {
	switch op.Code {
	case OpRNM, OpUDT, OpBKR:
		switch t.rulesMode {
		case filterAll:
			return true
		case filterNone:
			return false
		}
		return t.ruleNames[strings.ToLower(name)]
	}
	switch t.opsMode {
	case filterAll:
		return true
	case filterNone:
		return false
	}
	return t.operators[op.Code]
}

// down records the pre-handler event for an opcode, returning its line
// number, or -1 when the opcode is filtered out.
func (t *Trace) down(op *Op, name string, depth, phraseIndex int, kind LookKind, anchor int) int {
	if !t.enabled(op, name) {
		return -1
	}
	line, slot := t.ring.push()
	if slot >= 0 {
		t.records[slot] = TraceRecord{
			Down:       true,
			Depth:      depth,
			Line:       line,
			PairedLine: -1,
			Op:         *op,
			Name:       name,
			State:      ActiveState,
			Phrase:     Phrase{Index: phraseIndex},
			LookKind:   kind,
			LookAnchor: anchor,
		}
	}
	t.open = append(t.open, line)
	return line
}

// up records the post-handler event and back-patches the paired down
// record if it is still in the ring.
func (t *Trace) up(op *Op, name string, depth int, state State, p Phrase, kind LookKind, anchor int) int {
	if !t.enabled(op, name) {
		return -1
	}
	assert(len(t.open) > 0, "trace up with no open record")
	downLine := t.open[len(t.open)-1]
	t.open = t.open[:len(t.open)-1]

	line, slot := t.ring.push()
	if slot >= 0 {
		t.records[slot] = TraceRecord{
			Depth:      depth,
			Line:       line,
			PairedLine: downLine,
			Op:         *op,
			Name:       name,
			State:      state,
			Phrase:     p,
			LookKind:   kind,
			LookAnchor: anchor,
		}
	}
	if ds := t.ring.slot(downLine); ds >= 0 {
		t.records[ds].PairedLine = line
	}
	return line
}

// Count is the number of retained records; Lines is the total number of
// records emitted during the parse, retained or not.
func (t *Trace) Count() int { return t.ring.count() }
func (t *Trace) Lines() int { return t.ring.total }

// Emit returns the retained records, oldest first.
func (t *Trace) Emit() []TraceRecord {
	out := make([]TraceRecord, 0, t.ring.count())
	t.ring.forEach(func(slot, line int) {
		out = append(out, t.records[slot])
	})
	return out
}

// Dump renders the retained records one per line, for debugging.
func (t *Trace) Dump() string {
	var buf bytes.Buffer
	t.ring.forEach(func(slot, line int) {
		buf.WriteString(t.records[slot].String())
		buf.WriteByte('\n')
	})
	return buf.String()
}
