package sabnfvm

import (
	"bytes"
	"fmt"
	"strings"
)

// ASTPhase tells an AST node callback whether it is visiting the node on
// the way down or on the way back up.
type ASTPhase uint8

const (
	PrePhase ASTPhase = iota
	PostPhase
)

// ASTReturn is an AST node callback's verdict. SemSkip is only honored in
// the pre phase, where it skips the node's subtree.
type ASTReturn uint8

const (
	SemOK ASTReturn = iota
	SemSkip
)

// ASTCallback is invoked for a retained node during AST.Translate, once
// with PrePhase at the node's down record and once with PostPhase at its
// up record.
type ASTCallback func(phase ASTPhase, input []rune, p Phrase, userData interface{}) ASTReturn

// ASTRecord is one node event in the linear AST record. Down and up events
// of the same node point at each other through Paired.
type ASTRecord struct {
	// Down is true for the opening event of a node, false for the
	// closing event.
	Down bool

	// NodeID is the node id of the matched rule or UDT (see
	// Grammar.NodeCount) and also the callback slot.
	NodeID int

	// Name is the rule or UDT name.
	Name string

	// Phrase is the matched phrase. On a down record it is back-patched
	// when the matching up record arrives.
	Phrase Phrase

	// Depth is the node's depth in the retained tree.
	Depth int

	// Paired is the record index of the matching up (resp. down) event,
	// or -1 while the node is still open.
	Paired int
}

// AST records down/up node events for retained rules and UDTs during a
// successful parse path, and replays them after the parse with user
// callbacks. Create one with Parser.EnableAST, select nodes with SetNode
// before parsing, and call Translate afterwards.
type AST struct {
	records []ASTRecord
	stack   []int
	input   []rune

	// requested maps lower-case node names to their callbacks (possibly
	// nil) as registered by SetNode. init resolves them against the
	// grammar into the two parallel tables below.
	requested map[string]ASTCallback
	defined   []bool
	callbacks []ASTCallback
	g         *Grammar
}

// SetNode marks the named rule or UDT for retention in the AST. cb may be
// nil to retain the node without a translation callback. Unknown names are
// reported when the next parse initializes.
func (a *AST) SetNode(name string, cb ASTCallback) {
	if a.requested == nil {
		a.requested = make(map[string]ASTCallback)
	}
	a.requested[strings.ToLower(name)] = cb
}

// init resolves the requested node names against the grammar and clears
// the record list for a fresh parse.
func (a *AST) init(g *Grammar, input []rune) error {
	a.g = g
	a.input = input
	a.records = a.records[:0]
	a.stack = a.stack[:0]
	a.defined = make([]bool, g.NodeCount())
	a.callbacks = make([]ASTCallback, g.NodeCount())
	for name, cb := range a.requested {
		id, found := g.RuleIndex(name)
		if !found {
			u, foundU := g.UDTIndex(name)
			if !foundU {
				return setupError(ErrNodeName, "%q", name)
			}
			id = len(g.Rules) + u
		}
		a.defined[id] = true
		a.callbacks[id] = cb
	}
	return nil
}

// nodeDefined reports whether the node id was selected for retention.
func (a *AST) nodeDefined(id int) bool {
	return id < len(a.defined) && a.defined[id]
}

// Down opens a node, returning its record index.
func (a *AST) Down(id int, name string) int {
	i := len(a.records)
	a.records = append(a.records, ASTRecord{
		Down:   true,
		NodeID: id,
		Name:   name,
		Depth:  len(a.stack),
		Paired: -1,
	})
	a.stack = append(a.stack, i)
	return i
}

// Up closes the innermost open node, back-patching its down record with
// the matched phrase and the pair index.
func (a *AST) Up(id int, name string, p Phrase) int {
	assert(len(a.stack) > 0, "AST up with no open node")
	d := a.stack[len(a.stack)-1]
	a.stack = a.stack[:len(a.stack)-1]

	i := len(a.records)
	a.records = append(a.records, ASTRecord{
		NodeID: id,
		Name:   name,
		Phrase: p,
		Depth:  len(a.stack),
		Paired: d,
	})

	down := &a.records[d]
	down.Paired = i
	down.Phrase = p
	return i
}

// Len returns the current record count. The evaluator saves it before a
// speculative sub-match and hands it back to SetLen on failure.
func (a *AST) Len() int {
	return len(a.records)
}

// SetLen truncates the record list to n and restores the open-node stack
// to the depth in force just after record n-1 was written.
func (a *AST) SetLen(n int) {
	assert(n >= 0 && n <= len(a.records), "AST truncate to %d of %d", n, len(a.records))
	a.records = a.records[:n]
	if n == 0 {
		a.stack = a.stack[:0]
		return
	}
	last := &a.records[n-1]
	depth := last.Depth
	if last.Down {
		depth++
	}
	a.stack = a.stack[:depth]
}

// Records returns the recorded node events. The returned slice is owned by
// the AST and valid until the next parse.
func (a *AST) Records() []ASTRecord {
	return a.records
}

// Translate walks the recorded events in order, invoking each retained
// node's callback with PrePhase at its down record and PostPhase at its up
// record. A PrePhase return of SemSkip jumps past the node's subtree.
func (a *AST) Translate(userData interface{}) {
	for i := 0; i < len(a.records); i++ {
		r := &a.records[i]
		cb := a.callbacks[r.NodeID]
		if cb == nil {
			continue
		}
		if r.Down {
			if cb(PrePhase, a.input, r.Phrase, userData) == SemSkip {
				assert(r.Paired > i, "AST down record %d unpaired", i)
				i = r.Paired - 1
			}
		} else {
			cb(PostPhase, a.input, r.Phrase, userData)
		}
	}
}

// Dump renders the retained tree with one indented line per node, for
// debugging.
func (a *AST) Dump() string {
	var buf bytes.Buffer
	for i := range a.records {
		r := &a.records[i]
		if !r.Down {
			continue
		}
		fmt.Fprintf(&buf, "%s%s%s %q\n",
			strings.Repeat("  ", r.Depth), r.Name, r.Phrase,
			PhraseString(a.input, r.Phrase))
	}
	return buf.String()
}
