package sabnfvm

// Execution is the mutable state of a parse-in-progress: the system data
// record, the input window, the look-around stack, the back-reference
// frames, and the attached diagnostics. One Execution serves exactly one
// call to Parser.Parse; it is never shared.
type Execution struct {
	// G is the grammar being parsed against.
	G *Grammar

	// I is the input sequence of code points. The engine does no
	// decoding; the caller supplies code points.
	I []rune

	// Begin and End delimit the active sub-window [Begin, End) of I.
	// AND and NOT temporarily widen End to len(I) while they run.
	Begin int
	End   int

	// state and phraseLength are the result registers of the most
	// recently completed operator.
	state        State
	phraseLength int

	// look is the look-around stack; the top frame describes the
	// current context.
	look []lookFrame

	// universal and parent are the back-reference frames, keyed by
	// lower-case rule/UDT name and allocated lazily on first capture.
	// parent is saved and replaced on every rule entry and restored on
	// exit. framesActive is false when no rule or UDT in the grammar is
	// back-referenced, which skips frame management entirely.
	framesActive bool
	universal    map[string]Phrase
	parent       map[string]Phrase

	// ruleCallbacks and udtCallbacks are parallel to G.Rules and G.UDTs.
	// Rule entries may be nil; UDT entries never are.
	ruleCallbacks []Callback
	udtCallbacks  []Callback

	// userData is handed to every callback, unexamined.
	userData interface{}

	ast   *AST
	trace *Trace
	stats *Stats

	// Safety caps; zero means unbounded.
	maxNodeHits  int
	maxTreeDepth int

	nodeHits     int
	treeDepth    int
	deepestDepth int
	maxMatched   int
}

func (x *Execution) inLookAround() bool {
	return len(x.look) > 0
}

func (x *Execution) lookKind() LookKind {
	if len(x.look) == 0 {
		return LookNone
	}
	return x.look[len(x.look)-1].kind
}

func (x *Execution) lookAnchor() int {
	if len(x.look) == 0 {
		return 0
	}
	return x.look[len(x.look)-1].anchor
}

func (x *Execution) setMatched(n int) {
	if n == 0 {
		x.state = EmptyState
		x.phraseLength = 0
	} else {
		x.state = MatchState
		x.phraseLength = n
	}
}

func (x *Execution) setNoMatch() {
	x.state = NoMatchState
	x.phraseLength = 0
}

func (x *Execution) astLen() int {
	if x.ast == nil {
		return 0
	}
	return x.ast.Len()
}

func (x *Execution) astTruncate(n int) {
	if x.ast != nil {
		x.ast.SetLen(n)
	}
}

// opName returns the rule, UDT or back-reference target name of a named
// opcode, "" otherwise.
func (x *Execution) opName(op *Op) string {
	switch op.Code {
	case OpRNM:
		return x.G.Rules[op.Index].Name
	case OpUDT:
		return x.G.UDTs[op.Index].Name
	case OpBKR:
		if name, found := x.G.nodeName(op.Index); found {
			return name
		}
	}
	return ""
}

// opError wraps a fatal condition with the opcode's coordinates.
func (x *Execution) opError(err error, op *Op, phraseIndex int) error {
	return &OpError{Err: err, Code: op.Code, Name: x.opName(op), PhraseIndex: phraseIndex}
}

// execute is the evaluator's single entry point: it dispatches the opcode
// at ops[opIndex] against the input at phraseIndex. On return the result
// registers hold a final match state; a non-nil error aborts the parse.
func (x *Execution) execute(ops []Op, opIndex, phraseIndex int) error {
	op := &ops[opIndex]

	x.nodeHits++
	if x.maxNodeHits > 0 && x.nodeHits > x.maxNodeHits {
		return x.opError(ErrMaxNodeHits, op, phraseIndex)
	}
	x.treeDepth++
	defer func() { x.treeDepth-- }()
	if x.treeDepth > x.deepestDepth {
		x.deepestDepth = x.treeDepth
	}
	if x.maxTreeDepth > 0 && x.treeDepth > x.maxTreeDepth {
		return x.opError(ErrMaxTreeDepth, op, phraseIndex)
	}

	x.state = ActiveState
	x.phraseLength = 0

	name := x.opName(op)
	if x.trace != nil {
		x.trace.down(op, name, x.treeDepth, phraseIndex, x.lookKind(), x.lookAnchor())
	}

	behind := x.lookKind() == LookBehind
	var err error
	switch op.Code {
	case OpALT:
		err = x.opALT(ops, opIndex, phraseIndex)
	case OpCAT:
		if behind {
			err = x.opCATBehind(ops, opIndex, phraseIndex)
		} else {
			err = x.opCAT(ops, opIndex, phraseIndex)
		}
	case OpREP:
		if behind {
			err = x.opREPBehind(ops, opIndex, phraseIndex)
		} else {
			err = x.opREP(ops, opIndex, phraseIndex)
		}
	case OpRNM:
		err = x.opRNM(ops, opIndex, phraseIndex)
	case OpUDT:
		err = x.opUDT(ops, opIndex, phraseIndex)
	case OpAND:
		err = x.opAND(ops, opIndex, phraseIndex)
	case OpNOT:
		err = x.opNOT(ops, opIndex, phraseIndex)
	case OpTRG:
		if behind {
			x.opTRGBehind(op, phraseIndex)
		} else {
			x.opTRG(op, phraseIndex)
		}
	case OpTBS:
		if behind {
			x.opTBSBehind(op, phraseIndex)
		} else {
			x.opTBS(op, phraseIndex)
		}
	case OpTLS:
		if behind {
			x.opTLSBehind(op, phraseIndex)
		} else {
			x.opTLS(op, phraseIndex)
		}
	case OpBKR:
		if behind {
			x.opBKRBehind(op, phraseIndex)
		} else {
			x.opBKR(op, phraseIndex)
		}
	case OpBKA:
		err = x.opBKA(ops, opIndex, phraseIndex)
	case OpBKN:
		err = x.opBKN(ops, opIndex, phraseIndex)
	case OpABG:
		x.opABG(phraseIndex)
	case OpAEN:
		x.opAEN(phraseIndex)
	default:
		assert(false, "unknown opcode %d", op.Code)
	}
	if err != nil {
		return err
	}

	assert(x.state != ActiveState, "%s returned ACTIVE", op.Code)
	assert(x.phraseLength >= 0, "%s returned phrase length %d", op.Code, x.phraseLength)
	assert(x.state == MatchState || x.phraseLength == 0,
		"%s returned %s with phrase length %d", op.Code, x.state, x.phraseLength)

	if !x.inLookAround() {
		if n := phraseIndex + x.phraseLength; n > x.maxMatched {
			x.maxMatched = n
		}
	}
	if x.trace != nil {
		x.trace.up(op, name, x.treeDepth, x.state,
			Phrase{Index: phraseIndex, Length: x.phraseLength}, x.lookKind(), x.lookAnchor())
	}
	if x.stats != nil {
		x.stats.collect(op, x.state)
	}
	return nil
}

// opALT tries each child in order at the same phrase index and keeps the
// first result that is not NOMATCH.
func (x *Execution) opALT(ops []Op, opIndex, phraseIndex int) error {
	op := &ops[opIndex]
	x.setNoMatch()
	for _, c := range op.Children {
		if err := x.execute(ops, c, phraseIndex); err != nil {
			return err
		}
		if x.state != NoMatchState {
			return nil
		}
	}
	return nil
}

// opCAT matches each child left to right, advancing the cursor by each
// child's phrase length. Any child NOMATCH fails the whole concatenation
// and rolls back the AST records it accumulated.
func (x *Execution) opCAT(ops []Op, opIndex, phraseIndex int) error {
	op := &ops[opIndex]
	astLen := x.astLen()
	cursor := phraseIndex
	total := 0
	matched := true
	for _, c := range op.Children {
		if err := x.execute(ops, c, cursor); err != nil {
			return err
		}
		if x.state == NoMatchState {
			matched = false
			break
		}
		total += x.phraseLength
		cursor += x.phraseLength
	}
	if matched {
		x.setMatched(total)
	} else {
		x.setNoMatch()
		x.astTruncate(astLen)
	}
	return nil
}

// opREP matches the child opcode (at opIndex+1) repeatedly. An EMPTY child
// result ends the loop immediately so that nullable children cannot loop
// forever, and counts as success regardless of the minimum.
func (x *Execution) opREP(ops []Op, opIndex, phraseIndex int) error {
	op := &ops[opIndex]
	astLen := x.astLen()
	cursor := phraseIndex
	count := 0
	total := 0
	for {
		if cursor >= x.End {
			break
		}
		if err := x.execute(ops, opIndex+1, cursor); err != nil {
			return err
		}
		if x.state == NoMatchState || x.state == EmptyState {
			break
		}
		count++
		total += x.phraseLength
		cursor += x.phraseLength
		if count == op.Max {
			break
		}
	}
	if x.state == EmptyState || count >= op.Min {
		x.setMatched(total)
	} else {
		x.setNoMatch()
		x.astTruncate(astLen)
	}
	return nil
}

// opRNM invokes a rule: a fresh parent back-reference frame, an optional
// AST node, the rule's optional callback in pre and post phase, and the
// rule's opcode table entered at index 0.
func (x *Execution) opRNM(ops []Op, opIndex, phraseIndex int) error {
	op := &ops[opIndex]
	rule := &x.G.Rules[op.Index]
	notLook := !x.inLookAround()

	astDefined := notLook && x.ast != nil && x.ast.nodeDefined(op.Index)
	var astLen int
	if astDefined {
		astLen = x.ast.Len()
		x.ast.Down(op.Index, rule.Name)
	}

	if notLook && x.framesActive {
		saved := x.parent
		x.parent = nil
		defer func() {
			x.parent = saved
			if rule.IsBackRef && (x.state == MatchState || x.state == EmptyState) {
				x.setBackRef(rule.Lower, Phrase{Index: phraseIndex, Length: x.phraseLength})
			}
		}()
	}

	cb := x.ruleCallbacks[op.Index]
	if cb == nil {
		if err := x.execute(rule.Ops, 0, phraseIndex); err != nil {
			return err
		}
	} else {
		d := &CallbackData{
			State:       ActiveState,
			Input:       x.I,
			PhraseIndex: phraseIndex,
			RuleIndex:   op.Index,
			UDTIndex:    -1,
			LookKind:    x.lookKind(),
			UserData:    x.userData,
			exec:        x,
		}
		cb(d)
		if err := x.validateCallback(d, op, phraseIndex, true); err != nil {
			return err
		}
		if d.State == ActiveState {
			if err := x.execute(rule.Ops, 0, phraseIndex); err != nil {
				return err
			}
			d.State = x.state
			d.PhraseLength = x.phraseLength
			cb(d)
			if err := x.validateCallback(d, op, phraseIndex, false); err != nil {
				return err
			}
		}
		x.state = d.State
		x.phraseLength = d.PhraseLength
	}

	if astDefined {
		if x.state == NoMatchState {
			x.ast.SetLen(astLen)
		} else {
			x.ast.Up(op.Index, rule.Name, Phrase{Index: phraseIndex, Length: x.phraseLength})
		}
	}
	return nil
}

// opUDT calls the user-defined terminal's callback and adopts its result.
// AST and back-reference handling mirror opRNM.
func (x *Execution) opUDT(ops []Op, opIndex, phraseIndex int) error {
	op := &ops[opIndex]
	udt := &x.G.UDTs[op.Index]
	notLook := !x.inLookAround()
	nodeID := len(x.G.Rules) + op.Index

	astDefined := notLook && x.ast != nil && x.ast.nodeDefined(nodeID)
	var astLen int
	if astDefined {
		astLen = x.ast.Len()
		x.ast.Down(nodeID, udt.Name)
	}

	d := &CallbackData{
		State:       ActiveState,
		Input:       x.I,
		PhraseIndex: phraseIndex,
		RuleIndex:   -1,
		UDTIndex:    op.Index,
		LookKind:    x.lookKind(),
		UserData:    x.userData,
		exec:        x,
	}
	x.udtCallbacks[op.Index](d)

	if d.PhraseLength > x.End-phraseIndex {
		return x.opError(ErrCallbackLength, op, phraseIndex)
	}
	switch d.State {
	case EmptyState:
		if !udt.Empty {
			return x.opError(ErrUDTEmpty, op, phraseIndex)
		}
		d.PhraseLength = 0
	case MatchState:
		if d.PhraseLength == 0 {
			if !udt.Empty {
				return x.opError(ErrUDTEmpty, op, phraseIndex)
			}
			d.State = EmptyState
		}
	case NoMatchState:
		d.PhraseLength = 0
	default:
		return x.opError(ErrCallbackState, op, phraseIndex)
	}
	x.state = d.State
	x.phraseLength = d.PhraseLength

	if notLook && udt.IsBackRef && (x.state == MatchState || x.state == EmptyState) {
		x.setBackRef(udt.Lower, Phrase{Index: phraseIndex, Length: x.phraseLength})
	}

	if astDefined {
		if x.state == NoMatchState {
			x.ast.SetLen(astLen)
		} else {
			x.ast.Up(nodeID, udt.Name, Phrase{Index: phraseIndex, Length: x.phraseLength})
		}
	}
	return nil
}

// setBackRef records a capture in both frames; BKR selects by its mode.
func (x *Execution) setBackRef(lower string, p Phrase) {
	if x.parent == nil {
		x.parent = make(map[string]Phrase)
	}
	x.parent[lower] = p
	if x.universal == nil {
		x.universal = make(map[string]Phrase)
	}
	x.universal[lower] = p
}

// validateCallback enforces the rule callback contract after each phase.
func (x *Execution) validateCallback(d *CallbackData, op *Op, phraseIndex int, pre bool) error {
	if d.PhraseLength > x.End-phraseIndex {
		return x.opError(ErrCallbackLength, op, phraseIndex)
	}
	switch d.State {
	case ActiveState:
		if !pre {
			return x.opError(ErrCallbackActive, op, phraseIndex)
		}
	case EmptyState:
		d.PhraseLength = 0
	case MatchState:
		if d.PhraseLength == 0 {
			d.State = EmptyState
		}
	case NoMatchState:
		d.PhraseLength = 0
	default:
		return x.opError(ErrCallbackState, op, phraseIndex)
	}
	return nil
}

// lookAhead evaluates the child opcode inside a pushed look-ahead frame,
// with the window end widened to the full input.
func (x *Execution) lookAhead(ops []Op, opIndex, phraseIndex int) error {
	x.look = append(x.look, lookFrame{kind: LookAhead, anchor: phraseIndex, savedEnd: x.End})
	x.End = len(x.I)
	defer func() {
		top := len(x.look) - 1
		x.End = x.look[top].savedEnd
		x.look = x.look[:top]
	}()
	return x.execute(ops, opIndex+1, phraseIndex)
}

// lookBehind evaluates the child opcode inside a pushed look-behind frame;
// the direction-aware operators run right to left until the frame pops.
func (x *Execution) lookBehind(ops []Op, opIndex, phraseIndex int) error {
	x.look = append(x.look, lookFrame{kind: LookBehind, anchor: phraseIndex, savedEnd: x.End})
	defer func() {
		top := len(x.look) - 1
		x.End = x.look[top].savedEnd
		x.look = x.look[:top]
	}()
	return x.execute(ops, opIndex+1, phraseIndex)
}

func (x *Execution) opAND(ops []Op, opIndex, phraseIndex int) error {
	if err := x.lookAhead(ops, opIndex, phraseIndex); err != nil {
		return err
	}
	if x.state == NoMatchState {
		x.setNoMatch()
	} else {
		x.state = EmptyState
		x.phraseLength = 0
	}
	return nil
}

func (x *Execution) opNOT(ops []Op, opIndex, phraseIndex int) error {
	if err := x.lookAhead(ops, opIndex, phraseIndex); err != nil {
		return err
	}
	if x.state == NoMatchState {
		x.state = EmptyState
		x.phraseLength = 0
	} else {
		x.setNoMatch()
	}
	return nil
}

func (x *Execution) opBKA(ops []Op, opIndex, phraseIndex int) error {
	if err := x.lookBehind(ops, opIndex, phraseIndex); err != nil {
		return err
	}
	if x.state == NoMatchState {
		x.setNoMatch()
	} else {
		x.state = EmptyState
		x.phraseLength = 0
	}
	return nil
}

func (x *Execution) opBKN(ops []Op, opIndex, phraseIndex int) error {
	if err := x.lookBehind(ops, opIndex, phraseIndex); err != nil {
		return err
	}
	if x.state == NoMatchState {
		x.state = EmptyState
		x.phraseLength = 0
	} else {
		x.setNoMatch()
	}
	return nil
}

// opTRG matches one character in the inclusive range [Lo, Hi].
func (x *Execution) opTRG(op *Op, phraseIndex int) {
	if phraseIndex < x.End {
		if c := x.I[phraseIndex]; c >= op.Lo && c <= op.Hi {
			x.setMatched(1)
			return
		}
	}
	x.setNoMatch()
}

// opTBS matches the literal exactly, code point for code point.
func (x *Execution) opTBS(op *Op, phraseIndex int) {
	n := len(op.Chars)
	if phraseIndex+n <= x.End && runesEqual(op.Chars, x.I[phraseIndex:phraseIndex+n], false) {
		x.setMatched(n)
		return
	}
	x.setNoMatch()
}

// opTLS matches the literal with ASCII case folding. An empty TLS matches
// the empty string.
func (x *Execution) opTLS(op *Op, phraseIndex int) {
	n := len(op.Chars)
	if n == 0 {
		x.state = EmptyState
		x.phraseLength = 0
		return
	}
	if phraseIndex+n <= x.End && runesEqual(op.Chars, x.I[phraseIndex:phraseIndex+n], true) {
		x.setMatched(n)
		return
	}
	x.setNoMatch()
}

// bkrPhrase looks up the saved capture a BKR refers to.
func (x *Execution) bkrPhrase(op *Op) (Phrase, bool) {
	lower, found := x.G.nodeLower(op.Index)
	assert(found, "BKR target %d out of range", op.Index)
	var frame map[string]Phrase
	if op.Mode == ModeParent {
		frame = x.parent
	} else {
		frame = x.universal
	}
	if frame == nil {
		return Phrase{}, false
	}
	p, ok := frame[lower]
	return p, ok
}

// opBKR matches the back-referenced capture against the input at the
// cursor. A missing capture is NOMATCH; a zero-length capture is EMPTY.
func (x *Execution) opBKR(op *Op, phraseIndex int) {
	p, ok := x.bkrPhrase(op)
	if !ok {
		x.setNoMatch()
		return
	}
	if p.Length == 0 {
		x.state = EmptyState
		x.phraseLength = 0
		return
	}
	saved := x.I[p.Index : p.Index+p.Length]
	if phraseIndex+p.Length <= x.End &&
		runesEqual(saved, x.I[phraseIndex:phraseIndex+p.Length], op.Case == CaseInsensitive) {
		x.setMatched(p.Length)
		return
	}
	x.setNoMatch()
}

// opABG matches the empty string at the window start.
func (x *Execution) opABG(phraseIndex int) {
	if phraseIndex == x.Begin {
		x.state = EmptyState
		x.phraseLength = 0
	} else {
		x.setNoMatch()
	}
}

// opAEN matches the empty string at the window end.
func (x *Execution) opAEN(phraseIndex int) {
	if phraseIndex == x.End {
		x.state = EmptyState
		x.phraseLength = 0
	} else {
		x.setNoMatch()
	}
}
