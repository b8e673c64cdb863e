package sabnfvm

// Callback is the signature shared by rule and UDT callbacks. The engine
// fills in the CallbackData before the call; the callback communicates its
// result by mutating State and PhraseLength in place.
//
// Rule callbacks are optional and run in two phases. In the pre phase
// (before the rule's opcodes execute) State is ActiveState on entry;
// leaving it ActiveState lets the rule's opcodes run, while setting
// MatchState, EmptyState or NoMatchState short-circuits them and the rule
// behaves like a terminal. In the post phase State holds the rule's actual
// outcome and the callback may overwrite it; ActiveState is forbidden
// there.
//
// UDT callbacks are mandatory and run exactly once per UDT evaluation;
// they must leave a final match state.
type Callback func(d *CallbackData)

// CallbackData is the view of the parser state passed to rule and UDT
// callbacks.
type CallbackData struct {
	// State and PhraseLength are the callback's in/out result registers.
	State        State
	PhraseLength int

	// Input is the full input sequence. Read-only.
	Input []rune

	// PhraseIndex is the position at which the rule or UDT is being
	// matched.
	PhraseIndex int

	// RuleIndex is the invoked rule's index, or -1 for a UDT callback.
	// UDTIndex is the invoked UDT's index, or -1 for a rule callback.
	RuleIndex int
	UDTIndex  int

	// LookKind is the current look-around context. Read-only.
	LookKind LookKind

	// UserData is the value passed to Parse, unexamined by the engine.
	UserData interface{}

	exec *Execution
}

// EvaluateRule recurses into the evaluator for the given rule at the given
// phrase index, then stores the outcome in d.State and d.PhraseLength.
// It is an advanced hook for callbacks that need to match grammar
// fragments out of line.
func (d *CallbackData) EvaluateRule(ruleIndex, phraseIndex int) error {
	if ruleIndex < 0 || ruleIndex >= len(d.exec.G.Rules) {
		return setupError(ErrGrammar, "EvaluateRule: rule index %d out of range", ruleIndex)
	}
	ops := []Op{{Code: OpRNM, Index: ruleIndex}}
	if err := d.exec.execute(ops, 0, phraseIndex); err != nil {
		return err
	}
	d.State = d.exec.state
	d.PhraseLength = d.exec.phraseLength
	return nil
}

// EvaluateUDT is the UDT analog of EvaluateRule.
func (d *CallbackData) EvaluateUDT(udtIndex, phraseIndex int) error {
	if udtIndex < 0 || udtIndex >= len(d.exec.G.UDTs) {
		return setupError(ErrGrammar, "EvaluateUDT: udt index %d out of range", udtIndex)
	}
	udt := &d.exec.G.UDTs[udtIndex]
	ops := []Op{{Code: OpUDT, Index: udtIndex, Empty: udt.Empty}}
	if err := d.exec.execute(ops, 0, phraseIndex); err != nil {
		return err
	}
	d.State = d.exec.state
	d.PhraseLength = d.exec.phraseLength
	return nil
}
