package sabnfvm

// State is the match state of an operator evaluation.
type State uint8

const (
	// ActiveState means the operator has not yet produced a result. It is
	// the state every operator starts in, and the state a rule callback
	// returns from its pre phase to say "proceed with the rule's opcodes".
	// No operator may return it.
	ActiveState State = iota

	// MatchState means the operator matched one or more characters.
	MatchState

	// EmptyState means the operator matched the empty string.
	EmptyState

	// NoMatchState means the operator did not match. This is the normal
	// backtracking signal, not an error.
	NoMatchState
)

var stateNames = map[State]string{
	ActiveState:  "ACTIVE",
	MatchState:   "MATCH",
	EmptyState:   "EMPTY",
	NoMatchState: "NOMATCH",
}

func (s State) String() string {
	if name, found := stateNames[s]; found {
		return name
	}
	return "State(?)"
}

// LookKind identifies the kind of look-around context an operator runs in.
type LookKind uint8

const (
	// LookNone means ordinary forward parsing, outside any look-around.
	LookNone LookKind = iota

	// LookAhead means execution is inside an AND or NOT subtree.
	LookAhead

	// LookBehind means execution is inside a BKA or BKN subtree; the
	// direction-aware operators run their right-to-left variants.
	LookBehind
)

var lookNames = map[LookKind]string{
	LookNone:   "NONE",
	LookAhead:  "AHEAD",
	LookBehind: "BEHIND",
}

func (k LookKind) String() string {
	if name, found := lookNames[k]; found {
		return name
	}
	return "LookKind(?)"
}

// lookFrame is one entry on the look-around stack. The top frame describes
// the current context: LookBehind selects the right-to-left operator
// variants, and any frame at all suppresses AST records, back-reference
// frame updates, and max-matched accounting.
type lookFrame struct {
	kind LookKind

	// anchor is the phrase index at which the look-around was entered.
	anchor int

	// savedEnd is the window end to restore when the frame is popped.
	// AND and NOT widen the window to the full input while they run.
	savedEnd int
}
