package sabnfvm

// Right-to-left operator variants, selected while the top of the
// look-around stack is a LookBehind frame. The cursor runs from the BKA or
// BKN anchor toward input index 0, and every match consumes characters to
// the left of the cursor.

// opCATBehind walks the children last to first, moving the cursor backward
// by each matched length.
func (x *Execution) opCATBehind(ops []Op, opIndex, phraseIndex int) error {
	op := &ops[opIndex]
	astLen := x.astLen()
	cursor := phraseIndex
	total := 0
	matched := true
	for i := len(op.Children) - 1; i >= 0; i-- {
		if err := x.execute(ops, op.Children[i], cursor); err != nil {
			return err
		}
		if x.state == NoMatchState {
			matched = false
			break
		}
		total += x.phraseLength
		cursor -= x.phraseLength
	}
	if matched {
		x.setMatched(total)
	} else {
		x.setNoMatch()
		x.astTruncate(astLen)
	}
	return nil
}

// opREPBehind repeats the child leftward until it fails, matches empty, or
// the cursor reaches input index 0.
func (x *Execution) opREPBehind(ops []Op, opIndex, phraseIndex int) error {
	op := &ops[opIndex]
	astLen := x.astLen()
	cursor := phraseIndex
	count := 0
	total := 0
	for {
		if cursor <= 0 {
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
		cursor -= x.phraseLength
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

// opTRGBehind matches one character immediately left of the cursor.
func (x *Execution) opTRGBehind(op *Op, phraseIndex int) {
	if phraseIndex > 0 {
		if c := x.I[phraseIndex-1]; c >= op.Lo && c <= op.Hi {
			x.setMatched(1)
			return
		}
	}
	x.setNoMatch()
}

// opTBSBehind matches the literal ending at the cursor.
func (x *Execution) opTBSBehind(op *Op, phraseIndex int) {
	n := len(op.Chars)
	if beg := phraseIndex - n; beg >= 0 && runesEqual(op.Chars, x.I[beg:phraseIndex], false) {
		x.setMatched(n)
		return
	}
	x.setNoMatch()
}

// opTLSBehind matches the case-folded literal ending at the cursor.
func (x *Execution) opTLSBehind(op *Op, phraseIndex int) {
	n := len(op.Chars)
	if n == 0 {
		x.state = EmptyState
		x.phraseLength = 0
		return
	}
	if beg := phraseIndex - n; beg >= 0 && runesEqual(op.Chars, x.I[beg:phraseIndex], true) {
		x.setMatched(n)
		return
	}
	x.setNoMatch()
}

// opBKRBehind matches the back-referenced capture ending at the cursor.
// A capture that would have to start before input index 0 is NOMATCH.
func (x *Execution) opBKRBehind(op *Op, phraseIndex int) {
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
	if beg := phraseIndex - p.Length; beg >= 0 &&
		runesEqual(saved, x.I[beg:phraseIndex], op.Case == CaseInsensitive) {
		x.setMatched(p.Length)
		return
	}
	x.setNoMatch()
}
