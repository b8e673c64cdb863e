// Package sabnfvm implements a virtual machine for SABNF grammars.
//
// SABNF (Superset Augmented Backus-Naur Form) extends ABNF with syntactic
// predicates (look-ahead and look-behind), back-references, user-defined
// terminals and anchors. The VM does not compile grammars: it executes
// pre-compiled grammar objects — flat opcode tables produced by an
// external generator or by the in-package Builder — against a sequence of
// integer code points, and reports a success/failure verdict, the length
// of the matched prefix, and optionally an abstract syntax tree, a bounded
// trace of the parse, and hit-count statistics.
//
// Evaluation is a single synchronous recursion over the opcode tree, one
// native frame per opcode. Each operator leaves exactly one of three final
// states behind: MATCH with the number of characters consumed, EMPTY, or
// NOMATCH. NOMATCH is the ordinary backtracking signal; fatal conditions
// (safety cap breaches, callback contract violations) abort the parse with
// an error instead.
//
// The operators now follow, with their behaviors explained both with prose
// and with Go-like pseudocode. "cursor" is the phrase index the operator
// was entered at.
//
// • ALT
//
//	for each child {
//	  evaluate child at cursor
//	  if state != NOMATCH { return }
//	}
//	return NOMATCH
//
// Ordered alternation: the first child that does not fail wins. Later
// alternatives are never consulted once one has matched, even if a longer
// overall parse would have resulted.
//
// • CAT
//
//	mark := ast.Len()
//	for each child {
//	  evaluate child at cursor
//	  if state == NOMATCH { ast.SetLen(mark); return NOMATCH }
//	  cursor += phraseLength
//	}
//	return EMPTY if nothing consumed, else MATCH
//
// Concatenation. A failing child rolls back every AST record the earlier
// children appended, so a failed concatenation is invisible in the AST.
// In look-behind context the children are evaluated last to first and the
// cursor moves right to left.
//
// • REP min, max
//
//	mark := ast.Len()
//	loop {
//	  if cursor at window end { break }
//	  evaluate child at cursor
//	  if state == NOMATCH or EMPTY { break }
//	  count, cursor advance
//	  if count == max { break }
//	}
//	if state == EMPTY or count >= min { succeed } else { ast.SetLen(mark); NOMATCH }
//
// Bounded repetition. An EMPTY child result ends the loop — a nullable
// child cannot loop forever — and counts as overall success regardless of
// min. The behind variant moves the cursor leftward and stops at input
// index 0.
//
// • RNM rule
//
// Rule invocation. Saves the parent back-reference frame and opens a fresh
// one, optionally records an AST node, runs the rule's optional callback
// in pre phase, recurses into the rule's opcode table at index 0 unless
// the callback short-circuited, runs the callback in post phase, then on
// the way out records the capture (if the rule is back-referenced and
// matched) in the caller's parent frame and the universal frame, and
// closes or rolls back the AST node.
//
// • UDT
//
// User-defined terminal: the registered callback decides the match. EMPTY
// from a UDT declared non-empty is a fatal error. AST and capture handling
// mirror RNM.
//
// • AND, NOT
//
//	push look-ahead frame; window end = full input
//	evaluate child at cursor
//	pop frame; restore window end
//	AND: MATCH/EMPTY -> EMPTY, NOMATCH -> NOMATCH
//	NOT: MATCH/EMPTY -> NOMATCH, NOMATCH -> EMPTY
//
// Zero-width look-ahead. The child may read past the active sub-window,
// up to the end of the full input. Nothing the child does is observable
// afterwards: no AST records, no captures, no cursor movement.
//
// • BKA, BKN
//
//	push look-behind frame
//	evaluate child at cursor (behind variants selected)
//	pop frame
//	BKA: MATCH/EMPTY -> EMPTY, NOMATCH -> NOMATCH
//	BKN: MATCH/EMPTY -> NOMATCH, NOMATCH -> EMPTY
//
// Zero-width look-behind: the child expresses a pattern that must match
// ending at the cursor, evaluated right to left.
//
// • TRG lo, hi
//
//	MATCH 1 iff input[cursor] in [lo, hi]
//
// Single-character range. The behind variant tests input[cursor-1].
//
// • TBS literal
//
//	MATCH len(literal) iff input[cursor:] begins with literal
//
// Exact, case-sensitive terminal string. The behind variant compares the
// characters immediately left of the cursor.
//
// • TLS literal
//
//	fold input characters from 'A'..'Z' to 'a'..'z', then as TBS
//
// ASCII case-insensitive terminal string; the literal is stored already
// folded. An empty TLS matches the empty string.
//
// • BKR name
//
//	phrase := frame[name]   // parent or universal frame, per mode
//	no phrase -> NOMATCH; empty phrase -> EMPTY
//	else compare phrase against input at cursor, MATCH its length
//
// Back-reference: matches whatever the named back-referenced rule or UDT
// last captured. Parent mode consults the current parent-rule activation's
// frame, universal mode the whole-parse frame. Comparison is exact or
// ASCII-folded per the opcode's case flag.
//
// • ABG, AEN
//
//	ABG: EMPTY iff cursor == window begin, else NOMATCH
//	AEN: EMPTY iff cursor == window end, else NOMATCH
//
// Anchors. Inside look-ahead the window end is the full input end.
package sabnfvm
