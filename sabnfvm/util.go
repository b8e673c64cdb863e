package sabnfvm

import (
	"bytes"
	"errors"
	"fmt"
)

// assert panics if cond is false.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		var buf bytes.Buffer
		buf.WriteString("assertion failed: ")
		fmt.Fprintf(&buf, format, args...)
		panic(errors.New(buf.String()))
	}
}

// fold maps 'A'..'Z' to 'a'..'z' and leaves every other code point alone.
// TLS literals and case-insensitive BKR comparisons fold ASCII only.
func fold(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + 32
	}
	return r
}

// foldRunes returns s with ASCII upper case folded to lower case.
func foldRunes(s []rune) []rune {
	out := make([]rune, len(s))
	for i, r := range s {
		out[i] = fold(r)
	}
	return out
}

// runesEqual reports whether a and b hold the same code points, folding
// ASCII case on both sides when insensitive.
func runesEqual(a, b []rune, insensitive bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if insensitive {
			x, y = fold(x), fold(y)
		}
		if x != y {
			return false
		}
	}
	return true
}

// Phrase identifies a sub-sequence of the input: Index is the first
// character, Length the number of characters.
type Phrase struct {
	Index  int
	Length int
}

func (p Phrase) String() string {
	return fmt.Sprintf("(%d,%d)", p.Index, p.Length)
}

// PhraseString extracts a matched phrase from a code point sequence as a
// Go string.
func PhraseString(input []rune, p Phrase) string {
	return string(input[p.Index : p.Index+p.Length])
}
