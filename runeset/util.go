package runeset

import (
	"bytes"
	"fmt"
	"unicode"
)

func writeRuneLiteral(buf *bytes.Buffer, r rune) {
	if r == '\\' || r == '\'' {
		buf.WriteByte('\'')
		buf.WriteByte('\\')
		buf.WriteRune(r)
		buf.WriteByte('\'')
	} else if unicode.IsPrint(r) {
		buf.WriteByte('\'')
		buf.WriteRune(r)
		buf.WriteByte('\'')
	} else {
		fmt.Fprintf(buf, "$%04x", r)
	}
}

func genericString(m Matcher) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true
	m.ForEachRange(func(lo, hi rune) {
		if !first {
			buf.WriteByte(' ')
		}
		first = false
		writeRuneLiteral(&buf, lo)
		if hi != lo {
			buf.WriteByte('-')
			writeRuneLiteral(&buf, hi)
		}
	})
	buf.WriteByte(']')
	return buf.String()
}
