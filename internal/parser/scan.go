package parser

// Lexical helpers shared by every SQL rewriter in this package. All of them
// advance over quoted and commented regions by the same rules, so a @name
// inside a string literal is never a parameter and an alias inside a comment
// is never quoted.

// skipInert returns the index just past the lexical region opening at i: a
// single-quoted string (with '' escapes), a -- line comment, a /* */ block
// comment (non-nested), or a double-quoted identifier (with "" escapes).
// When s[i] opens none of these, it returns i unchanged. Unterminated
// regions extend to the end of the input.
func skipInert(s string, i int) int {
	switch {
	case s[i] == '\'':
		return skipQuoted(s, i, '\'')

	case s[i] == '"':
		return skipQuoted(s, i, '"')

	case s[i] == '-' && i+1 < len(s) && s[i+1] == '-':
		for j := i + 2; j < len(s); j++ {
			if s[j] == '\n' {
				return j
			}
		}
		return len(s)

	case s[i] == '/' && i+1 < len(s) && s[i+1] == '*':
		for j := i + 2; j+1 < len(s); j++ {
			if s[j] == '*' && s[j+1] == '/' {
				return j + 2
			}
		}
		return len(s)
	}
	return i
}

// skipQuoted consumes a region delimited by q, honoring doubled-delimiter
// escapes ('' and "").
func skipQuoted(s string, i int, q byte) int {
	j := i + 1
	for j < len(s) {
		if s[j] != q {
			j++
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j += 2
			continue
		}
		return j + 1
	}
	return len(s)
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// scanIdent returns the identifier starting at i and the index past it.
func scanIdent(s string, i int) (string, int) {
	j := i
	for j < len(s) && isIdentPart(s[j]) {
		j++
	}
	return s[i:j], j
}
