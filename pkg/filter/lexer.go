package filter

import "strings"

type lexer struct {
	src     []byte
	ch      byte
	offset  int
	pos     int
	nextPos int
}

func newLexer(src []byte) *lexer {
	l := &lexer{src: src}
	l.next()

	return l
}

func (l *lexer) Scan() (int, Token, string) {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.next()
	}

	if l.ch == 0 {
		return l.pos, eol, ""
	}

	tok := illegal
	pos := l.pos
	val := ""

	ch := l.ch
	l.next()

	// keywords and identifiers
	if isIdentifierStart(ch) {
		start := l.tokenStart()
		dots := 0
		for isIdentifierStart(l.ch) || isDigit(l.ch) || isDot(l.ch) {
			if isDot(l.ch) {
				dots++
			}
			l.next()
		}
		name := string(l.src[start:l.tokenEnd()])
		if dots > 1 || strings.HasSuffix(name, ".") {
			return pos, illegal, "malformed column reference"
		}
		switch strings.ToLower(name) {
		case "and":
			tok = and
		case "or":
			tok = or
		case "not":
			tok = not
		case "in":
			tok = in
		case "is":
			tok = is
		case "null":
			tok = null
		case "true", "false":
			tok = boolean
			val = strings.ToLower(name)
		default:
			tok = identifier
			val = name
		}
		return pos, tok, val
	}

	if isDigit(ch) || (ch == '-' && isDigit(l.ch)) {
		start := l.tokenStart()
		dots := 0
		for isDigit(l.ch) || isDot(l.ch) {
			if isDot(l.ch) {
				dots++
			}
			l.next()
		}
		if dots > 1 {
			return pos, illegal, "malformed number"
		}
		return pos, number, string(l.src[start:l.tokenEnd()])
	}

	switch ch {
	case '(':
		tok = lbracket
	case ')':
		tok = rbracket
	case ',':
		tok = comma
	case '=':
		tok = equal
	case '~':
		tok = contains
	case '^':
		if l.ch != '=' {
			return pos, illegal, "expected ^="
		}
		tok = beginsWith
		l.next()
	case '$':
		if l.ch != '=' {
			return pos, illegal, "expected $="
		}
		tok = endsWith
		l.next()
	case '!':
		if l.ch != '=' {
			return pos, illegal, "expected !="
		}
		tok = notEqual
		l.next()
	case '<':
		switch l.ch {
		case '=':
			tok = lte
			l.next()
		case '>':
			tok = notEqual
			l.next()
		default:
			tok = less
		}
	case '>':
		switch l.ch {
		case '=':
			tok = gte
			l.next()
		default:
			tok = greater
		}
	case '"', '\'':
		chars := make([]byte, 0, 32)
		for {
			if l.ch == 0 {
				return pos, illegal, "unclosed string"
			}
			if l.ch == ch {
				// a doubled quote stands for itself
				if l.offset < len(l.src) && l.src[l.offset] == ch {
					chars = append(chars, ch)
					l.next()
					l.next()
					continue
				}
				break
			}
			chars = append(chars, l.ch)
			l.next()
		}
		l.next()
		tok = stringLit
		val = string(chars)
	default:
		tok = illegal
		val = "unexpected char"
	}

	return pos, tok, val
}

// Load the next character into l.ch (or 0 on end of input) and update line position.
func (l *lexer) next() {
	l.pos = l.nextPos
	if l.offset >= len(l.src) {
		// For last character, move offset 1 past the end as it
		// simplifies offset calculations in NAME and NUMBER
		if l.ch != 0 {
			l.ch = 0
			l.offset++
			l.nextPos++
		}
		return
	}
	ch := l.src[l.offset]
	l.ch = ch
	l.nextPos++
	l.offset++
}

func isIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDot(ch byte) bool {
	return ch == '.'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// tokenStart returns the start offset of the current token.
func (l *lexer) tokenStart() int {
	return l.offset - 2
}

// tokenEnd returns the end offset of the current token.
func (l *lexer) tokenEnd() int {
	return l.offset - 1
}
