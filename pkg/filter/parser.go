package filter

import (
	"encoding/json"
	"fmt"
	"slices"

	qb "github.com/querydesk/querydesk/pkg/querybuilder"
)

// ParseError is the type of error returned by parse.
type ParseError struct {
	// Source column position where the error occurred.
	Position int
	// Error message.
	Message string
}

// Error returns a formatted version of the error, including the position.
func (e ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Position, e.Message)
}

type parser struct {
	lexer *lexer
	pos   int    // position of last token (tok)
	tok   Token  // last lexed token
	val   string // string value of last token (or "")
}

// Parse compiles a filter expression into a filter tree. The result is always
// a group; a lone comparison is wrapped in an "and" group. An empty or blank
// source yields an empty group.
//
// Parse uses panic/recover internally so recursive-descent methods can
// signal errors without threading (Node, error) through every call.
// ParseError panics are caught here and returned as normal errors;
// any other panic (bug) is re-raised.
func Parse(src []byte) (group *qb.Group, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(ParseError); ok {
				group = nil
				err = pe
			} else {
				panic(r)
			}
		}
	}()

	lexer := newLexer(src)
	p := parser{lexer: lexer}
	p.next()

	if p.matches(eol) {
		return qb.NewGroup(qb.And), nil
	}

	node := p.expression()
	p.expect(eol)

	if g, ok := node.(*qb.Group); ok {
		return g, nil
	}
	return qb.NewGroup(qb.And, node), nil
}

// expression parses a logic expression.
//
// term ( "or" term )*
func (p *parser) expression() qb.Node {
	nodes := []qb.Node{p.term()}

	for p.matches(or) {
		p.next()
		nodes = append(nodes, p.term())
	}

	if len(nodes) == 1 {
		return nodes[0]
	}
	return qb.NewGroup(qb.Or, nodes...)
}

// term parses an AND expression.
//
// factor ( "and" factor )*
func (p *parser) term() qb.Node {
	nodes := []qb.Node{p.factor()}

	for p.matches(and) {
		p.next()
		nodes = append(nodes, p.factor())
	}

	if len(nodes) == 1 {
		return nodes[0]
	}
	return qb.NewGroup(qb.And, nodes...)
}

// factor parses a single comparison or grouped expression. A grouped
// expression always becomes its own group so the brackets survive.
//
// comparison | "(" expression ")"
func (p *parser) factor() qb.Node {
	if p.matches(lbracket) {
		p.next()
		node := p.expression()
		p.expect(rbracket)
		p.next()
		if g, ok := node.(*qb.Group); ok {
			return g
		}
		return qb.NewGroup(qb.And, node)
	}

	return p.comparison()
}

// comparison parses a condition on one column.
//
// IDENTIFIER ( "=" | "!=" | "<>" | "<" | "<=" | ">" | ">=" | "~" | "^=" | "$=" ) value
// IDENTIFIER "in" "(" value ( "," value )* ")"
// IDENTIFIER "is" [ "not" ] "null"
func (p *parser) comparison() qb.Node {
	p.expect(identifier)
	field := p.val
	p.next()

	switch p.tok {
	case is:
		p.next()
		op := qb.OpNull
		if p.matches(not) {
			op = qb.OpNotNull
			p.next()
		}
		p.expect(null)
		p.next()
		return qb.Cond(field, op, nil)
	case in:
		p.next()
		return qb.Cond(field, qb.OpIn, p.list())
	}

	op, ok := p.tok.Operator()
	if !ok {
		panic(p.errorf("expected operator instead of %s", p.tok))
	}
	p.next()

	return qb.Cond(field, op, p.value())
}

// list parses a bracketed, comma separated list of values.
func (p *parser) list() []any {
	p.expect(lbracket)
	p.next()

	values := []any{p.value()}
	for p.matches(comma) {
		p.next()
		values = append(values, p.value())
	}

	p.expect(rbracket)
	p.next()
	return values
}

// value parses a value (string, number or boolean). Numbers keep their
// source text.
func (p *parser) value() any {
	var v any

	switch p.tok {
	case stringLit:
		v = p.val
	case number:
		v = json.Number(p.val)
	case boolean:
		v = p.val == "true"
	default:
		panic(p.errorf("expected value instead of %s", p.tok))
	}

	p.next()
	return v
}

// next parses the next token into p.tok.
func (p *parser) next() {
	p.pos, p.tok, p.val = p.lexer.Scan()
	if p.tok == illegal {
		panic(p.errorf("%s", p.val))
	}
}

// matches returns true if current token matches one of the given tokens.
func (p *parser) matches(tokens ...Token) bool {
	return slices.Contains(tokens, p.tok)
}

// expect panics if current token is not the expected token.
func (p *parser) expect(tok Token) {
	if p.tok != tok {
		panic(p.errorf("expected %s instead of %s", tok, p.tok))
	}
}

// errorf formats an error with the current position.
func (p *parser) errorf(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	return ParseError{p.pos, message}
}
