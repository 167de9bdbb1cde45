package filter

import qb "github.com/querydesk/querydesk/pkg/querybuilder"

type Token int

const (
	illegal Token = iota
	eol
	and
	or
	not
	in
	is
	null
	equal
	notEqual
	gte
	greater
	lte
	less
	contains
	beginsWith
	endsWith
	lbracket
	rbracket
	comma
	stringLit
	number
	identifier
	boolean
)

var tokenNames = map[Token]string{
	illegal:    "illegal",
	eol:        "eol",
	and:        "and",
	or:         "or",
	not:        "not",
	in:         "in",
	is:         "is",
	null:       "null",
	equal:      "equal",
	notEqual:   "notEqual",
	gte:        "gte",
	greater:    "greater",
	lte:        "lte",
	less:       "less",
	contains:   "contains",
	beginsWith: "beginsWith",
	endsWith:   "endsWith",
	lbracket:   "lbracket",
	rbracket:   "rbracket",
	comma:      "comma",
	stringLit:  "stringLit",
	number:     "number",
	identifier: "identifier",
	boolean:    "boolean",
}

func (t Token) String() string {
	return tokenNames[t]
}

var tokenOperators = map[Token]qb.Operator{
	equal:      qb.OpEqual,
	notEqual:   qb.OpNotEqual,
	gte:        qb.OpGreaterEq,
	greater:    qb.OpGreater,
	lte:        qb.OpLessEq,
	less:       qb.OpLess,
	contains:   qb.OpContains,
	beginsWith: qb.OpBeginsWith,
	endsWith:   qb.OpEndsWith,
}

// Operator returns the filter tree operator of a comparison token.
func (t Token) Operator() (qb.Operator, bool) {
	op, ok := tokenOperators[t]
	return op, ok
}
