package querybuilder

import (
	"strconv"
	"strings"
)

// Expr is a renderable SQL fragment.
type Expr interface {
	SQL() string
}

// QuoteIdent wraps an identifier in double quotes, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps a text value in single quotes, doubling embedded quotes.
func QuoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// Ident is a user supplied table or column name.
type Ident string

func (i Ident) SQL() string {
	return QuoteIdent(string(i))
}

// Alias is a generated table alias (main, j0, j1...). Aliases are produced by
// the builder only and are rendered bare.
type Alias string

func (a Alias) SQL() string {
	return string(a)
}

const mainAlias Alias = "main"

func joinAlias(i int) Alias {
	return Alias("j" + strconv.Itoa(i))
}

// ColumnRef is qualifier."column".
type ColumnRef struct {
	Qualifier Expr
	Column    Ident
}

func (c ColumnRef) SQL() string {
	return c.Qualifier.SQL() + "." + c.Column.SQL()
}

// Star is qualifier.*.
type Star struct {
	Qualifier Alias
}

func (s Star) SQL() string {
	return s.Qualifier.SQL() + ".*"
}

// TextLit is an escaped text literal.
type TextLit string

func (t TextLit) SQL() string {
	return QuoteLiteral(string(t))
}

// NumLit is a numeric literal. It can only be obtained through classifyValue,
// which guarantees its content is a plain decimal number.
type NumLit struct {
	text string
}

func (n NumLit) SQL() string {
	return n.text
}

// Null is the NULL literal.
type Null struct{}

func (Null) SQL() string {
	return "NULL"
}

// Cast is CAST(expr AS type).
type Cast struct {
	Expr Expr
	Type string
}

func (c Cast) SQL() string {
	return "CAST(" + c.Expr.SQL() + " AS " + c.Type + ")"
}

// Func is a function call with a fixed name.
type Func struct {
	Name string
	Args []Expr
}

func (f Func) SQL() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.SQL()
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")"
}

// Normalized folds accents and case: unaccent(lower(expr)).
type Normalized struct {
	Expr Expr
}

func (n Normalized) SQL() string {
	return Func{Name: "unaccent", Args: []Expr{Func{Name: "lower", Args: []Expr{n.Expr}}}}.SQL()
}

// normalizeColumn casts the column to text before folding it so the
// normalization also applies to non-text columns.
func normalizeColumn(col Expr) Expr {
	return Normalized{Expr: Cast{Expr: col, Type: "TEXT"}}
}

type comparator string

const (
	cmpEq   comparator = "="
	cmpNe   comparator = "!="
	cmpLt   comparator = "<"
	cmpGt   comparator = ">"
	cmpLe   comparator = "<="
	cmpGe   comparator = ">="
	cmpLike comparator = "LIKE"
)

// Compare is left op right.
type Compare struct {
	Left  Expr
	Op    comparator
	Right Expr
}

func (c Compare) SQL() string {
	return c.Left.SQL() + " " + string(c.Op) + " " + c.Right.SQL()
}

// IsNull is expr IS [NOT] NULL.
type IsNull struct {
	Expr Expr
	Not  bool
}

func (n IsNull) SQL() string {
	if n.Not {
		return n.Expr.SQL() + " IS NOT NULL"
	}
	return n.Expr.SQL() + " IS NULL"
}

// InList is expr IN (a, b, ...).
type InList struct {
	Expr  Expr
	Items []Expr
}

func (l InList) SQL() string {
	items := make([]string, len(l.Items))
	for i, it := range l.Items {
		items[i] = it.SQL()
	}
	return l.Expr.SQL() + " IN (" + strings.Join(items, ", ") + ")"
}

// Paren wraps an expression in parentheses.
type Paren struct {
	Expr Expr
}

func (p Paren) SQL() string {
	return "(" + p.Expr.SQL() + ")"
}

// Junction joins expressions with AND or OR. An empty junction renders as "".
type Junction struct {
	Combinator Combinator
	Parts      []Expr
}

func (j Junction) SQL() string {
	parts := make([]string, 0, len(j.Parts))
	for _, p := range j.Parts {
		if s := p.SQL(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "+j.Combinator.Sql()+" ")
}

// Projection is one SELECT list entry with an optional output name.
type Projection struct {
	Expr Expr
	As   Ident
}

func (p Projection) SQL() string {
	if p.As == "" {
		return p.Expr.SQL()
	}
	return p.Expr.SQL() + " AS " + p.As.SQL()
}

// JoinClause is TYPE JOIN "table" AS alias ON cond.
type JoinClause struct {
	Type  JoinType
	Table Ident
	Alias Alias
	On    Expr
}

func (j JoinClause) SQL() string {
	return j.Type.Sql() + " JOIN " + j.Table.SQL() + " AS " + j.Alias.SQL() + " ON " + j.On.SQL()
}

// SelectStmt is the compiled statement.
type SelectStmt struct {
	Columns   []Projection
	From      Ident
	FromAlias Alias
	Joins     []JoinClause
	Where     Expr
}

func (s SelectStmt) SQL() string {
	var b strings.Builder

	b.WriteString("SELECT ")
	for i, c := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.SQL())
	}

	b.WriteString(" FROM ")
	b.WriteString(s.From.SQL())
	b.WriteString(" AS ")
	b.WriteString(s.FromAlias.SQL())

	for _, j := range s.Joins {
		b.WriteString(" ")
		b.WriteString(j.SQL())
	}

	if s.Where != nil {
		if where := s.Where.SQL(); where != "" {
			b.WriteString(" WHERE ")
			b.WriteString(where)
		}
	}

	return b.String()
}
