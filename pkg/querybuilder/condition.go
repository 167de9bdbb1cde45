package querybuilder

import "strings"

// scope resolves table names to the aliases used in the statement.
type scope struct {
	table string
	joins []Join
}

func newScope(table string, joins []Join) scope {
	return scope{table: table, joins: joins}
}

// qualifier returns the alias for table: main for the main table, jN for the
// first join targeting table. A table that matches neither is rendered as a
// quoted identifier so the database reports the missing FROM entry.
func (s scope) qualifier(table string) Expr {
	if table == s.table {
		return mainAlias
	}
	for i, j := range s.joins {
		if j.TargetTable == table {
			return joinAlias(i)
		}
	}
	return Ident(table)
}

// column resolves a field reference, bare or written as table.column.
func (s scope) column(field string) ColumnRef {
	if table, col, ok := strings.Cut(field, "."); ok {
		return ColumnRef{Qualifier: s.qualifier(table), Column: Ident(col)}
	}
	return ColumnRef{Qualifier: mainAlias, Column: Ident(field)}
}

// compileCondition turns one rule into a boolean expression.
func (s scope) compileCondition(c *Condition) Expr {
	field := s.column(c.Field)

	switch c.Operator {
	case OpNull:
		return IsNull{Expr: field}
	case OpNotNull:
		return IsNull{Expr: field, Not: true}
	case OpContains:
		return pattern(field, "%"+valueText(c.Value)+"%")
	case OpBeginsWith:
		return pattern(field, valueText(c.Value)+"%")
	case OpEndsWith:
		return pattern(field, "%"+valueText(c.Value))
	case OpLess, OpGreater, OpLessEq, OpGreaterEq:
		return Compare{Left: field, Op: comparator(c.Operator), Right: literal(c.Value, false)}
	case OpIn:
		return compileIn(field, listValues(c.Value))
	case OpNotEqual:
		return equality(field, cmpNe, c.Value)
	default:
		return equality(field, cmpEq, c.Value)
	}
}

func pattern(field Expr, p string) Expr {
	return Compare{
		Left:  normalizeColumn(field),
		Op:    cmpLike,
		Right: Normalized{Expr: TextLit(p)},
	}
}

// equality compares numbers raw and text normalized on both sides.
func equality(field Expr, op comparator, v any) Expr {
	if v == nil || IsNumeric(v) {
		return Compare{Left: field, Op: op, Right: literal(v, false)}
	}
	return Compare{Left: normalizeColumn(field), Op: op, Right: literal(v, true)}
}

// compileIn keeps an all-numeric list raw. As soon as one member is text the
// whole list and the column are normalized so both sides share a type: in a
// mixed list numbers become text literals too, rather than each member being
// classified on its own.
func compileIn(field Expr, values []any) Expr {
	normalize := false
	for _, v := range values {
		if v != nil && !IsNumeric(v) {
			normalize = true
			break
		}
	}

	items := make([]Expr, 0, len(values))
	for _, v := range values {
		items = append(items, literal(v, normalize))
	}

	if normalize {
		return InList{Expr: normalizeColumn(field), Items: items}
	}
	return InList{Expr: field, Items: items}
}
