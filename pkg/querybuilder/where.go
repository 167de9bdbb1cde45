package querybuilder

// compileGroup walks a group depth first. Nested groups that compile to
// something are parenthesized, empty ones vanish together with their
// combinator. A group with nothing compilable yields nil.
func (s scope) compileGroup(g *Group) Expr {
	if g == nil {
		return nil
	}

	parts := make([]Expr, 0, len(g.Rules))
	for _, n := range g.Rules {
		switch t := n.(type) {
		case *Group:
			if nested := s.compileGroup(t); nested != nil {
				parts = append(parts, Paren{Expr: nested})
			}
		case *Condition:
			if t.compilable() {
				parts = append(parts, s.compileCondition(t))
			}
		}
	}

	if len(parts) == 0 {
		return nil
	}
	return Junction{Combinator: g.Combinator, Parts: parts}
}

// Where compiles a filter tree on its own. The result is "" when the tree has
// nothing to compile, in which case callers must omit the clause.
func Where(table string, g *Group, joins []Join) string {
	expr := newScope(table, joins).compileGroup(g)
	if expr == nil {
		return ""
	}
	return expr.SQL()
}
