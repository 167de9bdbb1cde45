package querybuilder

// Compile turns a query into its statement tree.
func Compile(q Query) SelectStmt {
	s := newScope(q.Table, q.Joins)

	stmt := SelectStmt{
		From:      Ident(q.Table),
		FromAlias: mainAlias,
		Joins:     make([]JoinClause, 0, len(q.Joins)),
	}

	if len(q.Columns) == 0 {
		stmt.Columns = append(stmt.Columns, Projection{Expr: Star{Qualifier: mainAlias}})
		for i := range q.Joins {
			stmt.Columns = append(stmt.Columns, Projection{Expr: Star{Qualifier: joinAlias(i)}})
		}
	} else {
		for _, c := range q.Columns {
			stmt.Columns = append(stmt.Columns, Projection{
				Expr: ColumnRef{Qualifier: s.qualifier(c.Table), Column: Ident(c.Column)},
				As:   Ident(c.Alias),
			})
		}
	}

	for i, j := range q.Joins {
		alias := joinAlias(i)
		stmt.Joins = append(stmt.Joins, JoinClause{
			Type:  j.Type,
			Table: Ident(j.TargetTable),
			Alias: alias,
			On: Compare{
				Left:  ColumnRef{Qualifier: mainAlias, Column: Ident(j.SourceColumn)},
				Op:    cmpEq,
				Right: ColumnRef{Qualifier: alias, Column: Ident(j.TargetColumn)},
			},
		})
	}

	if where := s.compileGroup(q.Where); where != nil {
		stmt.Where = where
	}

	return stmt
}

// Build renders a query as a single SELECT statement.
func Build(q Query) string {
	return Compile(q).SQL()
}
