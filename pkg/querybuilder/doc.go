// Package querybuilder compiles a user-authored filter tree, an ordered list of
// joins and a column projection into a single SELECT statement.
//
// # Input model
//
// A filter tree is a Group of Nodes. A Node is either a *Condition (a leaf rule)
// or a nested *Group:
//
//	{
//	    "combinator": "and",
//	    "rules": [
//	        {"field": "age", "operator": ">", "value": 30},
//	        {"combinator": "or", "rules": [
//	            {"field": "customers.city", "operator": "contains", "value": "paris"}
//	        ]}
//	    ]
//	}
//
// The JSON union is discriminated once, at decode time, on the presence of the
// "rules" key.
//
// # Aliases
//
// The main table is always aliased "main". Joins are aliased by their position
// in the join list: the first join is "j0", the second "j1" and so on. A field
// written as "table.column" resolves to "main" when table is the main table,
// otherwise to the alias of the first join whose target table equals table.
// When two joins share a target table the first one wins.
//
// # Rendering
//
// Compilation produces a SelectStmt made of clause values (ColumnRef, TextLit,
// NumLit, Compare, ...). Each clause renders itself through SQL(). Identifiers
// are only ever rendered by Ident.SQL and text literals only by TextLit.SQL, so
// quoting and escaping are enforced in exactly two places.
//
// Resulting SQL for a two-join query:
//
//	SELECT main.*, j0.*, j1.*
//	FROM "orders" AS main
//	INNER JOIN "customers" AS j0 ON main."customer_id" = j0."id"
//	LEFT JOIN "shipments" AS j1 ON main."id" = j1."order_id"
//	WHERE main."total" > 100 AND (unaccent(lower(CAST(j0."city" AS TEXT))) LIKE unaccent(lower('%paris%')))
//
// # Normalization
//
// Text comparisons are made case and accent insensitive by wrapping both sides
// in unaccent(lower(...)). Numeric values are compared raw. Ordering operators
// (<, >, <=, >=) never normalize the column.
package querybuilder
