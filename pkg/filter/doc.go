// Package filter parses a compact text form of a filter tree, used by the
// command line where writing the JSON tree by hand is impractical:
//
//	status = 'open' and (amount >= 100 or customers.country in ('FR', 'DE'))
//
// The result is a *querybuilder.Group and compiles exactly like a tree
// received over the API.
//
// Grammar
//
// --- PARSER RULES ---
//
// expression  : term ( "or" term )* ;
// term        : factor ( "and" factor )* ;
//
// factor      : comparison
//             | "(" expression ")" ;
//
// comparison  : IDENTIFIER ( "=" | "!=" | "<>" | "<" | "<=" | ">" | ">=" ) value
//             | IDENTIFIER ( "~" | "^=" | "$=" ) value
//             | IDENTIFIER "in" "(" value ( "," value )* ")"
//             | IDENTIFIER "is" [ "not" ] "null" ;
//
// value       : STRING | NUMBER | BOOLEAN ;
//
// --- LEXER RULES ---
//
// IDENTIFIER  : [a-zA-Z_][a-zA-Z0-9_]* ( "." [a-zA-Z_][a-zA-Z0-9_]* )? ;
// STRING      : "'" ( "''" | . )*? "'" | "\"" ( "\"\"" | . )*? "\"" ;
// NUMBER      : "-"? [0-9]+ ( "." [0-9]+ )? ;
// BOOLEAN     : "true" | "false" ;
//
// Keywords are case insensitive. "~" is contains, "^=" begins with and "$="
// ends with; all three are case insensitive in the compiled statement.
package filter
