package querybuilder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Combinator joins the children of a Group.
type Combinator string

const (
	And Combinator = "and"
	Or  Combinator = "or"
)

// Sql returns the upper-cased keyword. Anything other than "or" renders as AND.
func (c Combinator) Sql() string {
	if strings.EqualFold(string(c), string(Or)) {
		return "OR"
	}
	return "AND"
}

// Operator is the comparison applied by a Condition.
type Operator string

const (
	OpEqual      Operator = "="
	OpNotEqual   Operator = "!="
	OpLess       Operator = "<"
	OpGreater    Operator = ">"
	OpLessEq     Operator = "<="
	OpGreaterEq  Operator = ">="
	OpContains   Operator = "contains"
	OpBeginsWith Operator = "beginsWith"
	OpEndsWith   Operator = "endsWith"
	OpNull       Operator = "null"
	OpNotNull    Operator = "notNull"
	OpIn         Operator = "in"
)

func (o Operator) isNullCheck() bool {
	return o == OpNull || o == OpNotNull
}

// Node is an element of a filter tree. It is implemented by *Condition and *Group only.
type Node interface {
	node()
}

// Condition is a leaf rule: field operator value.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

func (*Condition) node() {}

// Group is a list of nodes joined by a combinator.
type Group struct {
	Combinator Combinator
	Rules      []Node
}

func (*Group) node() {}

// NewGroup is a convenience constructor used by callers building trees in code.
func NewGroup(c Combinator, rules ...Node) *Group {
	return &Group{Combinator: c, Rules: rules}
}

// Cond builds a leaf condition.
func Cond(field string, op Operator, value any) *Condition {
	return &Condition{Field: field, Operator: op, Value: value}
}

// compilable reports whether the condition carries everything needed to be
// compiled. Conditions failing this check are dropped silently.
func (c *Condition) compilable() bool {
	if c.Field == "" || c.Operator == "" {
		return false
	}
	if c.Operator.isNullCheck() {
		return true
	}
	return !isEmptyValue(c.Value)
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

type rawNode struct {
	Rules    *json.RawMessage `json:"rules"`
	Field    string           `json:"field"`
	Operator Operator         `json:"operator"`
	Value    json.RawMessage  `json:"value"`
}

// UnmarshalJSON decodes the wire form of a group. Children carrying a "rules"
// key are groups, every other child is a condition.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw struct {
		Combinator Combinator        `json:"combinator"`
		Rules      []json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	g.Combinator = raw.Combinator
	if g.Combinator == "" {
		g.Combinator = And
	}
	g.Rules = make([]Node, 0, len(raw.Rules))

	for i, r := range raw.Rules {
		n, err := decodeNode(r)
		if err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		g.Rules = append(g.Rules, n)
	}
	return nil
}

func decodeNode(data json.RawMessage) (Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if raw.Rules != nil {
		g := &Group{}
		if err := g.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return g, nil
	}

	value, err := decodeValue(raw.Value)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", raw.Field, err)
	}
	return &Condition{Field: raw.Field, Operator: raw.Operator, Value: value}, nil
}

// decodeValue keeps numbers as json.Number so their textual form survives.
func decodeValue(data json.RawMessage) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarshalJSON renders the group back to its wire form.
func (g *Group) MarshalJSON() ([]byte, error) {
	rules := make([]any, 0, len(g.Rules))
	for _, n := range g.Rules {
		switch t := n.(type) {
		case *Group:
			rules = append(rules, t)
		case *Condition:
			rules = append(rules, map[string]any{
				"field":    t.Field,
				"operator": t.Operator,
				"value":    t.Value,
			})
		}
	}
	return json.Marshal(map[string]any{
		"combinator": g.Combinator,
		"rules":      rules,
	})
}

// JoinType is the SQL join flavour.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
)

// Sql returns the join keyword. Unknown types render as INNER.
func (t JoinType) Sql() string {
	switch JoinType(strings.ToUpper(string(t))) {
	case LeftJoin:
		return "LEFT"
	case RightJoin:
		return "RIGHT"
	default:
		return "INNER"
	}
}

// Join joins the main table to TargetTable on main.SourceColumn = target.TargetColumn.
type Join struct {
	Type         JoinType `json:"type" binding:"required,oneof=INNER LEFT RIGHT"`
	TargetTable  string   `json:"targetTable" binding:"required"`
	SourceColumn string   `json:"sourceColumn" binding:"required"`
	TargetColumn string   `json:"targetColumn" binding:"required"`
}

// SelectedColumn is one entry of an explicit projection.
type SelectedColumn struct {
	Table  string `json:"table" binding:"required"`
	Column string `json:"column" binding:"required"`
	Alias  string `json:"alias"`
}

// Query is the complete input of the statement builder.
type Query struct {
	Table   string
	Where   *Group
	Joins   []Join
	Columns []SelectedColumn
}
