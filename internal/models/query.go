package models

// Row is one result row keyed by column name, in the shape returned by PostgREST.
type Row map[string]any

type QueryResult struct {
	Table    string
	SQL      string
	Rows     []Row
	HasJoins bool
}

func (r QueryResult) Count() int {
	return len(r.Rows)
}

// Column describes one column of a tenant table.
type Column struct {
	Name     string `json:"column_name"`
	DataType string `json:"data_type"`
	Nullable string `json:"is_nullable,omitempty"`
}
