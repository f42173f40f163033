// Package schema infers column types from tokenized CSV records and builds
// the typed table model that DDL generation and loading consume.
package schema

// ColumnType is the semantic type of a column.
type ColumnType int

const (
	String ColumnType = iota
	Boolean
	Integer
	Double
	DateTime
)

var typeNames = [...]string{
	String:   "string",
	Boolean:  "boolean",
	Integer:  "integer",
	Double:   "double",
	DateTime: "datetime",
}

func (t ColumnType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// MarshalText renders the type by name, so JSON output reads "integer"
// rather than 2.
func (t ColumnType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Column describes one column of a Table.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
	// MaxLength is the longest value in UTF-16 code units. Only String
	// columns track it; zero means no value was observed.
	MaxLength int `json:"max_length,omitempty"`
}

// Table is the typed, in-memory model of one input file.
//
// Every row has exactly len(Columns) entries. An entry is nil or a value of
// the column's Go type: bool, int32, float64, time.Time or string.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"-"`
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
