package models

// Column describes one column of a table.
type Column struct {
	Name         string `json:"column_name"`
	DataType     string `json:"data_type"`
	IsPrimaryKey bool   `json:"is_primary_key"`
	IsForeignKey bool   `json:"is_foreign_key"`
}

// Table describes one table with its columns in server order.
type Table struct {
	Name        string   `json:"table_name"`
	Description string   `json:"description,omitempty"`
	Columns     []Column `json:"columns"`
}

// Schema is the ordered table list the backend reports for a connection.
type Schema []Table

// Table returns the table with the given name.
func (s Schema) Table(name string) (Table, bool) {
	for _, t := range s {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// ColumnCount returns the total number of columns across all tables.
func (s Schema) ColumnCount() int {
	n := 0
	for _, t := range s {
		n += len(t.Columns)
	}
	return n
}
