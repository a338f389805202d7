package dbhandler

// Row is one result row keyed by column name. Column order within a row is
// not meaningful; use a Table when order matters.
type Row map[string]Value

// Get returns the value of the named column, or Null when the column is absent.
func (r Row) Get(column string) Value {
	return r[column]
}

// Column describes one column of a Table.
type Column struct {
	Name string
	// Type is the database type name reported by the driver ("int4", "TEXT"...).
	// Empty when the driver does not report one.
	Type string
}

// Table is a materialized result: named columns in driver order and rows of
// values aligned with them. A Table is a snapshot with no tie to the
// connection it was read from.
type Table struct {
	Columns []Column
	Rows    [][]Value
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the value at row i of the named column. Out-of-range rows and
// unknown columns yield Null.
func (t *Table) Get(i int, column string) Value {
	idx := t.ColumnIndex(column)
	if idx < 0 || i < 0 || i >= t.Len() || idx >= len(t.Rows[i]) {
		return Null
	}
	return t.Rows[i][idx]
}

// Records converts the table into column-keyed rows, preserving row order.
// When two columns share a name the later one wins, as with a mapping cursor.
func (t *Table) Records() []Row {
	if t == nil {
		return nil
	}
	out := make([]Row, len(t.Rows))
	for i, values := range t.Rows {
		row := make(Row, len(t.Columns))
		for j, c := range t.Columns {
			if j < len(values) {
				row[c.Name] = values[j]
			}
		}
		out[i] = row
	}
	return out
}

// Append adds a row built from plain Go values, normalizing each with NewValue.
func (t *Table) Append(values ...any) {
	row := make([]Value, len(values))
	for i, v := range values {
		row[i] = NewValue(v)
	}
	t.Rows = append(t.Rows, row)
}
