package types

// RawRow is one tabular row of diagnostic output as produced by the
// remote runner: column name to scalar value. Values must be flat
// scalars (string, numeric, bool, time or nil); anything nested fails
// row mapping.
type RawRow map[string]interface{}

// ResultSet is one (columns, rows) pair from a multi-result-set remote
// command. A set without column metadata represents a status-only batch
// and carries no data.
type ResultSet struct {
	Columns []string
	Rows    [][]interface{}
}

// Empty reports whether the set lacks column metadata entirely.
func (rs ResultSet) Empty() bool { return len(rs.Columns) == 0 }

// RowMap joins column names with the values of row i.
func (rs ResultSet) RowMap(i int) RawRow {
	row := make(RawRow, len(rs.Columns))
	for c, name := range rs.Columns {
		if c < len(rs.Rows[i]) {
			row[name] = rs.Rows[i][c]
		}
	}
	return row
}
