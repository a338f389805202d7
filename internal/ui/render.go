// Package ui renders query results for the terminal and for pipelines.
package ui

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vvka-141/dbhandler/internal/tui"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

// Format selects how results are written.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// NullText is how NULL appears in the pretty table.
const NullText = "NULL"

// ParseFormat validates a --format value. Empty means FormatTable.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, csv or json): %w", s, dbhandler.ErrInvalidArgument)
	}
}

// WriteTable writes a materialized table in the given format.
func WriteTable(w io.Writer, t *dbhandler.Table, format Format) error {
	if t == nil {
		t = &dbhandler.Table{}
	}
	switch format {
	case FormatCSV:
		return writeCSV(w, t.ColumnNames(), t.Rows)
	case FormatJSON:
		return writeJSON(w, t.ColumnNames(), t.Rows)
	default:
		return writePretty(w, t.ColumnNames(), t.Rows)
	}
}

// WriteRows writes column-keyed rows. Columns are the sorted union of the
// row keys since rows carry no column order.
func WriteRows(w io.Writer, rows []dbhandler.Row, format Format) error {
	columns := RowColumns(rows)
	values := make([][]dbhandler.Value, len(rows))
	for i, row := range rows {
		values[i] = make([]dbhandler.Value, len(columns))
		for j, c := range columns {
			values[i][j] = row.Get(c)
		}
	}

	switch format {
	case FormatCSV:
		return writeCSV(w, columns, values)
	case FormatJSON:
		return writeJSON(w, columns, values)
	default:
		return writePretty(w, columns, values)
	}
}

// RowColumns returns the sorted union of column names across rows.
func RowColumns(rows []dbhandler.Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return columns
}

func writePretty(w io.Writer, columns []string, rows [][]dbhandler.Value) error {
	if len(columns) == 0 {
		_, err := fmt.Fprintln(w, "(no columns)")
		return err
	}

	cells := make([][]string, len(rows))
	nulls := make(map[[2]int]bool)
	for i, row := range rows {
		cells[i] = make([]string, len(columns))
		for j := range columns {
			v := dbhandler.Null
			if j < len(row) {
				v = row[j]
			}
			if v.IsNull() {
				cells[i][j] = NullText
				nulls[[2]int{i, j}] = true
				continue
			}
			cells[i][j] = v.String()
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tui.BorderStyle).
		Headers(columns...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			dataRow := row
			if table.HeaderRow >= 0 {
				dataRow = row - table.HeaderRow - 1
			}
			switch {
			case row == table.HeaderRow:
				return tui.HeaderStyle
			case nulls[[2]int{dataRow, col}]:
				return tui.NullStyle
			default:
				return tui.CellStyle
			}
		})

	_, err := fmt.Fprintf(w, "%s\n(%d %s)\n", t.Render(), len(rows), plural(len(rows), "row", "rows"))
	return err
}

func writeCSV(w io.Writer, columns []string, rows [][]dbhandler.Value) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for j := range columns {
			record[j] = ""
			if j < len(row) {
				record[j] = row[j].String()
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeJSON emits an array of objects whose keys keep column order.
func writeJSON(w io.Writer, columns []string, rows [][]dbhandler.Value) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  {")
		for j, c := range columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(c)
			if err != nil {
				return err
			}
			v := dbhandler.Null
			if j < len(row) {
				v = row[j]
			}
			val, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("column %s: %w", c, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	if len(rows) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
