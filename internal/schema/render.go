package schema

import (
	"fmt"
	"strings"
)

// Render prints tables as CREATE TABLE blocks, each followed by its sample
// rows in a comment when any were loaded.
func Render(tables []Table) string {
	blocks := make([]string, 0, len(tables))
	for _, table := range tables {
		var b strings.Builder
		fmt.Fprintf(&b, "CREATE TABLE %s (\n", table.Name)
		for i, column := range table.Columns {
			b.WriteString("\t")
			b.WriteString(column.Name)
			b.WriteString(" ")
			b.WriteString(column.DataType)
			if !column.Nullable {
				b.WriteString(" NOT NULL")
			}
			if i < len(table.Columns)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(")")

		if len(table.SampleCols) > 0 {
			fmt.Fprintf(&b, "\n\n/*\n%d rows from %s table:\n", len(table.SampleRows), table.Name)
			b.WriteString(strings.Join(table.SampleCols, "\t"))
			b.WriteString("\n")
			for _, row := range table.SampleRows {
				b.WriteString(strings.Join(row, "\t"))
				b.WriteString("\n")
			}
			b.WriteString("*/")
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}
