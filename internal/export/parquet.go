package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/ectormgl/SQLTranslator/internal/query"
)

// EncodeResult is a result table encoded as a Parquet file.
type EncodeResult struct {
	Data        []byte
	RecordCount int64
	Columns     []string
}

// EncodeParquet writes every column as an optional UTF-8 string. Column
// names are made unique and non-empty; SQL NULL stays null.
func EncodeParquet(result query.Result) (EncodeResult, error) {
	if len(result.Columns) == 0 {
		return EncodeResult{}, fmt.Errorf("result has no columns")
	}

	names := uniqueColumnNames(result.Columns)
	group := parquet.Group{}
	for _, name := range names {
		group[name] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("result", group)

	// Group fields are ordered by name; map each leaf back to its source column.
	source := make(map[string]int, len(names))
	for i, name := range names {
		source[name] = i
	}
	fields := schema.Fields()
	order := make([]int, len(fields))
	for leaf, field := range fields {
		order[leaf] = source[field.Name()]
	}

	rows := make([]parquet.Row, 0, len(result.Rows))
	for rowIndex, values := range result.Rows {
		if len(values) != len(names) {
			return EncodeResult{}, fmt.Errorf("row %d has %d values, want %d", rowIndex, len(values), len(names))
		}
		row := make(parquet.Row, len(order))
		for leaf, col := range order {
			value := values[col]
			if value == nil {
				row[leaf] = parquet.NullValue().Level(0, 0, leaf)
				continue
			}
			row[leaf] = parquet.ByteArrayValue([]byte(query.Text(value))).Level(0, 1, leaf)
		}
		rows = append(rows, row)
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewWriter(buf, schema)
	if _, err := writer.WriteRows(rows); err != nil {
		return EncodeResult{}, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return EncodeResult{}, fmt.Errorf("close parquet writer: %w", err)
	}

	return EncodeResult{
		Data:        buf.Bytes(),
		RecordCount: int64(len(rows)),
		Columns:     names,
	}, nil
}

func uniqueColumnNames(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	names := make([]string, len(columns))
	for i, column := range columns {
		base := strings.TrimSpace(column)
		if base == "" {
			base = "column_" + strconv.Itoa(i+1)
		}
		name := base
		for n := 2; seen[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}
