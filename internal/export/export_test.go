package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/ectormgl/SQLTranslator/internal/query"
	"github.com/ectormgl/SQLTranslator/internal/storage"
)

func TestEncodeParquetKeepsValuesAndNulls(t *testing.T) {
	result := query.Result{
		Columns: []string{"Name", "track_count", "Name", ""},
		Rows: [][]any{
			{"Iron Maiden", int64(213), "Heavy", nil},
			{"U2", int64(135), nil, "x"},
		},
	}

	encoded, err := EncodeParquet(result)
	if err != nil {
		t.Fatalf("EncodeParquet() error = %v", err)
	}
	if encoded.RecordCount != 2 {
		t.Fatalf("RecordCount = %d", encoded.RecordCount)
	}
	wantColumns := []string{"Name", "track_count", "Name_2", "column_4"}
	for i, name := range wantColumns {
		if encoded.Columns[i] != name {
			t.Fatalf("Columns = %#v, want %#v", encoded.Columns, wantColumns)
		}
	}

	got := readParquet(t, encoded.Data)
	if len(got) != 2 {
		t.Fatalf("rows = %d", len(got))
	}
	if got[0]["Name"] != "Iron Maiden" || got[0]["track_count"] != "213" || got[0]["Name_2"] != "Heavy" {
		t.Fatalf("row 0 = %#v", got[0])
	}
	if _, ok := got[0]["column_4"]; ok {
		t.Fatalf("row 0 column_4 should be null: %#v", got[0])
	}
	if _, ok := got[1]["Name_2"]; ok {
		t.Fatalf("row 1 Name_2 should be null: %#v", got[1])
	}
	if got[1]["column_4"] != "x" {
		t.Fatalf("row 1 = %#v", got[1])
	}
}

func TestEncodeParquetRejectsBadInput(t *testing.T) {
	if _, err := EncodeParquet(query.Result{}); err == nil {
		t.Fatal("expected error for empty columns")
	}
	if _, err := EncodeParquet(query.Result{Columns: []string{"a"}, Rows: [][]any{{1, 2}}}); err == nil {
		t.Fatal("expected error for misaligned row")
	}
}

func TestExporterUploadsAndOpens(t *testing.T) {
	store := newMemoryStore()
	exporter, err := New(store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	info, err := exporter.Export(context.Background(), "session-1", 2, query.Result{
		Columns: []string{"Name"},
		Rows:    [][]any{{"AC/DC"}},
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if info.Key != "exports/session-1/turn-2.parquet" || info.Rows != 1 || info.Size == 0 {
		t.Fatalf("Info = %#v", info)
	}
	if _, ok := store.objects[info.Key]; !ok {
		t.Fatalf("objects = %v, want %q", store.objects, info.Key)
	}

	reader, err := exporter.Open(context.Background(), "session-1", 2)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(reader)
	_ = reader.Close()
	rows := readParquet(t, data)
	if len(rows) != 1 || rows[0]["Name"] != "AC/DC" {
		t.Fatalf("rows = %#v", rows)
	}

	if _, err := exporter.Open(context.Background(), "session-1", 3); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Open() missing error = %v", err)
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

// readParquet returns each row as column name to value, omitting nulls.
func readParquet(t *testing.T, data []byte) []map[string]string {
	t.Helper()
	reader := parquet.NewReader(bytes.NewReader(data))
	defer func() { _ = reader.Close() }()

	fields := reader.Schema().Fields()
	out := make([]map[string]string, 0)
	buf := make([]parquet.Row, 16)
	for {
		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			values := map[string]string{}
			for _, value := range row {
				if value.IsNull() {
					continue
				}
				values[fields[value.Column()].Name()] = string(value.ByteArray())
			}
			out = append(out, values)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadRows() error = %v", err)
		}
		if n == 0 {
			break
		}
	}
	return out
}

type memoryStore struct {
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) SaveExport(_ context.Context, sessionID string, turn int, body io.Reader, _ int64) (storage.Object, error) {
	key, err := storage.BuildExportPath(sessionID, turn)
	if err != nil {
		return storage.Object{}, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.Object{}, err
	}
	m.objects[key] = data
	return storage.Object{Key: key, Size: int64(len(data))}, nil
}

func (m *memoryStore) OpenExport(_ context.Context, sessionID string, turn int) (io.ReadCloser, error) {
	key, err := storage.BuildExportPath(sessionID, turn)
	if err != nil {
		return nil, err
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
