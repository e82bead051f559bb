package export

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ectormgl/SQLTranslator/internal/query"
	"github.com/ectormgl/SQLTranslator/internal/storage"
)

// Info describes an uploaded export.
type Info struct {
	Key  string `json:"key"`
	Rows int64  `json:"rows"`
	Size int64  `json:"size"`
}

type Exporter struct {
	store storage.ExportStore
}

func New(store storage.ExportStore) (*Exporter, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	return &Exporter{store: store}, nil
}

// Export uploads the result of turn turn in session sessionID.
func (e *Exporter) Export(ctx context.Context, sessionID string, turn int, result query.Result) (Info, error) {
	encoded, err := EncodeParquet(result)
	if err != nil {
		return Info{}, err
	}
	object, err := e.store.SaveExport(ctx, sessionID, turn, bytes.NewReader(encoded.Data), int64(len(encoded.Data)))
	if err != nil {
		return Info{}, err
	}
	return Info{Key: object.Key, Rows: encoded.RecordCount, Size: object.Size}, nil
}

// Open returns the stored export for a turn. A missing export yields
// storage.ErrObjectNotFound.
func (e *Exporter) Open(ctx context.Context, sessionID string, turn int) (io.ReadCloser, error) {
	return e.store.OpenExport(ctx, sessionID, turn)
}

func ContentType() string { return storage.ParquetContentType }
