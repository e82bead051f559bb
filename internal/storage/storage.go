package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// ParquetContentType is recorded on every export object.
const ParquetContentType = "application/vnd.apache.parquet"

// Object describes a stored export. Key includes any store prefix.
type Object struct {
	Key  string
	Size int64
}

// ExportStore keeps one Parquet object per answered turn of a session.
type ExportStore interface {
	SaveExport(ctx context.Context, sessionID string, turn int, body io.Reader, size int64) (Object, error)
	OpenExport(ctx context.Context, sessionID string, turn int) (io.ReadCloser, error)
}
