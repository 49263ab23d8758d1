package histfile

import (
	"bufio"
	"encoding/json"
	"io"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hitesh22rana/historian/internal/model"
)

//go:generate mockgen -source=$GOFILE -package=mock -destination=./mock/$GOFILE

// Writer appends events to a history file in arrival order. Close flushes all
// buffered records durably before returning. Implementations are not safe for
// concurrent use; the recorder guarantees a single writer goroutine.
type Writer interface {
	Append(event *model.Event) error
	Close() error
}

// syncer is implemented by streams that can flush to stable storage.
type syncer interface {
	Sync() error
}

// jsonWriter writes one JSON-encoded event per line.
type jsonWriter struct {
	wc  io.WriteCloser
	buf *bufio.Writer
}

// NewWriter creates a Writer over the given stream.
func NewWriter(wc io.WriteCloser) Writer {
	return &jsonWriter{
		wc:  wc,
		buf: bufio.NewWriter(wc),
	}
}

// Append encodes the event and writes it as a single record. The record is
// marshaled before any byte is written, so a failed encode never leaves a
// partial line behind.
func (w *jsonWriter) Append(event *model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	if _, err := w.buf.Write(data); err != nil {
		return status.Errorf(codes.Internal, "failed to write event record: %v", err)
	}

	return nil
}

// Close flushes buffered records, syncs the underlying stream when it supports
// it and closes the stream.
func (w *jsonWriter) Close() error {
	flushErr := w.buf.Flush()

	if s, ok := w.wc.(syncer); ok && flushErr == nil {
		flushErr = s.Sync()
	}

	if err := w.wc.Close(); err != nil {
		return status.Errorf(codes.Internal, "failed to close history file: %v", err)
	}

	if flushErr != nil {
		return status.Errorf(codes.Internal, "failed to flush history file: %v", flushErr)
	}

	return nil
}
