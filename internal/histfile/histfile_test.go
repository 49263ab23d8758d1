package histfile_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitesh22rana/historian/internal/histfile"
	"github.com/hitesh22rana/historian/internal/model"
	"github.com/hitesh22rana/historian/internal/pkg/storage"
)

func sampleEvents() []*model.Event {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	return []*model.Event{
		{
			Type:      model.EventTypeApplicationInited,
			Timestamp: ts,
			Payload: model.ApplicationInited{
				ApplicationID: "app123",
				NumTasks:      2,
				Host:          "fakehost",
			},
		},
		{
			Type:      model.EventTypeTaskStarted,
			Timestamp: ts.Add(time.Second),
			Payload: model.TaskStarted{
				TaskType:  "worker",
				TaskIndex: 0,
				Host:      "fakehost",
			},
		},
		{
			Type:      model.EventTypeApplicationFinished,
			Timestamp: ts.Add(time.Minute),
			Payload: model.ApplicationFinished{
				ApplicationID:     "app123",
				NumCompletedTasks: 2,
				NumFailedTasks:    0,
				Status:            "SUCCEEDED",
			},
		},
	}
}

func TestWriterReader_roundTrip(t *testing.T) {
	fs := storage.NewLocal()
	path := filepath.Join(t.TempDir(), "app123.jhist")

	wc, err := fs.Create(path)
	require.NoError(t, err)

	w := histfile.NewWriter(wc)
	for _, event := range sampleEvents() {
		require.NoError(t, w.Append(event))
	}
	require.NoError(t, w.Close())

	events, err := histfile.ParseEvents(fs, path)
	require.NoError(t, err)
	require.Len(t, events, 3)

	for i, want := range sampleEvents() {
		assert.Equal(t, want.Type, events[i].Type)
		assert.True(t, want.Timestamp.Equal(events[i].Timestamp))
		assert.Equal(t, want.Payload, events[i].Payload)
	}
}

func TestParseEvents_emptyFile(t *testing.T) {
	fs := storage.NewLocal()
	path := filepath.Join(t.TempDir(), "empty.jhist.inprogress")

	wc, err := fs.Create(path)
	require.NoError(t, err)
	require.NoError(t, wc.Close())

	events, err := histfile.ParseEvents(fs, path)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseEvents_toleratesTruncatedTail(t *testing.T) {
	fs := storage.NewLocal()
	path := filepath.Join(t.TempDir(), "truncated.jhist.inprogress")

	wc, err := fs.Create(path)
	require.NoError(t, err)

	w := histfile.NewWriter(wc)
	require.NoError(t, w.Append(sampleEvents()[0]))
	require.NoError(t, w.Close())

	// Simulate a crashed writer that left a partial record behind.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"type":"TASK_STARTED","time`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, err := histfile.ParseEvents(fs, path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventTypeApplicationInited, events[0].Type)
}

func TestParseEvents_malformedMiddleRecord(t *testing.T) {
	fs := storage.NewLocal()
	path := filepath.Join(t.TempDir(), "corrupt.jhist")

	require.NoError(t, os.WriteFile(path, []byte("not json\n{\"type\":\"TASK_STARTED\"}\n"), 0o644))

	_, err := histfile.ParseEvents(fs, path)
	assert.Error(t, err)
}

func TestParseJobDir(t *testing.T) {
	fs := storage.NewLocal()
	jobDir := t.TempDir()

	path := filepath.Join(jobDir, "app123-1-2-alice-SUCCEEDED.jhist")
	wc, err := fs.Create(path)
	require.NoError(t, err)

	w := histfile.NewWriter(wc)
	require.NoError(t, w.Append(sampleEvents()[0]))
	require.NoError(t, w.Close())

	events, err := histfile.ParseJobDir(fs, jobDir)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestParseJobDir_noHistoryFile(t *testing.T) {
	fs := storage.NewLocal()

	_, err := histfile.ParseJobDir(fs, t.TempDir())
	assert.Error(t, err)
}
