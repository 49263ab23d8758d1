package recorder_test

import (
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hitesh22rana/historian/internal/histfile"
	"github.com/hitesh22rana/historian/internal/model"
	"github.com/hitesh22rana/historian/internal/pkg/storage"
	storagemock "github.com/hitesh22rana/historian/internal/pkg/storage/mock"
	"github.com/hitesh22rana/historian/internal/queue"
	"github.com/hitesh22rana/historian/internal/recorder"
)

var testStarted = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func testEvent() *model.Event {
	return &model.Event{
		Type:      model.EventTypeApplicationInited,
		Timestamp: testStarted,
		Payload: model.ApplicationInited{
			ApplicationID: "app123",
			NumTasks:      1,
			Host:          "fakehost",
		},
	}
}

func startedMeta() model.JobMetadata {
	return model.NewJobMetadataBuilder().
		WithID("app123").
		WithUser("testuser").
		WithStartedAt(testStarted).
		Build()
}

func finishedMeta() model.JobMetadata {
	return model.NewJobMetadataBuilder().
		WithID("app123").
		WithUser("testuser").
		WithStartedAt(testStarted).
		WithCompletedAt(testStarted.Add(time.Minute)).
		WithStatus(model.JobStatusSucceeded).
		Build()
}

func TestSetUp_failedToOpenWriter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFS := storagemock.NewMockFS(ctrl)
	mockFS.EXPECT().Create(gomock.Any()).Return(nil, status.Error(codes.Internal, "io error"))

	q := queue.New()
	rec := recorder.New(t.Context(), mockFS, q)

	rec.SetUp("/jobs/app123", startedMeta())
	rec.Stop("/jobs/app123", finishedMeta())
	rec.Join()

	assert.Equal(t, recorder.StateStopped, rec.State())
	assert.Equal(t, uint64(0), rec.Persisted())
}

func TestRecorderEndToEnd_success(t *testing.T) {
	jobDir := t.TempDir()
	fs := storage.NewLocal()

	q := queue.New()
	rec := recorder.New(t.Context(), fs, q)

	rec.SetUp(jobDir, startedMeta())
	rec.Start()
	rec.Emit(testEvent())

	rec.Stop(jobDir, finishedMeta())
	rec.Join()

	events, err := histfile.ParseJobDir(fs, jobDir)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, model.EventTypeApplicationInited, events[0].Type)
	assert.True(t, events[0].Timestamp.Equal(testStarted))
	assert.Equal(t, testEvent().Payload, events[0].Payload)

	// Exactly one file, carrying the final name.
	names, err := fs.List(jobDir)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, histfile.FileName(finishedMeta()), names[0])

	assert.Equal(t, uint64(1), rec.Persisted())
	assert.Equal(t, recorder.StateStopped, rec.State())
}

func TestRecorderEndToEnd_ordering(t *testing.T) {
	jobDir := t.TempDir()
	fs := storage.NewLocal()

	q := queue.New()
	rec := recorder.New(t.Context(), fs, q)

	rec.SetUp(jobDir, startedMeta())
	rec.Start()

	const numTasks = 25
	for i := range numTasks {
		rec.Emit(&model.Event{
			Type:      model.EventTypeTaskStarted,
			Timestamp: testStarted.Add(time.Duration(i) * time.Second),
			Payload: model.TaskStarted{
				TaskType:  "worker",
				TaskIndex: int32(i),
				Host:      "fakehost",
			},
		})
	}

	rec.Stop(jobDir, finishedMeta())
	rec.Join()

	events, err := histfile.ParseJobDir(fs, jobDir)
	require.NoError(t, err)
	require.Len(t, events, numTasks)

	for i, event := range events {
		payload, ok := event.Payload.(model.TaskStarted)
		require.True(t, ok)
		assert.Equal(t, int32(i), payload.TaskIndex)
	}
}

func TestRecorderEndToEnd_noJobDir(t *testing.T) {
	jobDir := t.TempDir()
	fs := storage.NewLocal()

	q := queue.New()
	rec := recorder.New(t.Context(), fs, q)

	rec.Start()
	rec.Emit(testEvent())
	rec.Stop("", finishedMeta())
	rec.Join()

	names, err := fs.List(jobDir)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Equal(t, recorder.StateStopped, rec.State())
}

// blockingWriteCloser blocks inside Close until released, mimicking a slow
// distributed filesystem close.
type blockingWriteCloser struct {
	release    chan struct{}
	closeCalls atomic.Int64
}

func (b *blockingWriteCloser) Write(p []byte) (int, error) {
	return len(p), nil
}

func (b *blockingWriteCloser) Close() error {
	b.closeCalls.Add(1)
	<-b.release
	return nil
}

func TestStop_producerRacingShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wc := &blockingWriteCloser{release: make(chan struct{})}

	mockFS := storagemock.NewMockFS(ctrl)
	mockFS.EXPECT().Create(gomock.Any()).Return(io.WriteCloser(wc), nil)
	mockFS.EXPECT().Rename(gomock.Any(), gomock.Any()).Return(nil)

	q := queue.New()
	rec := recorder.New(t.Context(), mockFS, q)

	rec.SetUp("/jobs/app123", startedMeta())
	rec.Start()

	// Producer keeps emitting while shutdown is in flight; it must never
	// block or panic.
	stopProducing := make(chan struct{})
	var producerDone sync.WaitGroup
	producerDone.Add(1)
	go func() {
		defer producerDone.Done()
		for {
			select {
			case <-stopProducing:
				return
			default:
				rec.Emit(testEvent())
			}
		}
	}()

	rec.Stop("/jobs/app123", finishedMeta())

	// The close is now blocked on its own wait condition. Releasing it
	// lets the shutdown run to completion; the queue-wait cancellation
	// issued by Stop must not have aborted it.
	close(wc.release)
	rec.Join()

	close(stopProducing)
	producerDone.Wait()

	assert.Equal(t, int64(1), wc.closeCalls.Load())
	assert.Equal(t, recorder.StateStopped, rec.State())
}

func TestStop_beforeStartRejectsLateStart(t *testing.T) {
	jobDir := t.TempDir()
	fs := storage.NewLocal()

	q := queue.New()
	rec := recorder.New(t.Context(), fs, q)

	rec.SetUp(jobDir, startedMeta())
	rec.Emit(testEvent())

	// Stop without Start runs the shutdown inline on the caller.
	rec.Stop(jobDir, finishedMeta())
	rec.Join()
	assert.Equal(t, recorder.StateStopped, rec.State())

	// A late Start must not relaunch the loop against the closed writer.
	rec.Start()
	assert.Equal(t, recorder.StateStopped, rec.State())

	events, err := histfile.ParseJobDir(fs, jobDir)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestStop_idempotent(t *testing.T) {
	jobDir := t.TempDir()
	fs := storage.NewLocal()

	q := queue.New()
	rec := recorder.New(t.Context(), fs, q)

	rec.SetUp(jobDir, startedMeta())
	rec.Start()
	rec.Emit(testEvent())

	rec.Stop(jobDir, finishedMeta())
	rec.Stop(jobDir, finishedMeta())
	rec.Join()

	events, err := histfile.ParseJobDir(fs, jobDir)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
