package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	histfilemock "github.com/hitesh22rana/historian/internal/histfile/mock"
	"github.com/hitesh22rana/historian/internal/model"
	"github.com/hitesh22rana/historian/internal/pkg/storage"
	"github.com/hitesh22rana/historian/internal/queue"
)

func queuedEvent() *model.Event {
	return &model.Event{
		Type:      model.EventTypeTaskFinished,
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Payload: model.TaskFinished{
			TaskType:  "worker",
			TaskIndex: 0,
			ExitCode:  0,
			Status:    "SUCCEEDED",
		},
	}
}

func TestWriteEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w := histfilemock.NewMockWriter(ctrl)
	w.EXPECT().Append(gomock.Any()).Return(nil)

	q := queue.New()
	q.Put(queuedEvent())

	rec := New(t.Context(), storage.NewLocal(), q)

	assert.Equal(t, 1, q.Len())
	assert.True(t, rec.writeEvent(q, w))
	assert.Equal(t, 0, q.Len())

	// Nothing left to write.
	assert.False(t, rec.writeEvent(q, w))
}

func TestDrainQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w := histfilemock.NewMockWriter(ctrl)
	w.EXPECT().Append(gomock.Any()).Return(nil).Times(4)

	q := queue.New()
	for range 4 {
		q.Put(queuedEvent())
	}

	rec := New(t.Context(), storage.NewLocal(), q)

	assert.Equal(t, 4, q.Len())
	assert.Equal(t, 4, rec.drainQueue(q, w))
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, uint64(4), rec.Persisted())
}

func TestDrainQueue_appendFailureKeepsDraining(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w := histfilemock.NewMockWriter(ctrl)
	gomock.InOrder(
		w.EXPECT().Append(gomock.Any()).Return(assert.AnError),
		w.EXPECT().Append(gomock.Any()).Return(nil).Times(2),
	)

	q := queue.New()
	for range 3 {
		q.Put(queuedEvent())
	}

	rec := New(t.Context(), storage.NewLocal(), q)

	assert.Equal(t, 3, rec.drainQueue(q, w))
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, uint64(2), rec.Persisted())
}
