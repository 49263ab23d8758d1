// Package recorder implements the background worker that drains job lifecycle
// events from the shared queue and persists them, in arrival order, to the
// job's history file.
package recorder

import (
	"context"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/hitesh22rana/historian/internal/histfile"
	"github.com/hitesh22rana/historian/internal/model"
	loggerpkg "github.com/hitesh22rana/historian/internal/pkg/logger"
	"github.com/hitesh22rana/historian/internal/pkg/storage"
	"github.com/hitesh22rana/historian/internal/queue"
)

// State is the lifecycle state of the recorder.
type State int32

// Recorder lifecycle states.
const (
	StateNotStarted State = iota
	StateRunning
	StateStopping
	StateStopped
)

// Recorder owns the history file writer and the single goroutine draining the
// event queue. Producers interact with it only through Emit; the writer and
// filesystem handle are touched exclusively by the recorder itself, so no
// locking is needed around the writer.
type Recorder struct {
	fs     storage.FS
	queue  *queue.EventQueue
	logger *zap.Logger

	// waitCtx is scoped strictly to queue waits. Cancelling it is the only
	// way Stop unblocks the main loop; the writer close never observes it,
	// so a close that is progressing to completion is never aborted.
	waitCtx    context.Context
	cancelWait context.CancelFunc

	done       chan struct{}
	closeOnce  sync.Once
	finishOnce sync.Once

	mu             sync.Mutex
	state          State
	writer         histfile.Writer
	inProgressPath string
	stopDir        string
	stopMeta       model.JobMetadata
	persisted      uint64
}

// New creates a recorder draining q and writing through fs. The recorder is
// inert until SetUp and Start are called.
func New(ctx context.Context, fs storage.FS, q *queue.EventQueue) *Recorder {
	waitCtx, cancelWait := context.WithCancel(context.Background())

	return &Recorder{
		fs:         fs,
		queue:      q,
		logger:     loggerpkg.FromContext(ctx),
		waitCtx:    waitCtx,
		cancelWait: cancelWait,
		done:       make(chan struct{}),
	}
}

// SetUp computes the in-progress history file name from meta and opens it
// under jobDir. An empty jobDir means events are not persisted for this run.
// Failure to open the file is non-fatal: it is logged, the writer is left
// absent and every subsequent write becomes a discard.
func (r *Recorder) SetUp(jobDir string, meta model.JobMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateNotStarted {
		r.logger.Warn("recorder already started, ignoring setup")
		return
	}

	if jobDir == "" {
		r.logger.Info("no job directory configured, events will not be persisted")
		return
	}

	path := filepath.Join(jobDir, histfile.FileName(meta))
	wc, err := r.fs.Create(path)
	if err != nil {
		r.logger.Warn("failed to create history file, events will not be persisted",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}

	r.writer = histfile.NewWriter(wc)
	r.inProgressPath = path
}

// Start launches the recorder goroutine.
func (r *Recorder) Start() {
	r.mu.Lock()
	if r.state != StateNotStarted {
		r.mu.Unlock()
		r.logger.Warn("recorder already started")
		return
	}
	r.state = StateRunning
	r.mu.Unlock()

	go r.run()
}

// Emit enqueues the event. It never blocks, never fails and is safe to call
// from any number of goroutines, including after Stop has been requested; a
// late event is simply never persisted.
func (r *Recorder) Emit(event *model.Event) {
	r.queue.Put(event)
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// Persisted returns the number of events appended to the writer. Only stable
// once Join has returned.
func (r *Recorder) Persisted() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.persisted
}

// Stop requests shutdown: the main loop stops draining, every event queued at
// that point is written out, the writer is closed exactly once and the history
// file is renamed to its final name derived from the now-complete meta. When
// jobDir is empty or no writer was ever opened, the recorder still terminates
// but performs no I/O. Stop never returns an error to the caller; failures are
// absorbed and logged.
func (r *Recorder) Stop(jobDir string, meta model.JobMetadata) {
	r.mu.Lock()
	switch r.state {
	case StateStopping, StateStopped:
		r.mu.Unlock()
		return

	case StateNotStarted:
		r.stopDir = jobDir
		r.stopMeta = meta
		// Leave NotStarted before releasing the lock so a racing Start can
		// never launch the loop against a writer that is being closed.
		r.state = StateStopping
		r.mu.Unlock()
		// The goroutine never ran; the shutdown sequence runs on the caller.
		r.finish()
		return

	case StateRunning:
		r.stopDir = jobDir
		r.stopMeta = meta
		r.state = StateStopping
		r.mu.Unlock()
		// Releases the queue wait and nothing else.
		r.cancelWait()
	}
}

// Join blocks until the recorder goroutine has terminated and the shutdown
// sequence has completed.
func (r *Recorder) Join() {
	<-r.done
}

// run is the main loop: remove the head event, append it, repeat. The only
// suspension point is the queue wait, released either by a new event or by
// Stop cancelling waitCtx.
func (r *Recorder) run() {
	defer r.finish()

	for {
		if r.State() != StateRunning {
			return
		}

		event, err := r.queue.Take(r.waitCtx)
		if err != nil {
			// Wait released by Stop.
			return
		}

		r.mu.Lock()
		writer := r.writer
		r.mu.Unlock()

		r.appendEvent(writer, event)
	}
}

// finish executes the shutdown sequence exactly once: final drain, close,
// finalize. It runs on the recorder goroutine, or on the Stop caller when the
// recorder was never started.
func (r *Recorder) finish() {
	r.finishOnce.Do(func() {
		r.mu.Lock()
		r.state = StateStopping
		writer := r.writer
		jobDir := r.stopDir
		meta := r.stopMeta
		r.mu.Unlock()

		if jobDir != "" && writer != nil {
			if drained := r.drainQueue(r.queue, writer); drained > 0 {
				r.logger.Info("drained remaining events", zap.Int("count", drained))
			}
			r.closeWriter(writer)
			r.finalize(jobDir, meta)
		}

		r.mu.Lock()
		r.state = StateStopped
		r.mu.Unlock()

		close(r.done)
	})
}

// writeEvent removes the head event from q, if one is queued, and appends it
// to w. It never waits for an event to arrive.
func (r *Recorder) writeEvent(q *queue.EventQueue, w histfile.Writer) bool {
	event, ok := q.TryTake()
	if !ok {
		return false
	}

	r.appendEvent(w, event)
	return true
}

// drainQueue appends every event queued at the moment of the call to w, in
// FIFO order, and returns how many were drained.
func (r *Recorder) drainQueue(q *queue.EventQueue, w histfile.Writer) int {
	events := q.Drain()
	for _, event := range events {
		r.appendEvent(w, event)
	}

	return len(events)
}

// appendEvent writes one event through w. A nil writer discards the event; an
// append failure is logged and the remaining history keeps flowing.
func (r *Recorder) appendEvent(w histfile.Writer, event *model.Event) {
	if w == nil {
		r.logger.Debug("no writer open, discarding event",
			zap.String("type", event.Type.ToString()),
		)
		return
	}

	if err := w.Append(event); err != nil {
		r.logger.Error("failed to append event",
			zap.String("type", event.Type.ToString()),
			zap.Error(err),
		)
		return
	}

	r.mu.Lock()
	r.persisted++
	r.mu.Unlock()
}

// closeWriter closes w exactly once. The close runs to its natural outcome,
// success or I/O failure; it is not subject to the queue-wait cancellation.
func (r *Recorder) closeWriter(w histfile.Writer) {
	r.closeOnce.Do(func() {
		if err := w.Close(); err != nil {
			r.logger.Error("failed to close history file", zap.Error(err))
		}
	})
}

// finalize renames the in-progress file to its final name when the two differ.
func (r *Recorder) finalize(jobDir string, meta model.JobMetadata) {
	finalPath := filepath.Join(jobDir, histfile.FileName(meta))
	if finalPath == r.inProgressPath {
		return
	}

	if err := r.fs.Rename(r.inProgressPath, finalPath); err != nil {
		r.logger.Error("failed to finalize history file",
			zap.String("in_progress", r.inProgressPath),
			zap.String("final", finalPath),
			zap.Error(err),
		)
		return
	}

	r.logger.Info("finalized history file", zap.String("path", finalPath))
}
