package historyrecorder

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hitesh22rana/historian/internal/model"
	"github.com/hitesh22rana/historian/internal/pkg/clickhouse"
	loggerpkg "github.com/hitesh22rana/historian/internal/pkg/logger"
	"github.com/hitesh22rana/historian/internal/pkg/redis"
	"github.com/hitesh22rana/historian/internal/pkg/storage"
	svcpkg "github.com/hitesh22rana/historian/internal/pkg/svc"
	"github.com/hitesh22rana/historian/internal/queue"
	"github.com/hitesh22rana/historian/internal/recorder"
)

const (
	// completionRetries and completionRetryBackoff bound the completion
	// index insert attempts.
	completionRetries      = 3
	completionRetryBackoff = time.Second
)

// Config represents the repository constants configuration.
type Config struct {
	// HistoryDir is the base directory for per-job history files. Empty
	// disables persistence; recorders then run in discard mode.
	HistoryDir string
}

// Repository provides history recorder repository.
type Repository struct {
	tp   trace.Tracer
	cfg  *Config
	fs   storage.FS
	rdb  *redis.Store
	ch   *clickhouse.Client
	kfk  *kgo.Client
	retr *retrier.Retrier
}

// New creates a new history recorder repository.
func New(
	cfg *Config,
	fs storage.FS,
	rdb *redis.Store,
	ch *clickhouse.Client,
	kfk *kgo.Client,
) *Repository {
	return &Repository{
		tp:   otel.Tracer(svcpkg.Info().GetName()),
		cfg:  cfg,
		fs:   fs,
		rdb:  rdb,
		ch:   ch,
		kfk:  kfk,
		retr: retrier.New(retrier.ConstantBackoff(completionRetries, completionRetryBackoff), nil),
	}
}

// jobStream is the per-job recording pipeline: the shared queue producers
// would emit onto and the single recorder goroutine draining it.
type jobStream struct {
	queue  *queue.EventQueue
	rec    *recorder.Recorder
	jobDir string
	meta   model.JobMetadata
}

// Run starts the history recorder execution: it consumes job lifecycle events
// from Kafka and routes each to the recorder owning that job's history file.
func (r *Repository) Run(ctx context.Context) error {
	logger := loggerpkg.FromContext(ctx)

	if err := r.ensureCompletionsTable(ctx); err != nil {
		return status.Errorf(codes.Internal, "failed to ensure completions table: %v", err)
	}

	streams := make(map[string]*jobStream)
	defer r.stopAll(ctx, streams)

	for {
		// Check context cancellation before processing
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Continue processing
		}

		fetches := r.kfk.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return status.Error(codes.Canceled, "client closed")
		}

		for _, fetchErr := range fetches.Errors() {
			logger.Error("error while fetching records",
				zap.String("topic", fetchErr.Topic),
				zap.Int32("partition", fetchErr.Partition),
				zap.Error(fetchErr.Err),
			)
		}

		iter := fetches.RecordIter()
		for !iter.Done() {
			r.processRecord(ctx, streams, iter.Next())
		}
	}
}

// processRecord routes one consumed record to its job stream, creating the
// stream on the first event of a job and tearing it down on the final one.
func (r *Repository) processRecord(ctx context.Context, streams map[string]*jobStream, record *kgo.Record) {
	logger := loggerpkg.FromContext(ctx)

	ctx, span := r.tp.Start(ctx, "historyrecorder.Run.processRecord")
	defer span.End()

	var histEvent model.JobHistoryEvent
	if err := json.Unmarshal(record.Value, &histEvent); err != nil {
		logger.Error("failed to unmarshal record",
			zap.String("topic", record.Topic),
			zap.Int64("offset", record.Offset),
			zap.Int32("partition", record.Partition),
			zap.Error(err),
		)

		// Skip this record and commit it to avoid reprocessing
		r.commitRecord(ctx, record)
		return
	}

	if histEvent.JobID == "" || histEvent.Event == nil {
		logger.Error("discarding incomplete history event",
			zap.Int64("offset", record.Offset),
			zap.Int32("partition", record.Partition),
		)

		// Skip this record and commit it to avoid reprocessing
		r.commitRecord(ctx, record)
		return
	}

	stream, ok := streams[histEvent.JobID]
	if !ok {
		stream = r.openStream(ctx, &histEvent)
		streams[histEvent.JobID] = stream
	}

	stream.rec.Emit(histEvent.Event)

	// Publish the event to the job-specific Redis channel in a separate
	// goroutine. Live tailing is not critical, so the hot path never waits
	// on Redis.
	go func(evt *model.JobHistoryEvent) {
		data, err := json.Marshal(evt.Event)
		if err != nil {
			return // Skip this event
		}

		//nolint:errcheck // Ignore error as we are not blocking on Redis publish
		r.rdb.Publish(context.WithoutCancel(ctx), redis.GetJobHistoryChannel(evt.JobID), data)
	}(&histEvent)

	if histEvent.Event.Type == model.EventTypeApplicationFinished {
		r.closeStream(ctx, stream, &histEvent)
		delete(streams, histEvent.JobID)
	}

	// Autocommit is disabled; the offset moves only once the event has been
	// handed to its recorder, so a crash replays the event instead of losing it.
	r.commitRecord(ctx, record)
}

// commitRecord marks one consumed record as processed. Commit failures are
// logged and absorbed; the record is then redelivered and reprocessed.
func (r *Repository) commitRecord(ctx context.Context, record *kgo.Record) {
	if err := r.kfk.CommitRecords(ctx, record); err != nil {
		loggerpkg.FromContext(ctx).Error("failed to commit record",
			zap.String("topic", record.Topic),
			zap.Int64("offset", record.Offset),
			zap.Int32("partition", record.Partition),
			zap.Error(err),
		)
	}
}

// openStream creates the queue and recorder for a newly seen job and starts
// recording into its in-progress history file.
func (r *Repository) openStream(ctx context.Context, histEvent *model.JobHistoryEvent) *jobStream {
	meta := model.NewJobMetadataBuilder().
		WithID(histEvent.JobID).
		WithUser(histEvent.User).
		WithStartedAt(histEvent.Event.Timestamp).
		Build()

	jobDir := ""
	if r.cfg.HistoryDir != "" {
		jobDir = filepath.Join(r.cfg.HistoryDir, histEvent.JobID)
	}

	q := queue.New()
	rec := recorder.New(ctx, r.fs, q)
	rec.SetUp(jobDir, meta)
	rec.Start()

	loggerpkg.FromContext(ctx).Info("opened history stream",
		zap.String("job_id", histEvent.JobID),
		zap.String("job_dir", jobDir),
	)

	return &jobStream{
		queue:  q,
		rec:    rec,
		jobDir: jobDir,
		meta:   meta,
	}
}

// closeStream finalizes a finished job: stop and join the recorder, then index
// the completion. The index insert is retried and best effort; its failure
// never blocks the recorder shutdown, the history file is already final.
func (r *Repository) closeStream(ctx context.Context, stream *jobStream, histEvent *model.JobHistoryEvent) {
	logger := loggerpkg.FromContext(ctx)

	outcome := model.JobStatusSucceeded
	if finished, ok := histEvent.Event.Payload.(model.ApplicationFinished); ok && finished.Status != "" {
		outcome = model.JobStatus(finished.Status)
	}

	finalMeta := model.NewJobMetadataBuilder().
		WithID(stream.meta.ID()).
		WithUser(stream.meta.User()).
		WithStartedAt(stream.meta.StartedAt()).
		WithCompletedAt(histEvent.Event.Timestamp).
		WithStatus(outcome).
		Build()

	stream.rec.Stop(stream.jobDir, finalMeta)
	stream.rec.Join()

	if err := r.retr.Run(func() error {
		insertCtx := context.WithoutCancel(ctx)

		exists, err := r.completionExists(insertCtx, finalMeta)
		if err != nil {
			return err
		}
		if exists {
			// Redelivered final event; the run is already indexed.
			return nil
		}

		return r.insertCompletion(insertCtx, finalMeta, stream.rec.Persisted())
	}); err != nil {
		logger.Error("failed to index job completion",
			zap.String("job_id", finalMeta.ID()),
			zap.Error(err),
		)
	}

	logger.Info("closed history stream",
		zap.String("job_id", finalMeta.ID()),
		zap.String("status", finalMeta.Status().ToString()),
		zap.Uint64("persisted_events", stream.rec.Persisted()),
	)
}

// stopAll shuts down every in-flight stream. Jobs still running keep their
// in-progress file name; a later run records their remaining events anew.
func (r *Repository) stopAll(ctx context.Context, streams map[string]*jobStream) {
	logger := loggerpkg.FromContext(ctx)

	var g errgroup.Group
	for jobID, stream := range streams {
		g.Go(func() error {
			stream.rec.Stop(stream.jobDir, stream.meta)
			stream.rec.Join()

			logger.Info("stopped in-flight history stream", zap.String("job_id", jobID))
			return nil
		})
	}

	//nolint:errcheck // Stream shutdown never reports errors
	g.Wait()
}
