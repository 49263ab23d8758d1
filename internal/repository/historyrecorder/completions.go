package historyrecorder

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/hitesh22rana/historian/internal/histfile"
	"github.com/hitesh22rana/historian/internal/model"
	"github.com/hitesh22rana/historian/internal/pkg/clickhouse"
)

// ensureCompletionsTable creates the completion index table when it does not
// exist yet, so a fresh deployment needs no out-of-band migration.
func (r *Repository) ensureCompletionsTable(ctx context.Context) error {
	stmt := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            job_id String,
            user String,
            started_at Int64,
            completed_at Int64,
            status String,
            persisted_events UInt64,
            history_file String
        ) ENGINE = MergeTree()
        ORDER BY (job_id, started_at);
    `, clickhouse.TableJobCompletions)

	return r.ch.Exec(ctx, stmt)
}

// completionExists reports whether the job run is already indexed. Offsets are
// committed per record, so a crash between the insert and the commit redelivers
// the final event; the replayed insert is skipped instead of duplicated.
func (r *Repository) completionExists(ctx context.Context, meta model.JobMetadata) (bool, error) {
	stmt := fmt.Sprintf(`
        SELECT 1
        FROM %s
        WHERE job_id = ? AND started_at = ?
        LIMIT 1;
    `, clickhouse.TableJobCompletions)

	rows, err := r.ch.Query(ctx, stmt, meta.ID(), meta.StartedAt().UnixMilli())
	if err != nil {
		return false, err
	}
	//nolint:errcheck // Read-only cursor
	defer rows.Close()

	return rows.Next(), nil
}

// insertCompletion indexes one finished job run so completed jobs are
// queryable without scanning the history directory.
func (r *Repository) insertCompletion(ctx context.Context, meta model.JobMetadata, persisted uint64) error {
	ctx, span := r.tp.Start(ctx, "historyrecorder.closeStream.insertCompletion")
	defer span.End()

	stmt := fmt.Sprintf(`
        INSERT INTO %s
        (job_id, user, started_at, completed_at, status, persisted_events, history_file)
        VALUES (?, ?, ?, ?, ?, ?, ?);
    `, clickhouse.TableJobCompletions)

	row := &model.JobCompletionRecord{
		JobID:           meta.ID(),
		User:            meta.User(),
		StartedAt:       meta.StartedAt().UnixMilli(),
		CompletedAt:     meta.CompletedAt().UnixMilli(),
		Status:          meta.Status().ToString(),
		PersistedEvents: persisted,
		HistoryFile:     histfile.FileName(meta),
	}

	return r.ch.BatchInsert(
		ctx,
		stmt,
		func(batch driver.Batch) error {
			return batch.Append(
				row.JobID,
				row.User,
				row.StartedAt,
				row.CompletedAt,
				row.Status,
				row.PersistedEvents,
				row.HistoryFile,
			)
		},
	)
}
