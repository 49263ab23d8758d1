package clickhouse

const (
	// TableJobCompletions is the table indexing finished job runs.
	TableJobCompletions = "job_completions"
)
