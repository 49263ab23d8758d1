package model

// JobHistoryEvent is the wire envelope consumed from the job history Kafka
// topic: the job identity needed to route the event plus the event itself.
type JobHistoryEvent struct {
	JobID string `json:"job_id"`
	User  string `json:"user"`
	Event *Event `json:"event"`
}

// JobCompletionRecord is the summary row indexed for a finished job.
type JobCompletionRecord struct {
	JobID           string
	User            string
	StartedAt       int64
	CompletedAt     int64
	Status          string
	PersistedEvents uint64
	HistoryFile     string
}
