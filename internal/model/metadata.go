package model

import "time"

// JobStatus represents the terminal outcome of a job.
type JobStatus string

// Job statuses. An empty status means the outcome is not yet known.
const (
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusKilled    JobStatus = "KILLED"
)

// ToString converts the JobStatus to its string representation.
func (s JobStatus) ToString() string {
	return string(s)
}

// JobMetadata carries the identity and timing of one job run. It is used only
// to derive history file names and the completion index row; it is never
// written into the event stream itself. Two instances exist over a recorder's
// lifetime: the pre-completion one passed at setup and the post-completion one
// passed at stop.
type JobMetadata struct {
	id          string
	user        string
	startedAt   time.Time
	completedAt time.Time
	status      JobStatus
}

// ID returns the job id.
func (m JobMetadata) ID() string { return m.id }

// User returns the submitting user.
func (m JobMetadata) User() string { return m.user }

// StartedAt returns the job start time; zero if unknown.
func (m JobMetadata) StartedAt() time.Time { return m.startedAt }

// CompletedAt returns the job completion time; zero if the job is still running.
func (m JobMetadata) CompletedAt() time.Time { return m.completedAt }

// Status returns the job outcome; empty while the job is still running.
func (m JobMetadata) Status() JobStatus { return m.status }

// Completed reports whether the terminal outcome of the job is known.
func (m JobMetadata) Completed() bool {
	return m.status != "" && !m.completedAt.IsZero()
}

// JobMetadataBuilder builds an immutable JobMetadata.
type JobMetadataBuilder struct {
	meta JobMetadata
}

// NewJobMetadataBuilder creates a new builder.
func NewJobMetadataBuilder() *JobMetadataBuilder {
	return &JobMetadataBuilder{}
}

// WithID sets the job id.
func (b *JobMetadataBuilder) WithID(id string) *JobMetadataBuilder {
	b.meta.id = id
	return b
}

// WithUser sets the submitting user.
func (b *JobMetadataBuilder) WithUser(user string) *JobMetadataBuilder {
	b.meta.user = user
	return b
}

// WithStartedAt sets the job start time.
func (b *JobMetadataBuilder) WithStartedAt(t time.Time) *JobMetadataBuilder {
	b.meta.startedAt = t
	return b
}

// WithCompletedAt sets the job completion time.
func (b *JobMetadataBuilder) WithCompletedAt(t time.Time) *JobMetadataBuilder {
	b.meta.completedAt = t
	return b
}

// WithStatus sets the job outcome.
func (b *JobMetadataBuilder) WithStatus(status JobStatus) *JobMetadataBuilder {
	b.meta.status = status
	return b
}

// Build returns the immutable metadata value.
func (b *JobMetadataBuilder) Build() JobMetadata {
	return b.meta
}
