package kafka

const (
	// TopicJobHistory is the name of the Kafka topic for job lifecycle events.
	TopicJobHistory = "job_history"
)
