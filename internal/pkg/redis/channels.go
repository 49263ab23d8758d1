package redis

import "fmt"

const (
	// ChannelJobHistoryPrefix is the prefix for job-specific history channels.
	ChannelJobHistoryPrefix = "job_history:"
)

// GetJobHistoryChannel returns the job-specific channel name for streaming
// lifecycle events of an in-progress job.
func GetJobHistoryChannel(jobID string) string {
	return fmt.Sprintf("%s%s", ChannelJobHistoryPrefix, jobID)
}
