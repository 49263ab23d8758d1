package histfile

import (
	"fmt"
	"strings"

	"github.com/hitesh22rana/historian/internal/model"
)

const (
	// Suffix is the extension of a finalized history file.
	Suffix = ".jhist"
	// InProgressSuffix is the extension of a history file whose job is still running.
	InProgressSuffix = ".jhist.inprogress"
)

// FileName derives the history file name for the given job metadata. It is a
// pure function of its inputs: before the job outcome is known it yields the
// in-progress form, afterwards the final form.
//
//	<id>-<startedMillis>-<user>.jhist.inprogress
//	<id>-<startedMillis>-<completedMillis>-<user>-<status>.jhist
func FileName(meta model.JobMetadata) string {
	if !meta.Completed() {
		return fmt.Sprintf("%s-%d-%s%s",
			meta.ID(),
			meta.StartedAt().UnixMilli(),
			meta.User(),
			InProgressSuffix,
		)
	}

	return fmt.Sprintf("%s-%d-%d-%s-%s%s",
		meta.ID(),
		meta.StartedAt().UnixMilli(),
		meta.CompletedAt().UnixMilli(),
		meta.User(),
		meta.Status().ToString(),
		Suffix,
	)
}

// IsInProgress reports whether name is an in-progress history file name.
func IsInProgress(name string) bool {
	return strings.HasSuffix(name, InProgressSuffix)
}

// IsHistoryFile reports whether name is a history file name, finalized or not.
func IsHistoryFile(name string) bool {
	return strings.HasSuffix(name, Suffix) || strings.HasSuffix(name, InProgressSuffix)
}
