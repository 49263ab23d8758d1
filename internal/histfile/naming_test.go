package histfile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hitesh22rana/historian/internal/histfile"
	"github.com/hitesh22rana/historian/internal/model"
)

func TestFileName(t *testing.T) {
	started := time.UnixMilli(1700000000000).UTC()
	completed := time.UnixMilli(1700000060000).UTC()

	tests := []struct {
		name string
		meta model.JobMetadata
		want string
	}{
		{
			name: "in progress",
			meta: model.NewJobMetadataBuilder().
				WithID("app123").
				WithUser("alice").
				WithStartedAt(started).
				Build(),
			want: "app123-1700000000000-alice.jhist.inprogress",
		},
		{
			name: "finalized",
			meta: model.NewJobMetadataBuilder().
				WithID("app123").
				WithUser("alice").
				WithStartedAt(started).
				WithCompletedAt(completed).
				WithStatus(model.JobStatusSucceeded).
				Build(),
			want: "app123-1700000000000-1700000060000-alice-SUCCEEDED.jhist",
		},
		{
			name: "completed time without status stays in progress",
			meta: model.NewJobMetadataBuilder().
				WithID("app123").
				WithUser("alice").
				WithStartedAt(started).
				WithCompletedAt(completed).
				Build(),
			want: "app123-1700000000000-alice.jhist.inprogress",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, histfile.FileName(tt.meta))
			// Pure function: re-deriving from the same metadata yields
			// the same name.
			assert.Equal(t, histfile.FileName(tt.meta), histfile.FileName(tt.meta))
		})
	}
}

func TestIsInProgress(t *testing.T) {
	assert.True(t, histfile.IsInProgress("app123-1-alice.jhist.inprogress"))
	assert.False(t, histfile.IsInProgress("app123-1-2-alice-SUCCEEDED.jhist"))
}

func TestIsHistoryFile(t *testing.T) {
	assert.True(t, histfile.IsHistoryFile("app123-1-alice.jhist.inprogress"))
	assert.True(t, histfile.IsHistoryFile("app123-1-2-alice-SUCCEEDED.jhist"))
	assert.False(t, histfile.IsHistoryFile("app123.log"))
}
