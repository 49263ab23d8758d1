package histfile

import (
	"bufio"
	"encoding/json"
	"path/filepath"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hitesh22rana/historian/internal/model"
	"github.com/hitesh22rana/historian/internal/pkg/storage"
)

// maxRecordSize bounds a single encoded event record.
const maxRecordSize = 1 << 20

// ParseEvents decodes the history file at path back into its ordered event
// sequence. A truncated trailing record, as left behind by a crashed
// in-progress writer, is tolerated and simply not returned; a malformed record
// in the middle of the file is an error.
func ParseEvents(fs storage.FS, path string) ([]*model.Event, error) {
	rc, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Read-only stream
	defer rc.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to read history file: %v", err)
	}

	events := make([]*model.Event, 0, len(lines))
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}

		var event model.Event
		if err := json.Unmarshal(line, &event); err != nil {
			// Partially written tail of an in-progress file.
			if i == len(lines)-1 {
				break
			}
			return nil, status.Errorf(codes.DataLoss, "malformed event record at line %d: %v", i+1, err)
		}

		events = append(events, &event)
	}

	return events, nil
}

// ParseJobDir locates the history file inside jobDir and parses it. Exactly
// one history file exists per job run; when both an in-progress and a
// finalized file are somehow present, the finalized one wins.
func ParseJobDir(fs storage.FS, jobDir string) ([]*model.Event, error) {
	names, err := fs.List(jobDir)
	if err != nil {
		return nil, err
	}

	histFile := ""
	for _, name := range names {
		if !IsHistoryFile(name) {
			continue
		}
		if histFile == "" || IsInProgress(histFile) {
			histFile = name
		}
	}

	if histFile == "" {
		return nil, status.Errorf(codes.NotFound, "no history file found in %s", jobDir)
	}

	return ParseEvents(fs, filepath.Join(jobDir, histFile))
}
