// history-inspector reconstructs the ordered event sequence of a history file
// and prints it as JSON lines, one event per line.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hitesh22rana/historian/internal/histfile"
	"github.com/hitesh22rana/historian/internal/model"
	"github.com/hitesh22rana/historian/internal/pkg/storage"
)

const (
	// ExitOk and ExitError are the exit codes.
	ExitOk = iota
	// ExitError is the exit code for errors.
	ExitError
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <history-file-or-job-dir>\n", os.Args[0])
		return ExitError
	}

	fs := storage.NewLocal()
	path := os.Args[1]

	events, err := parse(fs, path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitError
	}

	encoder := json.NewEncoder(os.Stdout)
	for _, event := range events {
		if err := encoder.Encode(event); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return ExitError
		}
	}

	return ExitOk
}

func parse(fs storage.FS, path string) ([]*model.Event, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return histfile.ParseJobDir(fs, path)
	}

	return histfile.ParseEvents(fs, path)
}
