package main

import (
	"log/slog"
	"os"

	"treadlink/internal/record"
)

// newSampleWriter sets up the session sample sink based on flags and env vars.
// It returns the writer and a cleanup function to close any resources.
func newSampleWriter(printOnly bool, recordFile string, log *slog.Logger) (record.SampleWriter, func(), error) {
	cleanup := func() {}

	writer, err := baseSampleWriter(printOnly, log)
	if err != nil {
		return nil, nil, err
	}
	if recordFile == "" {
		return writer, cleanup, nil
	}

	fw, err := record.NewFileWriter(recordFile)
	if err != nil {
		return nil, nil, err
	}
	cleanup = func() { fw.Close() }
	return record.NewMultiWriter(writer, fw), cleanup, nil
}

// baseSampleWriter chooses GreptimeDB or STDOUT based on printOnly and env vars.
func baseSampleWriter(printOnly bool, log *slog.Logger) (record.SampleWriter, error) {
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		return &record.StdoutWriter{}, nil
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	return record.NewGreptimeWriter(endpoint, database, os.Getenv("GREPTIMEDB_TABLE"), log)
}
