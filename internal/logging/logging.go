// Package logging builds the process logger. Output always goes to the given
// writer (stderr in practice) since stdout carries the MCP stream.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

type Options struct {
	Verbose bool
	Format  string // "text" or "json"
}

func New(w io.Writer, opts Options) (*log.Logger, error) {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "dialogflow-cx",
		Level:           log.InfoLevel,
	})

	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	switch opts.Format {
	case "", "text":
		logger.SetFormatter(log.TextFormatter)
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
