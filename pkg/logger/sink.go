package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// StatusTimeLayout is the local-time stamp written in front of every status log line
const StatusTimeLayout = "2006-01-02 15:04:05"

// Sink receives user-facing status messages
type Sink interface {
	Record(message string)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(message string)

// Record calls f(message)
func (f SinkFunc) Record(message string) { f(message) }

// StatusLog writes status messages to stdout and, when configured, appends
// them to a log file with a "[YYYY-MM-DD HH:MM:SS]" prefix.
type StatusLog struct {
	logger zerolog.Logger
	file   *os.File
	now    func() time.Time
}

// NewStatusLog creates a sink writing plain lines to out. A non-empty path
// enables the stamped append-only copy.
func NewStatusLog(out io.Writer, path string) (*StatusLog, error) {
	writers := []io.Writer{plainWriter(out)}

	var file *os.File
	if path != "" {
		w, err := setupFileOutput(path)
		if err != nil {
			return nil, err
		}
		file = w.(*os.File)
		writers = append(writers, stampedWriter(file))
	}

	return &StatusLog{
		logger: zerolog.New(zerolog.MultiLevelWriter(writers...)),
		file:   file,
		now:    time.Now,
	}, nil
}

// Record writes one status line
func (s *StatusLog) Record(message string) {
	s.logger.Log().
		Str(zerolog.TimestampFieldName, s.now().Local().Format(StatusTimeLayout)).
		Msg(message)
}

// Close releases the log file, if any
func (s *StatusLog) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func plainWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       true,
		PartsOrder:    []string{zerolog.MessageFieldName},
		FormatMessage: formatStatusMessage,
	}
}

func stampedWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.MessageFieldName},
		FormatTimestamp: func(i interface{}) string {
			return fmt.Sprintf("[%v]", i)
		},
		FormatMessage: formatStatusMessage,
	}
}

func formatStatusMessage(i interface{}) string {
	if i == nil {
		return ""
	}
	return fmt.Sprintf("%v", i)
}
