// Package logger provides the two output channels used by igposts.
//
// Logger is a structured diagnostic logger backed by zerolog. It writes a
// colored console format to stderr and, when a file is configured, the raw
// JSON events to that file as well:
//
//	logger.Initialize(&cfg.Logging)
//	logger.WithField("username", "ar.guto").Info("Resolving account")
//
// Sink is the user-facing status channel. StatusLog prints every message on
// stdout and can append a timestamped copy to a log file:
//
//	status, err := logger.NewStatusLog(os.Stdout, "downloads/logs.log")
//	status.Record("Done!")
//	// logs.log: [2025-01-02 15:04:05] Done!
//
// NewTestLogger and NewRecordingSink capture output in memory for tests.
package logger
