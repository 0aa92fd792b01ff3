// Package logging wires logrus as the process-wide structured logger, with
// optional rotating file output and gin middleware for request logging,
// panic recovery, and request-ID propagation.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupBaseLogger configures the standard logger's level, formatter, and
// output. When logFile is non-empty, output is duplicated to a rotating
// file sink in addition to stderr.
func SetupBaseLogger(level, logFile string) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(parseLevel(level))

	out := io.Writer(os.Stderr)
	if strings.TrimSpace(logFile) != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stderr, rotator)
	}
	log.SetOutput(out)
}

func parseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}
