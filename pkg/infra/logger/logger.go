package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the hook logger. Output goes to stderr by default:
// stdout belongs to the hook response protocol and must stay clean.
func NewLogger(level string, logFile string) *logrus.Logger {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		parsedLevel = logrus.InfoLevel
	}
	logger.SetLevel(parsedLevel)

	logger.SetOutput(os.Stderr)

	if logFile != "" {
		logFile = filepath.Clean(logFile)
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			logger.WithError(err).Warn("failed to open log file, keeping stderr")
		} else {
			logger.SetOutput(file)
		}
	}

	return logger
}
