// Package logging configures the shared logrus logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a configured logger. Level comes from LOG_LEVEL, output
// is JSON for machine consumption.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(levelFromEnv())
	return logger
}

func levelFromEnv() logrus.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
