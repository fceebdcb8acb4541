// Package logger configures the application-wide logrus logger.
package logger

import (
	"github.com/sirupsen/logrus"

	"freelance/internal/config"
)

// New creates a configured logger. Unknown levels fall back to info.
func New(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
