package config

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseLogLevel accepts logrus level names; empty means info.
func ParseLogLevel(s string) (logrus.Level, error) {
	if s == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(strings.ToLower(s))
}

func NewLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
		TimestampFormat:  "15:04:05.000",
	})
	return log
}
