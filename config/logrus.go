package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.InfoLevel)
	logg.SetOutput(os.Stderr)
}

// SetLogLevel applies a textual level such as "debug" or "warn". Unknown or
// empty values leave the current level untouched.
func SetLogLevel(level string) {
	level = strings.TrimSpace(level)
	if level == "" {
		return
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logg.SetLevel(lvl)
	}
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	if logger == nil || err == nil {
		return
	}
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
