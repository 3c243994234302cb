package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger.  Output goes to stdout and,
// when file is not empty, to a size-rotated file as well.
func Setup(level, file string) {
	var out io.Writer = os.Stdout
	if file != "" {
		out = io.MultiWriter(os.Stdout, Rotating(file))
	}
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// Rotating returns a lumberjack writer with the retention used for every
// log file the service writes.
func Rotating(file string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 7,
		MaxAge:     7, // days
		Compress:   true,
	}
}

// NewFileLogger builds a standalone logger writing JSON lines to a rotating
// file.  The event consumer uses it for its audit trail.
func NewFileLogger(file string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(Rotating(file))
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	return l
}
