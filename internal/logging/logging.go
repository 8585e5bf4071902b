// Package logging wraps logrus with rotated file output so every component
// logs structured fields instead of interpolated strings.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a thin alias so call sites depend on this package, not logrus
// directly, keeping the backend swappable.
type Logger = logrus.Entry

// New builds a logger that writes structured JSON to stdout and, when
// logFile is set, to a rotated file as well, tagged with the given
// component name.
func New(component, logFile string) *Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.InfoLevel)

	var out io.Writer = os.Stdout
	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
	}
	base.SetOutput(out)

	return base.WithField("component", component)
}
