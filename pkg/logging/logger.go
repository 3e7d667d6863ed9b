// Package logging builds the logrus logger shared by the binaries and the
// live server, and routes library debug hooks into it.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/recera/pageview/pkg/frame"
	"github.com/recera/pageview/pkg/viewport"
)

// New creates a logger. Debug mode logs human readable text with full
// timestamps; otherwise entries are JSON. A nil out writes to stderr.
func New(debug bool, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	l := logrus.New()
	l.Out = out
	if debug {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}

// DebugFunc adapts l to the variadic debug hooks of the library packages
func DebugFunc(l logrus.FieldLogger) func(args ...interface{}) {
	return func(args ...interface{}) {
		l.Debug(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
	}
}

// EnableDebugHooks routes viewport and frame debug output to l when it logs
// at debug level, and clears the hooks otherwise.
func EnableDebugHooks(l *logrus.Logger) {
	if !l.IsLevelEnabled(logrus.DebugLevel) {
		viewport.SetDebugLog(nil)
		frame.SetDebugLog(nil)
		return
	}
	fn := DebugFunc(l)
	viewport.SetDebugLog(fn)
	frame.SetDebugLog(fn)
}
