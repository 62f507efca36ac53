// Package definition holds the default, replaceable collaborators the
// runtime needs but does not mandate: today, just the logger.
package definition

import (
	"os"

	"github.com/jabolina/actorkit/pkg/actor/types"
	"github.com/sirupsen/logrus"
)

// NewDefaultLogger builds the logger used when the caller does not supply
// its own types.Logger. It writes structured, leveled output to stderr
// through logrus rather than the bare stdlib `log` package, the way the
// rest of the retrieved pack logs (webitel-im-delivery-service wires
// otelslog on top of slog; the teacher itself carried logrus as an
// indirect dependency through prometheus/common/log).
func NewDefaultLogger() types.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return &defaultLogger{entry: logrus.NewEntry(l)}
}

// ToggleDebug flips the debug level the way the teacher's
// DefaultLogger.ToggleDebug did, for tests that want quieter output.
func ToggleDebug(l types.Logger, enabled bool) {
	dl, ok := l.(*defaultLogger)
	if !ok {
		return
	}
	if enabled {
		dl.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		dl.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

type defaultLogger struct {
	entry *logrus.Entry
}

func (d *defaultLogger) Debugf(format string, args ...interface{}) {
	d.entry.Debugf(format, args...)
}

func (d *defaultLogger) Infof(format string, args ...interface{}) {
	d.entry.Infof(format, args...)
}

func (d *defaultLogger) Warnf(format string, args ...interface{}) {
	d.entry.Warnf(format, args...)
}

func (d *defaultLogger) Errorf(format string, args ...interface{}) {
	d.entry.Errorf(format, args...)
}

func (d *defaultLogger) Fatalf(format string, args ...interface{}) {
	d.entry.Fatalf(format, args...)
}

func (d *defaultLogger) Named(component string) types.Logger {
	return &defaultLogger{entry: d.entry.WithField("component", component)}
}

func (d *defaultLogger) With(fields map[string]interface{}) types.Logger {
	return &defaultLogger{entry: d.entry.WithFields(fields)}
}
