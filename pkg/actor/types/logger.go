package types

// Logger is the structured logging interface every runtime component takes.
// The default implementation in pkg/actor/definition wraps logrus; callers
// may plug in their own.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	// Named returns a child logger tagged with a component field, so log
	// lines from the mailbox, the sender, the receiver, etc. can be told
	// apart without threading a prefix string through every call site.
	Named(component string) Logger

	// With returns a child logger with the given structured fields
	// attached to every subsequent line (nid, pid, connection_id, ...).
	With(fields map[string]interface{}) Logger
}
