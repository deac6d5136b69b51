package core

// Logger is any leveled logger service.
// Extra args are attached to the report (errors, maps, offline.QueuedAction).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
