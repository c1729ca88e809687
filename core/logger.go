package core

// Logger is any leveled logger service.
// Error/Fatal args may carry an error and any objects giving context (e.g. the
// acting learner) for the backing service to report.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
