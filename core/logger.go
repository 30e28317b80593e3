package core

// Logger is any service that can log messages.
// args may hold errors, maps of extra data and the request user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Observer is notified of every resource operation, eg. for metrics.
type Observer interface {
	ObserveOperation(resource, operation string, err error)
	ObserveBroadcast(event string)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string, error) {}
func (nopObserver) ObserveBroadcast(string)                {}

// NopObserver discards all observations.
var NopObserver Observer = nopObserver{}
