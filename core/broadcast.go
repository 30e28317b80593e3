package core

//go:generate mockgen -source=broadcast.go -destination=mocks/broadcast.go -package=mocks

// Broadcaster publishes events to every connected realtime client.
// Emit is fire-and-forget: it must not block and gives no delivery guarantee.
type Broadcaster interface {
	Emit(event string, payload interface{})
}

type nopBroadcaster struct{}

func (nopBroadcaster) Emit(string, interface{}) {}

// NopBroadcaster drops every event.
var NopBroadcaster Broadcaster = nopBroadcaster{}
