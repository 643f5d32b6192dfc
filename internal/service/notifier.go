package service

// Notifier fans events out to the connected screens (the websocket hub in production)
type Notifier interface {
	Publish(payload map[string]interface{})
}

// publish is a no-op without a notifier so services stay usable from tools and tests
func publish(n Notifier, payload map[string]interface{}) {
	if n == nil {
		return
	}
	n.Publish(payload)
}
