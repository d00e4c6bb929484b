package events

import (
	evbus "github.com/asaskevich/EventBus"
)

// Bus is a thin wrapper over the in-process event bus used to fan domain
// events out to listeners inside the api process (the outward-facing feed
// goes through the outbox instead).
type Bus struct {
	bus evbus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: evbus.New()}
}

func (b *Bus) Publish(topic string, payload interface{}) {
	b.bus.Publish(topic, payload)
}

func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.SubscribeAsync(topic, fn, false)
}

func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	return b.bus.Unsubscribe(topic, fn)
}
