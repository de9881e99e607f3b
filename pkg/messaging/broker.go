package messaging

import (
	"context"
)

// Publisher publishes a JSON-encodable message on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Broker defines the interface for message brokers
type Broker interface {
	Publisher
	Ping(ctx context.Context) error
	Close() error
}

// NopBroker discards every message. It is used when no broker is configured.
type NopBroker struct{}

func (NopBroker) Publish(context.Context, string, interface{}) error { return nil }
func (NopBroker) Ping(context.Context) error                         { return nil }
func (NopBroker) Close() error                                       { return nil }
