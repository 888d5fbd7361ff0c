package push

import (
	"context"
	"log"
)

// Gateway is the push-delivery boundary. Delivery mechanics belong to the
// platform service behind the implementation.
type Gateway interface {
	Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}

// ConsoleGateway logs pushes instead of delivering them. Used in development
// and as the default when no provider is configured.
type ConsoleGateway struct{}

// NewConsoleGateway creates a console gateway.
func NewConsoleGateway() *ConsoleGateway {
	return &ConsoleGateway{}
}

// Send logs the push.
func (g *ConsoleGateway) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	log.Printf("push[console] to %s: %s / %s %v", deviceToken, title, body, data)
	return nil
}
