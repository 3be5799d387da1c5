package services

import (
	"context"
)

// Provider is a backing service whose health gates readiness
type Provider interface {
	// Type returns the service type name
	Type() string

	// HealthCheck checks if the service is available
	HealthCheck(ctx context.Context) error

	// Close releases the provider's connection
	Close() error
}

// BaseProvider provides common functionality for providers
type BaseProvider struct {
	serviceType string
}

// Type returns the service type
func (p *BaseProvider) Type() string {
	return p.serviceType
}

// Pinger is anything that can report its own connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingProvider adapts a Pinger, such as a player state store, to Provider
type PingProvider struct {
	BaseProvider
	target Pinger
}

// NewPingProvider creates a provider that health checks target
func NewPingProvider(serviceType string, target Pinger) *PingProvider {
	return &PingProvider{BaseProvider: BaseProvider{serviceType: serviceType}, target: target}
}

// HealthCheck pings the target
func (p *PingProvider) HealthCheck(ctx context.Context) error {
	return p.target.Ping(ctx)
}

// Close is a no-op; the target is owned elsewhere
func (p *PingProvider) Close() error {
	return nil
}
