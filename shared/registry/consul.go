// Package registry registers services with a Consul agent for discovery.
package registry

import (
	"fmt"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Service describes a service instance to register.
type Service struct {
	ID      string
	Name    string
	Address string

	// HealthPort is the port serving the gRPC health checking protocol.
	HealthPort int
}

// ConsulRegistrar registers and deregisters services with a Consul agent.
type ConsulRegistrar struct {
	client *api.Client
	logger *zerolog.Logger
}

// NewConsulRegistrar creates a registrar talking to the agent at the given
// address.
func NewConsulRegistrar(address string, logger *zerolog.Logger) (*ConsulRegistrar, error) {
	client, err := api.NewClient(&api.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulRegistrar{
		client: client,
		logger: logger,
	}, nil
}

// Register registers the service with a gRPC health check.
func (r *ConsulRegistrar) Register(svc Service) error {
	registration := &api.AgentServiceRegistration{
		ID:      svc.ID,
		Name:    svc.Name,
		Address: svc.Address,
		Port:    svc.HealthPort,
		Check: &api.AgentServiceCheck{
			GRPC:                           fmt.Sprintf("%s:%d", svc.Address, svc.HealthPort),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := r.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service %q: %w", svc.Name, err)
	}

	r.logger.Info().Str("service", svc.Name).Str("id", svc.ID).Msg("registered with consul")

	return nil
}

// Deregister removes the service instance from the agent.
func (r *ConsulRegistrar) Deregister(serviceID string) error {
	if err := r.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister service %q: %w", serviceID, err)
	}

	return nil
}
