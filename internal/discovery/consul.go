// Package discovery registers the API server with Consul.
package discovery

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/consul/api"
)

// Registration describes the service instance.
type Registration struct {
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string
}

// HealthURL is the HTTP check Consul polls.
func (r Registration) HealthURL() string {
	return fmt.Sprintf("http://%s:%d/health", r.Address, r.Port)
}

// Registry wraps a Consul agent client.
type Registry struct {
	client *api.Client
	reg    Registration
	log    *slog.Logger
}

// NewRegistry creates a client for the agent at addr.
func NewRegistry(addr string, reg Registration, log *slog.Logger) (*Registry, error) {
	cfg := api.DefaultConfig()
	cfg.Address = addr
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Registry{client: client, reg: reg, log: log}, nil
}

func (r *Registry) registration() *api.AgentServiceRegistration {
	return &api.AgentServiceRegistration{
		ID:      r.reg.ID,
		Name:    r.reg.Name,
		Port:    r.reg.Port,
		Address: r.reg.Address,
		Tags:    r.reg.Tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           r.reg.HealthURL(),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}

// Register adds the service to the local agent.
func (r *Registry) Register() error {
	if err := r.client.Agent().ServiceRegister(r.registration()); err != nil {
		return fmt.Errorf("register with consul: %w", err)
	}
	r.log.Info("registered with consul", "id", r.reg.ID, "name", r.reg.Name)
	return nil
}

// Deregister removes the service.
func (r *Registry) Deregister() error {
	if err := r.client.Agent().ServiceDeregister(r.reg.ID); err != nil {
		return fmt.Errorf("deregister from consul: %w", err)
	}
	return nil
}
