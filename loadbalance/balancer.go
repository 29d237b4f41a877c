// Package loadbalance provides load balancing strategies for distributing
// HTTP requests across multiple service instances.
//
// Three strategies are implemented:
//   - RoundRobin:      Stateless services, equal-capacity instances
//   - WeightedRandom:  Heterogeneous instances (different CPU/memory)
//   - ConsistentHash:  Stateful services requiring cache affinity
package loadbalance

import "mini-feign/registry"

// Balancer is the interface for load balancing strategies.
// The client calls Pick() before each request to select a target instance.
type Balancer interface {
	// Pick selects one instance from the available list.
	// Called on every request, must be goroutine-safe.
	Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}

// KeyBalancer is implemented by strategies that route by a request key.
type KeyBalancer interface {
	Balancer
	PickKey(key string, instances []registry.ServiceInstance) (*registry.ServiceInstance, error)
}

// New returns the balancer registered under name, defaulting to round robin.
func New(name string) Balancer {
	switch name {
	case "WeightedRandom", "weighted_random", "weighted":
		return &WeightedRandomBalancer{}
	case "ConsistentHash", "consistent_hash", "hash":
		return NewConsistentHashBalancer()
	}
	return &RoundRobinBalancer{}
}
