// Package registry describes where the instances of a named HTTP service live.
package registry

import (
	"context"
	"errors"
	"strings"
)

var ErrNoInstances = errors.New("no instances available")

type ServiceInstance struct {
	Addr    string // host:port or a full base URL
	Weight  int    // Weight for load balancing
	Version string
}

// BaseURL returns Addr as a URL, assuming plain http when no scheme is given.
func (i ServiceInstance) BaseURL() string {
	if strings.Contains(i.Addr, "://") {
		return strings.TrimRight(i.Addr, "/")
	}
	return "http://" + i.Addr
}

type Registry interface {
	Register(ctx context.Context, serviceName string, instance ServiceInstance, ttl int64) error
	Deregister(ctx context.Context, serviceName string, addr string) error
	Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error)
	// Watch emits the full instance list on every change until ctx is done.
	Watch(ctx context.Context, serviceName string) <-chan []ServiceInstance
}
