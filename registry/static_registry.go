package registry

import (
	"context"
	"sync"
)

// StaticRegistry keeps instances in memory. It serves fixed deployments
// configured up front and tests that should not depend on etcd.
// TTLs are ignored.
type StaticRegistry struct {
	mu        sync.RWMutex
	instances map[string][]ServiceInstance
	watchers  map[string][]chan []ServiceInstance
}

func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{
		instances: make(map[string][]ServiceInstance),
		watchers:  make(map[string][]chan []ServiceInstance),
	}
}

// Register adds instance, replacing any earlier entry with the same address.
func (s *StaticRegistry) Register(ctx context.Context, serviceName string, instance ServiceInstance, ttl int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	insts := s.instances[serviceName]
	for i, inst := range insts {
		if inst.Addr == instance.Addr {
			insts[i] = instance
			s.notifyLocked(serviceName)
			return nil
		}
	}
	s.instances[serviceName] = append(insts, instance)
	s.notifyLocked(serviceName)
	return nil
}

func (s *StaticRegistry) Deregister(ctx context.Context, serviceName string, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	insts := s.instances[serviceName]
	for i, inst := range insts {
		if inst.Addr == addr {
			s.instances[serviceName] = append(insts[:i:i], insts[i+1:]...)
			s.notifyLocked(serviceName)
			break
		}
	}
	return nil
}

func (s *StaticRegistry) Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ServiceInstance(nil), s.instances[serviceName]...), nil
}

func (s *StaticRegistry) Watch(ctx context.Context, serviceName string) <-chan []ServiceInstance {
	ch := make(chan []ServiceInstance, 1)

	s.mu.Lock()
	s.watchers[serviceName] = append(s.watchers[serviceName], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		ws := s.watchers[serviceName]
		for i, w := range ws {
			if w == ch {
				s.watchers[serviceName] = append(ws[:i:i], ws[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch
}

// notifyLocked hands every watcher the latest list, dropping a stale pending one.
func (s *StaticRegistry) notifyLocked(serviceName string) {
	snapshot := append([]ServiceInstance(nil), s.instances[serviceName]...)
	for _, ch := range s.watchers[serviceName] {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}
