// Package server exposes Go methods as HTTP endpoints with content negotiation.
//
// Request processing pipeline:
//
//	POST /{Service}/{Method}
//	  → codec chosen by Content-Type decodes the body into *Args
//	  → reflect.Call(rcvr.Method, args, reply)
//	  → codec chosen by Accept (else the request's media type) encodes *Reply
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"mini-feign/codec"
	"mini-feign/registry"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes = 4 << 20

var ErrServerStarted = errors.New("server already started")

// Server is the HTTP server that registers services and handles incoming calls.
type Server struct {
	mu            sync.RWMutex
	serviceMap    map[string]*service // Registered services: "Echo" → *service
	codecs        []codec.Codec
	middlewares   []func(http.Handler) http.Handler
	httpServer    *http.Server
	listener      net.Listener
	serving       atomic.Bool // Set by the first Serve; a Server serves once
	shutdown      atomic.Bool // Set during shutdown so Serve returns nil
	registry      registry.Registry
	advertiseAddr string // Address registered in the registry (e.g., "127.0.0.1:8080")
	regCancel     context.CancelFunc
	maxBodyBytes  int64
	ttl           int64 // Registry lease in seconds
	logger        *zap.Logger
	ready         chan struct{}
}

type Option func(*Server)

func WithCodecs(codecs ...codec.Codec) Option {
	return func(s *Server) { s.codecs = codecs }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBodyBytes = n }
}

// WithRegistryTTL sets the lease, in seconds, of the registry entries written by Serve.
func WithRegistryTTL(seconds int64) Option {
	return func(s *Server) {
		if seconds > 0 {
			s.ttl = seconds
		}
	}
}

// NewServer creates a new server with an empty service map.
func NewServer(opts ...Option) *Server {
	s := &Server{
		serviceMap:   make(map[string]*service),
		codecs:       codec.Default(),
		maxBodyBytes: defaultMaxBodyBytes,
		ttl:          10,
		logger:       zap.NewNop(),
		ready:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register registers a service receiver (e.g., &Echo{}) with the server.
// The struct's exported methods that match the handler signature become endpoints.
func (s *Server) Register(rcvr any) error {
	svc, err := NewService(rcvr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.serviceMap[svc.name] = svc
	s.mu.Unlock()
	return nil
}

// Use registers an HTTP middleware. Middlewares are applied in the order they are added.
func (s *Server) Use(mw func(http.Handler) http.Handler) {
	s.middlewares = append(s.middlewares, mw)
}

// Handler returns the routing handler wrapped in the access log and registered middlewares.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{service}/{method}", s.handleCall)

	var h http.Handler = mux
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		h = s.middlewares[i](h)
	}
	return accessLog(s.logger, h)
}

// Serve listens on address, registers every service under advertiseAddr when reg
// is not nil, and serves until Shutdown.
func (s *Server) Serve(network, address string, advertiseAddr string, reg registry.Registry) error {
	if !s.serving.CompareAndSwap(false, true) {
		return ErrServerStarted
	}
	listener, err := net.Listen(network, address)
	if err != nil {
		s.serving.Store(false)
		return err
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	s.advertiseAddr = advertiseAddr
	if advertiseAddr == "" {
		s.advertiseAddr = listener.Addr().String()
	}
	if reg != nil {
		s.registry = reg
		ctx, cancel := context.WithCancel(context.Background())
		s.regCancel = cancel
		for _, name := range s.serviceNames() {
			// KeepAlive renews the lease until Shutdown cancels ctx
			if err := reg.Register(ctx, name, registry.ServiceInstance{Addr: s.advertiseAddr, Weight: 1}, s.ttl); err != nil {
				cancel()
				listener.Close()
				s.serving.Store(false)
				return fmt.Errorf("register %s: %w", name, err)
			}
		}
	}

	s.logger.Info("server listening", zap.String("addr", listener.Addr().String()), zap.String("advertise", s.advertiseAddr))
	close(s.ready)

	err = s.httpServer.Serve(listener)
	if s.shutdown.Load() && errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Ready is closed once Serve is accepting connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listen address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown performs graceful shutdown:
//  1. Deregister all services (clients stop routing to this server)
//  2. Set shutdown flag (so the listener error is recognized as intentional)
//  3. Stop accepting and wait for in-flight requests until ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.registry != nil {
		for _, name := range s.serviceNames() {
			err = multierr.Append(err, s.registry.Deregister(ctx, name, s.advertiseAddr))
		}
		s.regCancel()
	}

	s.shutdown.Store(true)
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("timeout waiting for ongoing requests to finish: %w", shutdownErr))
		}
	}
	return err
}

func (s *Server) serviceNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.serviceMap))
	for name := range s.serviceMap {
		names = append(names, name)
	}
	return names
}

func (s *Server) lookup(serviceName, methodName string) (*service, *methodType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.serviceMap[serviceName]
	if !ok {
		return nil, nil, false
	}
	m, ok := svc.method[methodName]
	return svc, m, ok
}
