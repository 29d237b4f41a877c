// Package transport also provides a small pool of *http.Client values.
//
// Each distinct set of request Options needs its own client, because timeouts and
// the redirect policy live on the client and its transport. Clients are created
// lazily, reused for every later request with the same options, and share their
// idle connection pools across goroutines.
package transport

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"mini-feign/template"
)

var ErrPoolExhausted = errors.New("http client pool exhausted")

// Pool caches one *http.Client per Options value.
type Pool struct {
	mu         sync.Mutex
	clients    map[template.Options]*http.Client
	maxClients int                                 // Maximum number of distinct option sets
	factory    func(template.Options) *http.Client // Client factory function
}

// NewPool creates a pool holding at most maxClients clients. A nil factory uses NewHTTPClient.
func NewPool(maxClients int, factory func(template.Options) *http.Client) *Pool {
	if factory == nil {
		factory = NewHTTPClient
	}
	return &Pool{
		clients:    make(map[template.Options]*http.Client),
		maxClients: maxClients,
		factory:    factory,
	}
}

// Get returns the client for opts, creating it when the pool still has room.
func (p *Pool) Get(opts template.Options) (*http.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[opts]; ok {
		return c, nil
	}
	if p.maxClients > 0 && len(p.clients) >= p.maxClients {
		return nil, ErrPoolExhausted
	}
	c := p.factory(opts)
	p.clients[opts] = c
	return c, nil
}

// Len reports how many clients have been created.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// Close drops every client and closes their idle connections.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for opts, c := range p.clients {
		c.CloseIdleConnections()
		delete(p.clients, opts)
	}
	return nil
}

// NewHTTPClient builds a client whose dialer honors ConnectTimeout and whose
// transport waits at most ReadTimeout for response headers.
func NewHTTPClient(opts template.Options) *http.Client {
	dialer := &net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: opts.ReadTimeout,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
	}
	c := &http.Client{Transport: tr}
	if !opts.FollowRedirects {
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c
}
