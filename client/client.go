// Package client is the declarative HTTP client: it resolves a service through
// the registry and balancer, encodes the argument into a request template, runs
// the request through the middleware chain and decodes the reply.
//
//	Call("Echo.Say", args, reply)
//	  → body = Encoder.Encode(args), CallOptions
//	  → Registry.Discover("Echo") → Balancer.Pick → POST {instance}/Echo/Say
//	  → middleware chain → Transport.Do → Decoder.Decode(reply)
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mini-feign/codec"
	"mini-feign/encoder"
	"mini-feign/loadbalance"
	"mini-feign/middleware"
	"mini-feign/registry"
	"mini-feign/template"
	"mini-feign/transport"

	"go.uber.org/zap"
)

type Client struct {
	registry    registry.Registry // find service instance from registry
	balancer    loadbalance.Balancer
	encoder     *encoder.Encoder
	decoder     *encoder.Decoder
	transport   transport.Transport
	middlewares []middleware.Middleware
	handler     middleware.HandlerFunc // middleware(middleware(...(transport.Do)))
	options     template.Options
	hashHeader  string
	logger      *zap.Logger
}

type Option func(*Client)

func WithEncoder(e *encoder.Encoder) Option {
	return func(c *Client) { c.encoder = e }
}

func WithDecoder(d *encoder.Decoder) Option {
	return func(c *Client) { c.decoder = d }
}

func WithTransport(t transport.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithMiddleware appends middlewares; the first one added is the outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(c *Client) { c.middlewares = append(c.middlewares, mws...) }
}

func WithOptions(opts template.Options) Option {
	return func(c *Client) { c.options = opts }
}

// WithHashKeyHeader routes by the value of header when the balancer supports keys.
func WithHashKeyHeader(header string) Option {
	return func(c *Client) { c.hashHeader = header }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(reg registry.Registry, bal loadbalance.Balancer, opts ...Option) *Client {
	c := &Client{
		registry: reg,
		balancer: bal,
		options:  template.DefaultOptions(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.balancer == nil {
		c.balancer = &loadbalance.RoundRobinBalancer{}
	}
	if c.encoder == nil {
		c.encoder = encoder.New(encoder.WithLogger(c.logger))
	}
	if c.decoder == nil {
		c.decoder = encoder.NewDecoder(encoder.WithDecoderLogger(c.logger))
	}
	if c.transport == nil {
		c.transport = transport.NewHTTPTransport(nil)
	}

	// Build the middleware chain once, not per request
	c.handler = middleware.Chain(c.middlewares...)(func(ctx context.Context, req *template.Request) (*http.Response, error) {
		return c.transport.Do(ctx, req, c.options)
	})
	return c
}

// CallOption adjusts the request template of a single call after encoding.
type CallOption func(*template.RequestTemplate)

func WithHeader(key string, values ...string) CallOption {
	return func(t *template.RequestTemplate) { t.Header(key, values...) }
}

// WithoutCharset clears the body charset so the encoded bytes are sent unchanged.
func WithoutCharset() CallOption {
	return func(t *template.RequestTemplate) { t.Body(t.BodyBytes(), "") }
}

// Call invokes "Service.Method" as POST /Service/Method with args as the body.
func (c *Client) Call(ctx context.Context, serviceMethod string, args any, reply any, opts ...CallOption) error {
	split := strings.Split(serviceMethod, ".")
	if len(split) != 2 || split[0] == "" || split[1] == "" {
		return fmt.Errorf("invalid serviceMethod format: %v", serviceMethod)
	}

	tmpl := template.New().Method(http.MethodPost).Path("/" + split[0] + "/" + split[1])
	return c.Execute(ctx, split[0], tmpl, args, reply, opts...)
}

// Execute sends tmpl to an instance of serviceName. body, when non-nil, is encoded
// into the template first; reply, when non-nil, receives the decoded response.
func (c *Client) Execute(ctx context.Context, serviceName string, tmpl *template.RequestTemplate, body any, reply any, opts ...CallOption) error {
	if body != nil {
		if err := c.encoder.Encode(body, tmpl); err != nil {
			return err
		}
	}
	if reply != nil && tmpl.HeaderValue("Accept") == "" {
		tmpl.Header("Accept", acceptFor(tmpl))
	}
	for _, opt := range opts {
		opt(tmpl)
	}

	// The instance is picked last so a hash key set by a CallOption routes the call.
	instances, err := c.registry.Discover(ctx, serviceName)
	if err != nil {
		return err
	}
	instance, err := c.pick(tmpl, instances)
	if err != nil {
		return fmt.Errorf("%s: %w", serviceName, err)
	}
	tmpl.Target(instance.BaseURL())

	req, err := tmpl.Request()
	if err != nil {
		return err
	}

	resp, err := c.handler(ctx, req)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound && c.decoder.Decode404() {
			return c.decoder.Decode(resp, reply)
		}
		return newStatusError(req, resp)
	}
	return c.decoder.Decode(resp, reply)
}

func (c *Client) pick(tmpl *template.RequestTemplate, instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if c.hashHeader != "" {
		if kb, ok := c.balancer.(loadbalance.KeyBalancer); ok {
			return kb.PickKey(tmpl.HeaderValue(c.hashHeader), instances)
		}
	}
	return c.balancer.Pick(instances)
}

// acceptFor asks for replies in the same media type the request was sent in.
func acceptFor(tmpl *template.RequestTemplate) string {
	if mt := codec.MediaType(tmpl.HeaderValue("Content-Type")); mt != "" {
		return mt
	}
	return "*/*"
}

// Close releases idle connections held by the transport.
func (c *Client) Close() error {
	if closer, ok := c.transport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
