package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mini-feign/client"
	"mini-feign/codec"
	"mini-feign/encoder"
	"mini-feign/loadbalance"
	"mini-feign/message"
	"mini-feign/middleware"
	"mini-feign/registry"
	"mini-feign/template"
	"mini-feign/transport"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type sendFlags struct {
	method    string
	targets   []string
	id        int32
	msg       string
	noCharset bool
	hashKey   string
}

func newSendCmd(a *app) *cobra.Command {
	f := &sendFlags{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "POST a message to a service and print the reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.send(cmd, f)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.method, "method", "Echo.Say", "Service.Method to call")
	flags.StringSliceVar(&f.targets, "target", nil, "instance addresses, bypassing the configured registry")
	flags.Int32Var(&f.id, "id", 1000000, "message id")
	flags.StringVar(&f.msg, "msg", "", "message text")
	flags.BoolVar(&f.noCharset, "no-charset", false, "send the encoded bytes without a charset")
	flags.StringVar(&f.hashKey, "hash-key", "", "value of the hash key header for consistent hashing")
	flags.String("codec", "protobuf", "request codec: protobuf or json")
	flags.Bool("binary-safe", false, "never attach a charset to binary bodies")
	_ = a.v.BindPFlag("client.codec", flags.Lookup("codec"))
	_ = a.v.BindPFlag("client.binary_safe_charset", flags.Lookup("binary-safe"))
	return cmd
}

func (a *app) send(cmd *cobra.Command, f *sendFlags) error {
	ctx := cmd.Context()
	serviceName, methodName, ok := strings.Cut(f.method, ".")
	if !ok || serviceName == "" || methodName == "" {
		return fmt.Errorf("invalid method %q, want Service.Method", f.method)
	}

	if f.hashKey != "" && a.cfg.Client.HashKeyHeader == "" {
		return errors.New("--hash-key needs client.hash_key_header to be configured")
	}

	codecType := a.cfg.Client.CodecType()
	if codecType != codec.CodecTypeProtobuf && codecType != codec.CodecTypeJSON {
		return fmt.Errorf("codec %s cannot carry a message request", codecType)
	}

	var (
		reg      registry.Registry
		closeReg = func() error { return nil }
		err      error
	)
	if len(f.targets) > 0 {
		static := registry.NewStaticRegistry()
		for _, addr := range f.targets {
			_ = static.Register(ctx, serviceName, registry.ServiceInstance{Addr: addr, Weight: 1}, 0)
		}
		reg = static
	} else if reg, closeReg, err = a.openRegistry(ctx, serviceName); err != nil {
		return err
	}
	defer closeReg()

	cli := a.newClient(reg)
	defer cli.Close()

	tmpl := template.New().
		Method(http.MethodPost).
		Path("/"+serviceName+"/"+methodName).
		Header("Content-Type", codec.GetCodec(codecType).ContentType())

	var opts []client.CallOption
	if f.noCharset {
		opts = append(opts, client.WithoutCharset())
	}
	if f.hashKey != "" {
		opts = append(opts, client.WithHeader(a.cfg.Client.HashKeyHeader, f.hashKey))
	}

	args := &message.Request{ID: f.id, Msg: f.msg}
	reply := &message.Reply{}
	if err := cli.Execute(ctx, serviceName, tmpl, args, reply, opts...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "id=%d length=%d msg=%q\n", reply.ID, reply.Length, reply.Msg)
	return nil
}

// newClient assembles a client from the loaded config.
func (a *app) newClient(reg registry.Registry) *client.Client {
	cc := a.cfg.Client

	encOpts := []encoder.Option{encoder.WithLogger(a.logger)}
	if cc.Charset != "" {
		encOpts = append(encOpts, encoder.WithCharset(cc.Charset))
	}
	if cc.BinarySafeCharset {
		encOpts = append(encOpts, encoder.WithBinarySafeCharset())
	}

	mws := []middleware.Middleware{middleware.LoggingMiddleware(a.logger)}
	if cc.RateLimit > 0 {
		mws = append(mws, middleware.RateLimitWaitMiddleware(cc.RateLimit, cc.RateBurst))
	}
	if cc.Retries > 0 {
		mws = append(mws, middleware.RetryMiddleware(cc.Retries, cc.RetryBackoff, a.logger))
	}
	if cc.Timeout > 0 {
		mws = append(mws, middleware.TimeOutMiddleware(cc.Timeout))
	}

	a.logger.Debug("client configured",
		zap.String("balancer", cc.Balancer),
		zap.Bool("binarySafeCharset", cc.BinarySafeCharset),
		zap.Int("middlewares", len(mws)),
	)

	return client.NewClient(reg, loadbalance.New(cc.Balancer),
		client.WithEncoder(encoder.New(encOpts...)),
		client.WithDecoder(encoder.NewDecoder(encoder.WithDecoderLogger(a.logger))),
		client.WithTransport(transport.NewHTTPTransport(transport.NewPool(cc.MaxClients, nil))),
		client.WithMiddleware(mws...),
		client.WithOptions(cc.Options()),
		client.WithHashKeyHeader(cc.HashKeyHeader),
		client.WithLogger(a.logger),
	)
}
