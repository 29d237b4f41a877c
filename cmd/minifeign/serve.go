package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mini-feign/server"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Echo service over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("advertise", "", "address published to the registry")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("server.advertise", cmd.Flags().Lookup("advertise"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	reg, closeReg, err := a.openRegistry(ctx)
	if err != nil {
		return err
	}
	defer closeReg()

	svr := server.NewServer(
		server.WithLogger(a.logger),
		server.WithMaxBodyBytes(a.cfg.Server.MaxBodyBytes),
		server.WithRegistryTTL(a.cfg.Registry.TTL),
	)
	if err := svr.Register(&server.Echo{}); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- svr.Serve("tcp", a.cfg.Server.Addr, a.cfg.Server.Advertise, reg)
	}()

	select {
	case err := <-errCh:
		return err
	case <-svr.Ready():
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = svr.Shutdown(shutdownCtx)
	if serveErr := <-errCh; serveErr != nil {
		err = errors.Join(err, serveErr)
	}
	return err
}
