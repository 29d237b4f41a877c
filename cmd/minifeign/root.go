package main

import (
	"context"
	"fmt"

	"mini-feign/config"
	"mini-feign/registry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	var cfgFile string

	root := &cobra.Command{
		Use:           "minifeign",
		Short:         "Declarative HTTP client and echo server for protobuf bodies",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, cfgFile)
			if err != nil {
				return err
			}
			logger, err := cfg.Log.NewLogger()
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (yaml, toml or json)")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.StringSlice("etcd", nil, "etcd endpoints; static instances are used when empty")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("registry.etcd", flags.Lookup("etcd"))

	root.AddCommand(newServeCmd(a), newSendCmd(a), newInspectCmd(a))
	return root
}

// openRegistry connects to etcd when endpoints are configured and otherwise
// fills a static registry for services from the config file.
func (a *app) openRegistry(ctx context.Context, services ...string) (registry.Registry, func() error, error) {
	if len(a.cfg.Registry.Etcd) > 0 {
		reg, err := registry.NewEtcdRegistry(a.cfg.Registry.Etcd, a.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect etcd: %w", err)
		}
		return reg, reg.Close, nil
	}

	reg := registry.NewStaticRegistry()
	for _, name := range services {
		for _, addr := range a.cfg.Registry.StaticAddrs(name) {
			if err := reg.Register(ctx, name, registry.ServiceInstance{Addr: addr, Weight: 1}, a.cfg.Registry.TTL); err != nil {
				return nil, nil, err
			}
		}
	}
	return reg, func() error { return nil }, nil
}
