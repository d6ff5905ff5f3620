package cmd

import (
	"fmt"

	"github.com/fioncat/gbrowse/browse"
	"github.com/fioncat/gbrowse/handler"
	"github.com/fioncat/gbrowse/types"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type Options struct {
	Config *types.Config

	Resolver *browse.Resolver
	Registry *handler.Registry
}

func buildCommand(cmd *cobra.Command, action func(opts *Options, args []string) error) {
	cmd.RunE = func(_ *cobra.Command, args []string) error {
		opts, err := loadOptions()
		if err != nil {
			return err
		}
		return action(opts, args)
	}
}

func loadOptions() (*Options, error) {
	cfg, err := types.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.Debugf("The config value is: %+v", cfg)

	mounts, err := cfg.Mounts()
	if err != nil {
		return nil, fmt.Errorf("resolve mounts: %w", err)
	}
	browseRoot, err := cfg.BrowseRootPath()
	if err != nil {
		return nil, fmt.Errorf("resolve browse root: %w", err)
	}
	resolver, err := browse.NewResolver(browseRoot, mounts)
	if err != nil {
		return nil, err
	}

	registry, err := handler.LoadRegistry(cfg.Handlers)
	if err != nil {
		return nil, fmt.Errorf("load handlers: %w", err)
	}

	return &Options{
		Config:   cfg,
		Resolver: resolver,
		Registry: registry,
	}, nil
}
