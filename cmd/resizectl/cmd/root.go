package cmd

import (
	"github.com/denismitr/stockresizer/cmd/initialize"
	"github.com/denismitr/stockresizer/internal/backoffice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// serviceFactory builds the variant service once flags and env are parsed
type serviceFactory func() (*backoffice.VariantService, error)

func New() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "resizectl",
		Short:         "Inspect, warm and purge the resized image cache",
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	factory := func() (*backoffice.VariantService, error) {
		initialize.DotEnv(envFile)

		cfg, err := initialize.ConfigFromEnv()
		if err != nil {
			return nil, err
		}

		log := initialize.Logger(cfg.LogLevel)

		s, err := initialize.Storage(cfg, log)
		if err != nil {
			return nil, err
		}

		resolver := initialize.Resolver(cfg, s, prometheus.NewRegistry(), log)

		return backoffice.NewVariantService(s, resolver, log), nil
	}

	root.AddCommand(
		newWarmCmd(factory),
		newPurgeCmd(factory),
		newListCmd(factory),
	)

	return root
}
