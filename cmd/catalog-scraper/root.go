package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"catalog-scraper/internal/config"
	"catalog-scraper/internal/observability"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog-scraper",
		Short: "Scrape product catalogs from Rozetka and Telemart",
		Long: `catalog-scraper extracts product records (title, item code, price,
description, specifications, category and image) from paginated category
listings of rozetka.com.ua and telemart.ua.

Configuration is read from --config, ./configs/config.yaml or
$XDG_CONFIG_HOME/catalog-scraper/config.yaml, in that order.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML config file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger for a command.
func setup(cmd *cobra.Command) (*config.Config, *observability.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	logger, err := observability.NewLogger(cfg.Observability, verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
