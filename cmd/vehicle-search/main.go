// cmd/vehicle-search/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vehicle-search/internal/common/config"
	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/parser"
	"vehicle-search/internal/protocol"
	"vehicle-search/internal/relax"
	"vehicle-search/internal/search"
)

var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is what every subcommand needs once the config is loaded.
type app struct {
	cfg    *config.Config
	zap    *zap.Logger
	log    logger.Logger
	parser *parser.Parser
	engine *relax.Engine
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		a          = &app{}
	)

	rootCmd := &cobra.Command{
		Use:   "vehicle-search",
		Short: "Natural-language vehicle search",
		Long: `vehicle-search turns Portuguese free-text requests such as
"SUV a diesel entre 2016 e 2019 em SP" into structured filters, queries
the Query Service and relaxes the filters when nothing matches.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(configPath, verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.zap != nil {
				_ = a.zap.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	rootCmd.AddCommand(chatCmd(a))
	rootCmd.AddCommand(parseCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(scenariosCmd(a))
	rootCmd.AddCommand(apiCmd(a))
	rootCmd.AddCommand(loadCmd(a))
	return rootCmd
}

func (a *app) init(configPath string, verbose bool) error {
	var err error
	if configPath != "" {
		a.cfg, err = config.LoadFromFile(configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout belongs to the conversation; logs go to stderr or a file
	logCfg := a.cfg.Logging
	if logCfg.Output == "" || logCfg.Output == "stdout" {
		logCfg.Output = "stderr"
	}
	if verbose {
		logCfg.Level = "debug"
	} else if logCfg.Level == "" || logCfg.Level == "info" || logCfg.Level == "debug" {
		logCfg.Level = "warn"
	}
	a.zap = logger.NewFromConfig(logCfg)
	a.log = logger.NewZapAdapter(a.zap)

	a.parser = parser.New(a.cfg.Parser)
	a.engine = relax.New(a.cfg.Relax)
	return nil
}

func (a *app) client() *protocol.Client {
	return protocol.NewClient(a.cfg.Client.Address, config.GetDuration(a.cfg.Client.Timeout))
}

func (a *app) searchService() *search.Service {
	return search.NewService(a.parser, a.engine, a.client(), a.log)
}
