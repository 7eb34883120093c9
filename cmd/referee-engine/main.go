// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the referee-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/referee-engine/internal/logging"
	"github.com/pdiddy/referee-engine/internal/metrics"
	"github.com/pdiddy/referee-engine/internal/secrets"
	"github.com/pdiddy/referee-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state prepared by the root command before any subcommand
// runs.
var (
	cfg        types.Config
	logger     = zap.NewNop()
	runMetrics *metrics.Metrics
)

// rootCmd is the base command for the referee-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "referee-engine",
	Short: "Editorial decision support for journal editors",
	Long: `referee-engine assists journal editors with two decisions per submitted
manuscript: whether to desk-reject it, and whom to invite as referees.

It builds an expertise index from each journal's historical manuscripts,
searches bibliographic catalogs (OpenAlex, Semantic Scholar) for further
candidates, removes conflicts of interest, and writes one decision report
per manuscript under the reports directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := logging.New(c.Log)
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("secrets")
		s, err := secrets.Load(dir, log)
		if err != nil {
			return err
		}
		s.Apply(&c.Catalog)
		if keys := s.Keys(); len(keys) > 0 {
			log.Info("loaded secrets", zap.Strings("keys", keys))
		}

		cfg, logger = c, log
		runMetrics = metrics.New()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		_ = logger.Sync()
		path, _ := cmd.Flags().GetString("metrics-file")
		if path == "" {
			return nil
		}
		return runMetrics.WriteTextfile(path)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./referee-engine.yaml or ~/.config/referee-engine/referee-engine.yaml)")
	rootCmd.PersistentFlags().String("secrets", ".secrets/", "directory of credential key files")
	rootCmd.PersistentFlags().String("metrics-file", "", "write Prometheus metrics in text format to this file on exit")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("referee-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "referee-engine"))
		}
	}

	viper.SetEnvPrefix("REFEREE_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig overlays the config file and environment on the defaults.
func loadConfig() (types.Config, error) {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding configuration: %w", err)
	}
	// Empty flag bindings must not erase the defaults.
	def := types.DefaultConfig()
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
