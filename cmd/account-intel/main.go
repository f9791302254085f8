// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the account-intel CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/account-intel/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from --log-level and --log-format before any command runs.
var logger = zap.NewNop()

var metricsServer *http.Server

// rootCmd is the base command for the account-intel CLI.
var rootCmd = &cobra.Command{
	Use:   "account-intel",
	Short: "Research a company and produce a structured sales intelligence report",
	Long: `account-intel researches a target company on the public web and turns the
evidence into a structured account intelligence report: firmographics, recent
signals, purchase intent, a sales hypothesis, persona messaging angles, and
outreach priority.

Reports are saved to a local history database. Use the history command to
list, search, show, or export earlier reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		l, err := logging.New(level, format)
		if err != nil {
			return err
		}
		logger = l

		addr, _ := cmd.Flags().GetString("metrics-addr")
		if addr != "" {
			startMetricsServer(addr)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stopMetricsServer()
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./account-intel.yaml or ~/.config/account-intel/account-intel.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory holding one file per API key")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("account-intel")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "account-intel"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("ACCOUNT_INTEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	metricsServer = srv

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
}

func stopMetricsServer() {
	if metricsServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(ctx)
	metricsServer = nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
