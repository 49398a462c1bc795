package main

import (
	"fmt"
	"os"

	"ibkr-trader/internal/cli"
	"ibkr-trader/internal/config"
	"ibkr-trader/internal/logging"
)

func main() {
	configDir := os.Getenv("TRADER_CONFIG_DIR")
	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Console = cfg.Logging.Console
	logCfg.File = cfg.Logging.File
	if cfg.Logging.Path != "" {
		logCfg.FilePath = cfg.Logging.Path
	}
	logger := logging.NewLoggerWithConfig(logCfg)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
