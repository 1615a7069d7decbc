package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"carbonsense.dev/carbonsense/pkg/logger"
)

// InitConfig initializes Viper configuration.
// It supports reading from config files (config.yaml) and environment variables.
func InitConfig(cfgFile string) error {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory and /etc/carbonsense/
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/carbonsense/")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Environment variables
	viper.SetEnvPrefix("CARBONSENSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		var configNotFoundErr viper.ConfigFileNotFoundError
		if errors.As(err, &configNotFoundErr) {
			// Config file not found; rely on env vars and defaults
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// GetLogger creates a slog.Logger based on configuration.
func GetLogger() *slog.Logger {
	return logger.NewWithLevel(logger.ParseLevel(viper.GetString("log.level")))
}
