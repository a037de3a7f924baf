package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	cfgKeyBackend     = "backend"
	cfgKeySQLitePath  = "sqlite_path"
	cfgKeyDynamoTable = "dynamo_table"
	cfgKeySeparator   = "key_separator"
)

// cfg holds the loaded configuration. Set by loadConfig before any
// subcommand runs.
var cfg *viper.Viper

// loadConfig reads the configuration file into cfg. An explicit --config
// path must exist; otherwise .docmap.yaml is looked up in the working
// directory and in ~/.docmap/, and a missing file falls back to defaults.
func loadConfig(configFile string) error {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, "sqlite")
	v.SetDefault(cfgKeySQLitePath, ".docmap.db")
	v.SetDefault(cfgKeyDynamoTable, "docmap_documents")
	v.SetDefault(cfgKeySeparator, "g")
	v.SetEnvPrefix("DOCMAP")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configFile, err)
		}
		cfg = v
		return nil
	}

	v.SetConfigName(".docmap")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".docmap"))
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	cfg = v
	return nil
}
