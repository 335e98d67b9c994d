package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kezhuw/traildb"
)

const (
	configFileName = "trailfold"
	envPrefix      = "TRAILFOLD"

	cfgKeyLogLevel              = "log_level"
	cfgKeyVerifyChecksums       = "verify_checksums"
	cfgKeyCompression           = "compression"
	cfgKeyBlockCompressionRatio = "block_compression_ratio"

	defaultLogLevel    = "warn"
	defaultCompression = "snappy"
)

// loadConfig reads trailfold.yaml using Viper. With an empty configFile the
// current directory and ~/.config/trailfold are searched, and a missing file
// is not an error. Keys may be overridden by TRAILFOLD_ prefixed environment
// variables.
func loadConfig(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyVerifyChecksums, false)
	v.SetDefault(cfgKeyCompression, defaultCompression)
	v.SetDefault(cfgKeyBlockCompressionRatio, 0.0)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "trailfold"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func parseCompression(s string) (traildb.CompressionType, error) {
	return traildb.ParseCompression(strings.ToLower(strings.TrimSpace(s)))
}

// options builds database options from the loaded configuration.
func (a *app) options() (*traildb.Options, error) {
	compression, err := parseCompression(a.config.GetString(cfgKeyCompression))
	if err != nil {
		return nil, err
	}
	return &traildb.Options{
		Compression:           compression,
		BlockCompressionRatio: a.config.GetFloat64(cfgKeyBlockCompressionRatio),
		VerifyChecksums:       a.config.GetBool(cfgKeyVerifyChecksums),
		Logger:                a.logger,
	}, nil
}
