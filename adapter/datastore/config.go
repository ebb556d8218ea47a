package datastore

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/vinicius-lino-figueiredo/jsondb/domain"
)

// Config is the options bag accepted by [OpenWithOptions]. Unknown keys are
// ignored and values are converted when possible, so {"verbose": true} means
// verbosity level 1.
type Config struct {
	Verbose       int    `mapstructure:"verbose"`
	Backend       string `mapstructure:"backend"`
	IdentifierKey string `mapstructure:"identifierKey"`
}

// DecodeConfig decodes an options bag into a [Config].
func DecodeConfig(bag map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(bag); err != nil {
		return Config{}, fmt.Errorf("invalid database options: %w", err)
	}
	return cfg, nil
}

// Options returns the database options set by c.
func (c Config) Options() []domain.DatabaseOption {
	opts := []domain.DatabaseOption{domain.WithDatabaseVerbose(c.Verbose)}
	if c.Backend != "" {
		opts = append(opts, domain.WithDatabaseBackend(c.Backend))
	}
	if c.IdentifierKey != "" {
		opts = append(opts, domain.WithDatabaseIdentifierKey(c.IdentifierKey))
	}
	return opts
}
