// Package config loads flowlayout settings from TOML, YAML or JSON files.
//
// Values are layered: built-in defaults, then the config file, then
// FLOWLAYOUT_* environment variables. Command-line flags are applied last by
// the CLI. The merged result is validated before use.
//
// A minimal flowlayout.toml:
//
//	[layout]
//	base_x = 0
//	horizontal_spacing = 320
//
//	[cache]
//	backend = "redis"
//	redis.addr = "localhost:6379"
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/scheme"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "flowlayout.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full set of settings.
type Config struct {
	Layout layout.Config `toml:"layout" yaml:"layout" json:"layout"`
	Output Output        `toml:"output" yaml:"output" json:"output"`
	Cache  Cache         `toml:"cache" yaml:"cache" json:"cache"`
	Server Server        `toml:"server" yaml:"server" json:"server"`
}

// Output controls where laid-out documents go.
type Output struct {
	// Suffix is inserted before the input's extension.
	Suffix string `toml:"suffix" yaml:"suffix" json:"suffix" validate:"required,excludesall=/\\"`

	// FirstStart picks the first start node when a document has several.
	FirstStart bool `toml:"first_start" yaml:"first_start" json:"first_start"`
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend string            `toml:"backend" yaml:"backend" json:"backend" validate:"oneof=file redis none"`
	Dir     string            `toml:"dir" yaml:"dir" json:"dir"`
	TTL     time.Duration     `toml:"ttl" yaml:"ttl" json:"ttl" validate:"gte=0"`
	Prefix  string            `toml:"prefix" yaml:"prefix" json:"prefix"`
	Redis   cache.RedisConfig `toml:"redis" yaml:"redis" json:"redis" validate:"-"`
}

// Server configures `flowlayout serve`.
type Server struct {
	Addr         string        `toml:"addr" yaml:"addr" json:"addr" validate:"required"`
	MaxBodyBytes int64         `toml:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes" validate:"gt=0"`
	ReadTimeout  time.Duration `toml:"read_timeout" yaml:"read_timeout" json:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `toml:"write_timeout" yaml:"write_timeout" json:"write_timeout" validate:"gt=0"`

	// HistoryDir keeps run records as files when MongoURI is empty.
	HistoryDir    string `toml:"history_dir" yaml:"history_dir" json:"history_dir"`
	MongoURI      string `toml:"mongo_uri" yaml:"mongo_uri" json:"mongo_uri" validate:"omitempty,uri"`
	MongoDatabase string `toml:"mongo_database" yaml:"mongo_database" json:"mongo_database" validate:"required_with=MongoURI"`

	// HistoryRetention drops older run records at startup. Zero keeps all.
	HistoryRetention time.Duration `toml:"history_retention" yaml:"history_retention" json:"history_retention" validate:"gte=0"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Layout: layout.DefaultConfig(),
		Output: Output{Suffix: scheme.DefaultSuffix},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     cache.DefaultTTL,
			Redis:   cache.RedisConfig{Addr: "localhost:6379"},
		},
		Server: Server{
			Addr:             ":8080",
			MaxBodyBytes:     8 << 20,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			MongoDatabase:    "flowlayout",
			HistoryRetention: 30 * 24 * time.Hour,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint. Redis settings are only checked
// when the redis backend is selected.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, describe(err), "invalid configuration")
	}
	if c.Cache.Backend == BackendRedis {
		if err := validate.Struct(c.Cache.Redis); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, describe(err), "invalid cache.redis configuration")
		}
	}
	return nil
}

// describe flattens validator errors into one readable error.
func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s fails %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// Load reads settings from path. An empty path falls back to [DefaultFile]
// in the working directory, and to defaults alone when that does not exist.
// Environment overrides are applied and the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, err
		}
	case explicit || !os.IsNotExist(err):
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	applyEnv(cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays data onto cfg, choosing the format by file extension.
// Keys that match no setting are rejected.
func decode(path string, data []byte, cfg *Config) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var md toml.MetaData
		md, err = toml.Decode(string(data), cfg)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				sort.Strings(keys)
				err = fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
			}
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); err == io.EOF {
			err = nil
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (want .toml, .yaml or .json)", filepath.Ext(path))
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return nil
}
