// Package config loads citysim settings with viper. Values come from, in
// increasing priority: built-in defaults, configs/citysim.yml, and
// CITYSIM_-prefixed environment variables (CITYSIM_SERVER_ADDR).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// DefaultRelPath is searched for from the working directory upward when no
// path is given.
const DefaultRelPath = "configs/citysim.yml"

const envPrefix = "CITYSIM"

var defaults = map[string]any{
	"game.seed":                 0,
	"game.topology":             "brick",
	"game.lake_level":           0.30,
	"game.track_level":          0.68,
	"server.addr":               ":8080",
	"server.read_timeout":       "10s",
	"server.write_timeout":      "10s",
	"server.shutdown_timeout":   "5s",
	"server.cors_origins":       []string{},
	"server.intents_per_minute": 120,
	"db.path":                   "data/citysim.db",
	"log.level":                 "info",
	"log.file":                  "",
	"log.max_size":              64,
	"log.max_backups":           3,
	"log.max_age":               14,
	"log.compress":              false,
	"log.dev":                   false,
}

// Loader wraps the viper instance so the file can be watched after loading.
type Loader struct {
	v *viper.Viper
}

// New prepares a loader. An explicit path must exist; with an empty path the
// default file is used if one is found, otherwise defaults and environment
// apply alone.
func New(path string) (*Loader, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = findUpward(DefaultRelPath)
	} else if !fileExist(path) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return &Loader{v: v}, nil
}

// Load is New followed by Config.
func Load(path string) (Config, error) {
	l, err := New(path)
	if err != nil {
		return Config{}, err
	}
	return l.Config()
}

// File returns the config file in use, or "" when running on defaults.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Config decodes the current settings.
func (l *Loader) Config() (Config, error) {
	var c Config
	err := l.v.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Watch calls fn with the re-decoded settings whenever the config file
// changes. It does nothing when no file is in use.
func (l *Loader) Watch(fn func(Config, error)) {
	if l.File() == "" {
		return
	}
	l.v.OnConfigChange(func(fsnotify.Event) {
		fn(l.Config())
	})
	l.v.WatchConfig()
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Server.IntentsPerMinute < 0 {
		errs = append(errs, errors.New("server.intents_per_minute must not be negative"))
	}
	for _, d := range []struct {
		key string
		val time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
	} {
		if d.val < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", d.key))
		}
	}
	if c.Game.LakeLevel < 0 || c.Game.LakeLevel > 1 {
		errs = append(errs, errors.New("game.lake_level must be within [0, 1]"))
	}
	if c.Game.TrackLevel < 0 || c.Game.TrackLevel > 1 {
		errs = append(errs, errors.New("game.track_level must be within [0, 1]"))
	}
	return errors.Join(errs...)
}

func findUpward(rel string) string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, rel)
		if fileExist(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func fileExist(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
