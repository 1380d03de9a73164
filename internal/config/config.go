// Package config provides configuration management for the avatar
// behavior core: defaults, file/env loading, persistence, and live
// reload of the on-disk file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	ctxengine "github.com/normanking/emotive/internal/context"
	"github.com/normanking/emotive/internal/emotion"
	"github.com/normanking/emotive/internal/eyes"
	"github.com/normanking/emotive/internal/intensity"
	"github.com/normanking/emotive/internal/memory"
	"github.com/normanking/emotive/internal/microexpr"
	"github.com/normanking/emotive/internal/physics"
	"github.com/normanking/emotive/internal/touch"
)

// Config aggregates per-subsystem tuning.
type Config struct {
	Emotion   emotion.Config   `mapstructure:"emotion"`
	Context   ctxengine.Config `mapstructure:"context"`
	Touch     touch.Config     `mapstructure:"touch"`
	Memory    memory.Config    `mapstructure:"memory"`
	MicroExpr microexpr.Config `mapstructure:"micro_expr"`
	Eyes      eyes.Config      `mapstructure:"eyes"`
	Physics   PhysicsConfig    `mapstructure:"physics"`
	Intensity intensity.Config `mapstructure:"intensity"`
	Scheduler SchedulerConfig  `mapstructure:"scheduler"`
	Logging   LoggingConfig    `mapstructure:"logging"`
}

// PhysicsConfig describes the chains to build at startup.
type PhysicsConfig struct {
	Chains []ChainConfig        `mapstructure:"chains"`
	Spring physics.SpringConfig `mapstructure:"spring"`
}

// ChainConfig is one named spring chain.
type ChainConfig struct {
	Name   string `mapstructure:"name"`
	Points int    `mapstructure:"points"`
}

// SchedulerConfig tunes the frame loop.
type SchedulerConfig struct {
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

// LoggingConfig mirrors the logging package's options in file form.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Dir     string `mapstructure:"dir"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns the shipped configuration.
func DefaultConfig() *Config {
	return &Config{
		Emotion:   emotion.DefaultConfig(),
		Context:   ctxengine.DefaultConfig(),
		Touch:     touch.DefaultConfig(),
		Memory:    memory.DefaultConfig(),
		MicroExpr: microexpr.DefaultConfig(),
		Eyes:      eyes.DefaultConfig(),
		Physics: PhysicsConfig{
			Chains: []ChainConfig{
				{Name: "hair_left", Points: 6},
				{Name: "hair_right", Points: 6},
				{Name: "hair_back", Points: 8},
			},
			Spring: physics.DefaultSpringConfig(),
		},
		Intensity: intensity.DefaultConfig(),
		Scheduler: SchedulerConfig{FrameInterval: 16667 * time.Microsecond},
		Logging:   LoggingConfig{Level: "info", Console: true},
	}
}

// Dir returns the configuration directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".emotive")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Load reads configuration from file and environment on top of the
// defaults. A missing file is written out with the defaults rather
// than treated as an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	dir, err := Dir()
	if err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")
	v.SetEnvPrefix("EMOTIVE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
		if err := Save(cfg); err != nil {
			return cfg, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads a specific config file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to the default location.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	v := viper.New()
	v.Set("emotion", cfg.Emotion)
	v.Set("context", cfg.Context)
	v.Set("touch", cfg.Touch)
	v.Set("memory", cfg.Memory)
	v.Set("micro_expr", cfg.MicroExpr)
	v.Set("eyes", cfg.Eyes)
	v.Set("physics", cfg.Physics)
	v.Set("intensity", cfg.Intensity)
	v.Set("scheduler", cfg.Scheduler)
	v.Set("logging", cfg.Logging)

	return v.WriteConfigAs(filepath.Join(dir, "config.yaml"))
}

// Watcher reloads a config file when it changes on disk, debounced so
// editors that write in several bursts trigger a single reload.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch begins watching path and invokes onReload with each freshly
// parsed config. Parse failures keep the previous config and are
// reported through onErr (which may be nil).
func Watch(path string, onReload func(*Config), onErr func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	deb := debounce.New(200 * time.Millisecond)

	go func() {
		for {
			select {
			case <-w.done:
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Name != path || !ev.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				deb(func() {
					cfg, err := LoadFile(path)
					if err != nil {
						if onErr != nil {
							onErr(err)
						}
						return
					}
					onReload(cfg)
				})
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				if onErr != nil {
					onErr(err)
				}
			}
		}
	}()
	return w, nil
}

// Close stops watching. Safe to call once.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
