package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/config"
	"github.com/normanking/emotive/internal/logging"
	"github.com/normanking/emotive/internal/registry"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.emotive/config.yaml)")
	console := flag.Bool("console", true, "mirror logs to stdout")
	flag.Parse()

	cfg, cfgFile, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultConfig()
	if cfg.Logging.Dir != "" {
		logCfg.LogDir = cfg.Logging.Dir
	}
	if cfg.Logging.Level != "" {
		logCfg.Level = logging.Level(cfg.Logging.Level)
	}
	logCfg.Console = cfg.Logging.Console && *console

	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	core, err := registry.New(cfg, logger.Zerolog())
	if err != nil {
		logger.Error("main", "failed to build core", err)
		os.Exit(1)
	}

	core.Start()
	logger.Info("main", "emotive core started, log at "+logger.Path())

	watcher, err := config.Watch(cfgFile, func(next *config.Config) {
		logger.Info("main", "configuration reloaded from "+cfgFile)
		core.Bus.Publish(bus.Event{
			Type: bus.EventConfigReloaded,
			Data: map[string]interface{}{"config": next},
		})
	}, func(err error) {
		logger.Warn("main", "config watch: "+err.Error())
	})
	if err != nil {
		logger.Warn("main", "config reload disabled: "+err.Error())
	} else {
		defer watcher.Close()
	}

	// Lines on stdin are fed through the text pipeline so the core can
	// be driven interactively.
	go readInput(core, logger)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("main", "shutting down")
	core.Destroy()
}

// loadConfig resolves the active config and the file path to watch.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.LoadFile(path)
		return cfg, path, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, "", err
	}
	dir, err := config.Dir()
	if err != nil {
		return cfg, "", err
	}
	return cfg, filepath.Join(dir, "config.yaml"), nil
}

func readInput(core *registry.Core, logger *logging.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		res := core.ProcessText(line)
		logger.Info("main", fmt.Sprintf("emotion=%s intensity=%.2f variant=%s",
			res.Context.Emotion, res.Applied, res.Variant))
	}
}
