package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thisisjab/logwarden/config"
	"github.com/thisisjab/logwarden/engine"
	"gopkg.in/yaml.v3"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cfgPath := flag.String("config", "./.config.yaml", "path to config file")
	follow := flag.Bool("follow", false, "keep running and notify about newly appended lines")
	flag.Parse()

	fileContent, err := os.ReadFile(*cfgPath)
	if err != nil {
		panic(fmt.Errorf("cannot read config file content: %w", err))
	}

	var cfg config.Config
	if err := yaml.Unmarshal(fileContent, &cfg); err != nil {
		panic(fmt.Errorf("cannot parse config file: %w", err))
	}

	engineCfg, logger, err := cfg.Parse()
	if err != nil {
		if logger != nil {
			logger.Error("cannot parse config file", "error", err)
			os.Exit(1)
		}
		panic(fmt.Errorf("cannot parse config file: %w", err))
	}

	// Stop on Ctrl+C (SIGINT) or Terminate (SIGTERM).
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received signal. shutting down.", "signal", sig)
		cancel()
	}()

	eng, err := engine.New(*engineCfg, logger)
	if err != nil {
		logger.Error("engine error.", "error", err)
		os.Exit(1)
	}

	if *follow {
		err = eng.Follow(ctx)
	} else {
		err = eng.Scan(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("engine error.", "error", err)
		cancel()
		os.Exit(1)
	}

	logger.Info("done.")
}
