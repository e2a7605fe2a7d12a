package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/thisisjab/logwarden/engine"
	"github.com/thisisjab/logwarden/notify"
	"github.com/thisisjab/logwarden/processor"
	"go.yaml.in/yaml/v3"
)

type Config struct {
	Logger              LoggerConfig      `yaml:"logger"`
	Notifier            NotifierConfig    `yaml:"notifier"`
	Recipients          []string          `yaml:"recipients"`
	Processors          []ProcessorConfig `yaml:"processors"`
	Sources             []SourceConfig    `yaml:"sources"`
	NotifyBufferSize    uint              `yaml:"notify_buffer_size"`
	NotifyFlushInterval time.Duration     `yaml:"notify_flush_interval"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Type  string `yaml:"type"`
}

type NotifierConfig struct {
	Type   string `yaml:"type"`
	Config any    `yaml:"config"`
}

type ProcessorConfig struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Config any    `yaml:"config"`
}

type SourceConfig struct {
	Name       string   `yaml:"name"`
	Path       string   `yaml:"path"`
	Filter     string   `yaml:"filter"`
	Processors []string `yaml:"processors"`
}

func (cfg Config) Parse() (*engine.Config, *slog.Logger, error) {
	logger, err := parseLoggerConfig(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create logger: %w", err)
	}

	notifier, err := parseNotifierConfig(cfg.Notifier, cfg.Recipients)
	if err != nil {
		return nil, logger, fmt.Errorf("cannot create notifier: %w", err)
	}

	processors := make(map[string]processor.LineProcessor, len(cfg.Processors))
	for _, pc := range cfg.Processors {
		p, err := parseProcessorConfig(pc)
		if err != nil {
			return nil, logger, fmt.Errorf("cannot create processor `%s`: %w", pc.Name, err)
		}
		processors[pc.Name] = p
	}

	targets := make([]engine.ScanTarget, len(cfg.Sources))
	for i, sc := range cfg.Sources {
		targets[i] = engine.ScanTarget{
			Name:       sc.Name,
			Path:       sc.Path,
			Filter:     ExpandFilter(sc.Filter, time.Now()),
			Processors: sc.Processors,
		}
	}

	return &engine.Config{
		Targets:           targets,
		Processors:        processors,
		Notifier:          notifier,
		LineBufferMaxSize: cfg.NotifyBufferSize,
		FlushInterval:     cfg.NotifyFlushInterval,
	}, logger, nil
}

func parseLoggerConfig(cfg LoggerConfig) (*slog.Logger, error) {
	var handler slog.Handler

	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	w := os.Stdout
	switch cfg.Type {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "colored-text":
		handler = tint.NewHandler(w, &tint.Options{Level: level, AddSource: true})
	default:
		return nil, fmt.Errorf("invalid log type: %s", cfg.Type)
	}

	return slog.New(handler), nil
}

func parseNotifierConfig(cfg NotifierConfig, recipients []string) (notify.Notifier, error) {
	switch cfg.Type {
	case "smtp":
		var mailerConfig notify.MailerConfig

		if err := remarshal(cfg.Config, &mailerConfig); err != nil {
			return nil, fmt.Errorf("cannot parse smtp notifier config: %w", err)
		}

		mailerConfig.Recipients = recipients

		n, err := notify.NewMailer(mailerConfig)
		if err != nil {
			return nil, fmt.Errorf("cannot create smtp notifier: %w", err)
		}

		return n, nil

	case "stdout":
		return notify.NewWriterNotifier(os.Stdout), nil

	default:
		return nil, fmt.Errorf("invalid notifier type: %s", cfg.Type)
	}
}

func parseProcessorConfig(cfg ProcessorConfig) (processor.LineProcessor, error) {
	switch cfg.Type {
	case "lua":
		var luaConfig processor.LuaLineProcessorConfig
		if err := remarshal(cfg.Config, &luaConfig); err != nil {
			return nil, fmt.Errorf("cannot create lua processor: %w", err)
		}

		luaConfig.Name = cfg.Name

		p, err := processor.NewLuaLineProcessor(luaConfig)
		if err != nil {
			return nil, fmt.Errorf("cannot create lua processor: %w", err)
		}

		return p, nil
	default:
		return nil, fmt.Errorf("invalid processor type: %s", cfg.Type)
	}
}

// remarshal takes an input value, marshals it to YAML, and then unmarshals it into a new value of the same type.
// This is useful for converting generic interfaces (like map[string]any) into concrete struct types.
// The output parameter must be a pointer to the target type.
func remarshal(input any, output any) error {
	yamlBytes, err := yaml.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal to YAML: %w", err)
	}

	if err := yaml.Unmarshal(yamlBytes, output); err != nil {
		return fmt.Errorf("failed to unmarshal from YAML: %w", err)
	}

	return nil
}
