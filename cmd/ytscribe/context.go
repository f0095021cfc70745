package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ytscribe/internal/config"
	"ytscribe/internal/logging"
	"ytscribe/internal/retrieval"
	"ytscribe/internal/youtube"
)

// newTranscriptSource builds the YouTube client; tests replace it.
var newTranscriptSource = func(cfg *config.Config, logger *slog.Logger) (retrieval.Source, error) {
	client, err := youtube.New(youtube.Config{
		UserAgent:          cfg.YouTube.UserAgent,
		ProxyURL:           cfg.YouTube.ProxyURL,
		Timeout:            cfg.RequestTimeout(),
		PreserveFormatting: cfg.YouTube.PreserveFormatting,
		Languages:          cfg.YouTube.Languages,
		RequestsPerSecond:  cfg.YouTube.RequestsPerSecond,
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// service wires the YouTube client into a retrieval service.
func (c *commandContext) service() (*retrieval.Service, *config.Config, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	source, err := newTranscriptSource(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	svc := retrieval.NewService(source, retrieval.Options{
		OutputDir: cfg.Paths.OutputDir,
		Languages: cfg.YouTube.Languages,
		Format:    cfg.Output.Format,
		Save:      cfg.Output.Save,
	}, logger)
	return svc, cfg, logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
