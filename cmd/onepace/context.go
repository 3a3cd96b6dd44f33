package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"onepace/internal/arcdir"
	"onepace/internal/config"
	"onepace/internal/jobs"
	"onepace/internal/logging"
	"onepace/internal/services"
)

type globalFlags struct {
	config   string
	envFile  string
	logLevel string
	noColor  bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// loadEnvFile applies --env-file before configuration is read so that
// ONEPACE_* overrides in the file take effect.
func (c *commandContext) loadEnvFile() error {
	path := strings.TrimSpace(c.flags.envFile)
	if path == "" {
		return nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("resolve env file: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "load env file", expanded, err)
	}
	return nil
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) baseLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, c.flags.logLevel)
	})
	return c.logger, c.loggerErr
}

// setup returns the loaded config and a logger scoped to component.
func (c *commandContext) setup(component string) (*config.Config, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.baseLogger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewComponentLogger(logger, component), nil
}

func (c *commandContext) colorize(w io.Writer) bool {
	return !c.flags.noColor && shouldColorize(w)
}

func (c *commandContext) openRegistry(cfg *config.Config) (*jobs.Store, error) {
	store, err := jobs.Open(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "open job registry", cfg.JobsDBPath(), err)
	}
	return store, nil
}

// targetFolder maps an arc folder argument to an absolute path, applying the
// configured naming convention.
func targetFolder(cfg *config.Config, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", services.Wrap(services.ErrMissingInput, "cli", "resolve folder", "folder name is empty", nil)
	}
	named := arcdir.For(cfg.Folders.AutoPrefix)(name)
	expanded, err := config.ExpandPath(named)
	if err != nil {
		return "", fmt.Errorf("resolve folder %q: %w", name, err)
	}
	return expanded, nil
}

// existingDir expands a directory argument without renaming it.
func existingDir(name string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(name))
	if err != nil {
		return "", fmt.Errorf("resolve directory %q: %w", name, err)
	}
	return expanded, nil
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
