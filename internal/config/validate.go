package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCheckpoint(); err != nil {
		return err
	}
	if err := c.validateGenerator(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCheckpoint() error {
	switch c.Checkpoint.Backend {
	case BackendMemory, BackendSQLite:
		return nil
	case BackendRedis:
		if c.Checkpoint.RedisAddr == "" {
			return errors.New("checkpoint.redis_addr must be set when checkpoint.backend is \"redis\"")
		}
		return nil
	default:
		return fmt.Errorf("checkpoint.backend must be one of %q, %q, %q", BackendMemory, BackendSQLite, BackendRedis)
	}
}

func (c *Config) validateGenerator() error {
	switch c.Generator.Mode {
	case GeneratorStatic:
		return nil
	case GeneratorLLM:
		if c.LLM.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/loom/config.toml"
			}
			return fmt.Errorf("llm.api_key is required when generator.mode is \"llm\". Set OPENROUTER_API_KEY env var or edit %s (create with 'loom config init')", defaultPath)
		}
		return nil
	default:
		return fmt.Errorf("generator.mode must be %q or %q", GeneratorLLM, GeneratorStatic)
	}
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.RetryCeiling < 1 || c.Workflow.RetryCeiling > 10 {
		return errors.New("workflow.retry_ceiling must be between 1 and 10")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.New("logging.format must be \"console\" or \"json\"")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
	return nil
}
