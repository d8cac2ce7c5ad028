package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCheckpoint(); err != nil {
		return err
	}
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeGenerator()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeCheckpoint() error {
	c.Checkpoint.Backend = strings.ToLower(strings.TrimSpace(c.Checkpoint.Backend))
	if c.Checkpoint.Backend == "" {
		c.Checkpoint.Backend = defaultBackend
	}
	if strings.TrimSpace(c.Checkpoint.SQLitePath) == "" {
		c.Checkpoint.SQLitePath = filepath.Join(c.Paths.DataDir, "checkpoints.db")
	}
	var err error
	if c.Checkpoint.SQLitePath, err = expandPath(c.Checkpoint.SQLitePath); err != nil {
		return fmt.Errorf("checkpoint.sqlite_path: %w", err)
	}
	c.Checkpoint.RedisAddr = strings.TrimSpace(c.Checkpoint.RedisAddr)
	if c.Checkpoint.RedisPrefix == "" {
		c.Checkpoint.RedisPrefix = "loom:checkpoint:"
	}
	return nil
}

func (c *Config) normalizeLibrary() error {
	if strings.TrimSpace(c.Library.Path) == "" {
		c.Library.Path = filepath.Join(c.Paths.DataDir, "library.db")
	}
	var err error
	if c.Library.Path, err = expandPath(c.Library.Path); err != nil {
		return fmt.Errorf("library.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSecs
	}
}

func (c *Config) normalizeGenerator() {
	c.Generator.Mode = strings.ToLower(strings.TrimSpace(c.Generator.Mode))
	if c.Generator.Mode == "" {
		c.Generator.Mode = defaultGeneratorMode
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.RetryCeiling <= 0 {
		c.Workflow.RetryCeiling = defaultRetryCeiling
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
