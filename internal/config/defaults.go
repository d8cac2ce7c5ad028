package config

const (
	defaultDataDir        = "~/.local/share/loom"
	defaultLogDir         = "~/.local/share/loom/logs"
	defaultAPIBind        = "127.0.0.1:7610"
	defaultBackend        = BackendSQLite
	defaultGeneratorMode  = GeneratorStatic
	defaultRetryCeiling   = 3
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultLLMBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel       = "google/gemini-3-flash-preview"
	defaultLLMReferer     = "https://github.com/loom-dev/loom"
	defaultLLMTitle       = "Loom Path Generator"
	defaultLLMTimeoutSecs = 60
)

// Checkpoint backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Generator modes.
const (
	GeneratorLLM    = "llm"
	GeneratorStatic = "static"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Checkpoint: Checkpoint{
			Backend:     defaultBackend,
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: "loom:checkpoint:",
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSecs,
		},
		Generator: Generator{
			Mode: defaultGeneratorMode,
		},
		Workflow: Workflow{
			RetryCeiling: defaultRetryCeiling,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
