package config

// LoggingConfig selects the log format and level
type LoggingConfig struct {
	Format string
	Level  string
}

// LoadLoggingConfig loads logging configuration from environment variables
func LoadLoggingConfig(getenv func(string) string) LoggingConfig {
	return LoggingConfig{
		Format: valueOrDefault(getenv("LOG_FORMAT"), "console"),
		Level:  valueOrDefault(getenv("LOG_LEVEL"), "info"),
	}
}
