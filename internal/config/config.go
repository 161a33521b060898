package config

import "time"

// Config is the full configuration of the target, loaded once before stream
// processing begins.
type Config struct {
	Cassandra   CassandraConfig `mapstructure:"cassandra"`
	KeyPolicy   string          `mapstructure:"key_policy"` // "fail" or "drop"
	LogLevel    string          `mapstructure:"log_level"`
	LogFormat   string          `mapstructure:"log_format"`
	MetricsAddr string          `mapstructure:"metrics_addr"`
}

// CassandraConfig holds the storage connection settings.
type CassandraConfig struct {
	ContactPoints   []string      `mapstructure:"contact_points"`
	Port            int           `mapstructure:"port"`
	Keyspace        string        `mapstructure:"keyspace"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	ProtocolVersion int           `mapstructure:"protocol_version"`
	Consistency     string        `mapstructure:"consistency"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// Default returns the configuration defaults applied before file, env, and
// flag overrides.
func Default() Config {
	return Config{
		Cassandra: CassandraConfig{
			Port:            9042,
			ProtocolVersion: 4,
			Consistency:     "quorum",
			Timeout:         10 * time.Second,
		},
		KeyPolicy: "fail",
		LogLevel:  "info",
		LogFormat: "text",
	}
}
