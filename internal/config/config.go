package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig   `json:"server"`
	Database   DatabaseConfig `json:"database"`
	Connection Connection     `json:"connection"`
	Preamble   string         `json:"preamble"`
	Context    ContextConfig  `json:"context"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// Connection configures the hosted model endpoint. The API key is read from
// the environment only; it never appears in the config file or in persisted
// snapshots.
type Connection struct {
	API         string  `json:"api"` // "responses" or "chat-completions"
	Endpoint    string  `json:"endpoint"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	APIKey      string  `json:"-"`
}

// ContextConfig configures context assembly and summarization.
type ContextConfig struct {
	TailSize           int     `json:"tail_size" mapstructure:"tail_size"`
	ChunkSize          int     `json:"chunk_size" mapstructure:"chunk_size"`
	MaxSummaryChars    int     `json:"max_summary_chars" mapstructure:"max_summary_chars"`
	SummaryModel       string  `json:"summary_model" mapstructure:"summary_model"`
	SummaryTemperature float64 `json:"summary_temperature" mapstructure:"summary_temperature"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".ai-labs"))
	}

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "ailabs")
	viper.SetDefault("database.database", "ailabs")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("connection.api", "responses")
	viper.SetDefault("connection.endpoint", "https://api.openai.com")
	viper.SetDefault("connection.model", "gpt-4o-mini")
	viper.SetDefault("connection.temperature", 0.7)
	viper.SetDefault("preamble", "You are a helpful assistant.")
	viper.SetDefault("context.tail_size", 12)
	viper.SetDefault("context.chunk_size", 10)
	viper.SetDefault("context.max_summary_chars", 2000)
	viper.SetDefault("context.summary_model", "gpt-4o-mini")
	viper.SetDefault("context.summary_temperature", 0.3)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func loadEnvOverrides(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Connection.APIKey = key
	}
	if endpoint := os.Getenv("AILABS_ENDPOINT"); endpoint != "" {
		cfg.Connection.Endpoint = endpoint
	}
	if model := os.Getenv("AILABS_MODEL"); model != "" {
		cfg.Connection.Model = model
	}

	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}
}
