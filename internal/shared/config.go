package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Secrets are never required in the file itself: [Config.ApplyEnv] lets the
// environment (optionally seeded from a .env file) override every credential
// and connection string.
type Config struct {
	Source      SourceConfig      `toml:"source"`
	Destination DestinationConfig `toml:"destination"`
	Staging     StagingConfig     `toml:"staging"`
	Report      ReportConfig      `toml:"report"`
}

// SourceConfig selects and parameterizes the row retrieval strategy.
type SourceConfig struct {
	Strategy    string  `toml:"strategy"`
	URL         string  `toml:"url"`
	AnonKey     string  `toml:"anon_key"`
	DatabaseURL string  `toml:"database_url"`
	ExportDir   string  `toml:"export_dir"`
	FetchLimit  int     `toml:"fetch_limit"`
	RateLimit   float64 `toml:"rate_limit"`
}

// DestinationConfig contains Aurora PostgreSQL connection settings.
//
// DatabaseURL may be left empty when SecretARN names an AWS Secrets Manager
// secret holding the connection string.
type DestinationConfig struct {
	DatabaseURL  string `toml:"database_url"`
	SecretARN    string `toml:"secret_arn"`
	Region       string `toml:"region"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// StagingConfig contains local snapshot database settings.
type StagingConfig struct {
	Path string `toml:"path"`
}

// ReportConfig controls run report output and optional S3 archival.
type ReportConfig struct {
	Output   string `toml:"output"`
	S3Bucket string `toml:"s3_bucket"`
	S3Prefix string `toml:"s3_prefix"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotenv loads a .env file into the process environment when one exists.
// Missing files are not an error; existing environment variables are never overwritten.
func LoadDotenv(path string) {
	if path == "" {
		path = ".env"
	}
	_ = godotenv.Load(path)
}

// ApplyEnv overrides credential and connection settings from the environment.
//
// Recognized variables: SUPABASE_URL, SUPABASE_ANON_KEY, SUPABASE_DB_URL,
// CLUBHOUSE_DATABASE_URL, CLUBHOUSE_SECRET_ARN, AWS_REGION.
func (c *Config) ApplyEnv() {
	c.Source.URL = EnvOr("SUPABASE_URL", c.Source.URL)
	c.Source.AnonKey = EnvOr("SUPABASE_ANON_KEY", c.Source.AnonKey)
	c.Source.DatabaseURL = EnvOr("SUPABASE_DB_URL", c.Source.DatabaseURL)
	c.Destination.DatabaseURL = EnvOr("CLUBHOUSE_DATABASE_URL", c.Destination.DatabaseURL)
	c.Destination.SecretARN = EnvOr("CLUBHOUSE_SECRET_ARN", c.Destination.SecretARN)
	c.Destination.Region = EnvOr("AWS_REGION", c.Destination.Region)
}
