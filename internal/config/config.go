package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pgbind/pgbind/internal/pgconn"
)

type Config struct {
	DatabaseURL string `yaml:"database_url"`
	Queries     string `yaml:"queries"`
	Out         string `yaml:"out"`
	Package     string `yaml:"package"`
}

type Flags struct {
	URL     string
	Queries string
	Out     string
	Package string
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.DatabaseURL = expandEnv(cfg.DatabaseURL)
	cfg.Queries = expandEnv(cfg.Queries)
	cfg.Out = expandEnv(cfg.Out)
	cfg.Package = expandEnv(cfg.Package)

	return &cfg, nil
}

func (c *Config) GetDatabaseURL(flags *Flags) (string, error) {
	if flags != nil && flags.URL != "" {
		return flags.URL, nil
	}
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	return "", fmt.Errorf("database_url is required (set in config or pass --url flag)")
}

func (c *Config) GetQueries(flags *Flags) string {
	if flags != nil && flags.Queries != "" {
		return flags.Queries
	}
	if c.Queries != "" {
		return c.Queries
	}
	return "queries"
}

func (c *Config) GetOut(flags *Flags) string {
	if flags != nil && flags.Out != "" {
		return flags.Out
	}
	if c.Out != "" {
		return c.Out
	}
	return "gen"
}

func (c *Config) GetPackage(flags *Flags) string {
	if flags != nil && flags.Package != "" {
		return flags.Package
	}
	if c.Package != "" {
		return c.Package
	}
	return "queries"
}

// ParseDatabaseURL turns a postgres:// URL into the connection endpoint.
// The port defaults to 5432 and the database to the user name, matching the
// server's own defaulting.
func ParseDatabaseURL(raw string) (pgconn.Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return pgconn.Config{}, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return pgconn.Config{}, fmt.Errorf("unsupported database URL scheme %q", u.Scheme)
	}

	cfg := pgconn.Config{
		Host: u.Hostname(),
		Port: 5432,
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if p := u.Port(); p != "" {
		port, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return pgconn.Config{}, fmt.Errorf("invalid port %q in database URL", p)
		}
		cfg.Port = uint16(port)
	}

	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}
	if cfg.User == "" {
		return pgconn.Config{}, fmt.Errorf("database URL must include a user")
	}

	cfg.Database = strings.TrimPrefix(u.Path, "/")
	if cfg.Database == "" {
		cfg.Database = cfg.User
	}

	return cfg, nil
}

func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return os.ExpandEnv(s)
}
