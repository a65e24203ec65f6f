package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendNone          = "none"
	BackendQuery         = "query"
	BackendContentServer = "contentserver"
	BackendPostgres      = "postgres"
)

var (
	ErrParsingConfig  = errors.New("failed to parse config")
	ErrUnknownBackend = errors.New("unknown store backend")
	ErrMissingSetting = errors.New("missing setting")
)

type Config struct {
	Log    Log    `envPrefix:"LOG_"`
	Server Server `envPrefix:"MCP_"`
	Slug   Slug   `envPrefix:"SLUG_"`
	Store  Store  `envPrefix:"STORE_"`
}

type Log struct {
	Level       string `env:"LEVEL" envDefault:"info"`
	Development bool   `env:"DEVELOPMENT" envDefault:"false"`
}

type Server struct {
	HTTPAddr          string        `env:"HTTP_ADDR"`
	Endpoint          string        `env:"ENDPOINT" envDefault:"/mcp"`
	KeepaliveInterval time.Duration `env:"SSE_KEEPALIVE" envDefault:"30s"`
	BufferSize        int           `env:"SSE_BUFFER_SIZE" envDefault:"100"`
}

type Slug struct {
	// Unique adds the uniqueness check to the slug's error chain.
	Unique      bool `env:"UNIQUE" envDefault:"false"`
	MaxAttempts int  `env:"MAX_ATTEMPTS" envDefault:"10"`
}

type Store struct {
	Backend       string        `env:"BACKEND" envDefault:"none"`
	Query         Query         `envPrefix:"QUERY_"`
	ContentServer ContentServer `envPrefix:"CONTENTSERVER_"`
	Postgres      Postgres      `envPrefix:"POSTGRES_"`
}

type Query struct {
	BaseURL string        `env:"BASE_URL"`
	Dataset string        `env:"DATASET" envDefault:"production"`
	Token   string        `env:"TOKEN"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type ContentServer struct {
	URL        string            `env:"URL"`
	Dimensions []string          `env:"DIMENSIONS" envSeparator:"," envDefault:"default"`
	Groups     []string          `env:"GROUPS" envSeparator:","`
	MimeTypes  map[string]string `env:"MIME_TYPES" envSeparator:"," envKeyValSeparator:":"`
}

type Postgres struct {
	DSN     string `env:"DSN"`
	Migrate bool   `env:"MIGRATE" envDefault:"false"`
}

// Load reads the given dotenv files, then parses the environment. Without
// paths a .env file in the working directory is loaded if present.
// Variables already set in the environment win over dotenv values.
func Load(paths ...string) (Config, error) {
	if len(paths) == 0 {
		// the default .env file is optional
		_ = godotenv.Load()
	} else if err := godotenv.Load(paths...); err != nil {
		return Config{}, fmt.Errorf("failed to load env files: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendNone:
		if c.Slug.Unique {
			return fmt.Errorf("%w: SLUG_UNIQUE requires a store backend", ErrMissingSetting)
		}
	case BackendQuery:
		if c.Store.Query.BaseURL == "" {
			return fmt.Errorf("%w: STORE_QUERY_BASE_URL", ErrMissingSetting)
		}
	case BackendContentServer:
		if c.Store.ContentServer.URL == "" {
			return fmt.Errorf("%w: STORE_CONTENTSERVER_URL", ErrMissingSetting)
		}
	case BackendPostgres:
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("%w: STORE_POSTGRES_DSN", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store.Backend)
	}
	if c.Slug.MaxAttempts < 1 {
		return fmt.Errorf("%w: SLUG_MAX_ATTEMPTS must be positive", ErrMissingSetting)
	}
	return nil
}
