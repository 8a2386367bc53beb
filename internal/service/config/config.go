package config

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/talx-hub/gopher-auth/internal/model"
	"github.com/talx-hub/gopher-auth/internal/serviceerrs"
)

type Config struct {
	RunAddr            string        `env:"RUN_ADDRESS"          envDefault:"localhost:8080"`
	DatabaseURI        string        `env:"DATABASE_URI"         envDefault:""`
	DatabaseCACert     string        `env:"DATABASE_CA_CERT"     envDefault:""`
	SecretKey          string        `env:"SECRET_KEY"           envDefault:""`
	LogLevel           string        `env:"LOG_LEVEL"            envDefault:"info"`
	LandingPage        string        `env:"LANDING_PAGE"         envDefault:"/index.html"`
	TokenTTL           time.Duration `env:"TOKEN_TTL"            envDefault:"24h"`
	HashConcurrency    uint64        `env:"HASH_CONCURRENCY"     envDefault:"0"`
	PasswordMinEntropy float64       `env:"PASSWORD_MIN_ENTROPY" envDefault:"0"`
	DatabaseMaxConns   int32         `env:"DATABASE_MAX_CONNS"   envDefault:"10"`
}

type Builder struct {
	cfg   *Config
	log   *slog.Logger
	flags *flag.FlagSet
	args  []string
}

func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{
		cfg: &Config{
			RunAddr:            "",
			DatabaseURI:        "",
			DatabaseCACert:     "",
			SecretKey:          "",
			LogLevel:           "",
			LandingPage:        "",
			TokenTTL:           0,
			HashConcurrency:    0,
			PasswordMinEntropy: 0,
			DatabaseMaxConns:   0,
		},
		log:   log,
		flags: flag.CommandLine,
		args:  os.Args[1:],
	}
}

// WithFlagSet makes FromFlags parse args with fs instead of the process
// command line.
func (b *Builder) WithFlagSet(fs *flag.FlagSet, args []string) *Builder {
	b.flags = fs
	b.args = args
	return b
}

// FromDotEnv loads variables from the given files (".env" by default) into
// the process environment. Variables already set are not overridden and a
// missing file is not an error.
func (b *Builder) FromDotEnv(files ...string) *Builder {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			b.log.LogAttrs(context.Background(),
				slog.LevelWarn, "Failed to load dotenv file",
				slog.String("file", f),
				slog.Any(model.KeyLoggerError, err))
		}
	}
	return b
}

func (b *Builder) FromEnv() *Builder {
	if err := env.Parse(b.cfg); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse config", slog.Any(model.KeyLoggerError, err))
	}
	return b
}

func (b *Builder) FromFlags() *Builder {
	fs := b.flags
	fs.StringVar(&b.cfg.RunAddr, "a", b.cfg.RunAddr, "Run address")
	fs.StringVar(&b.cfg.DatabaseURI, "d", b.cfg.DatabaseURI, "Database URI")
	fs.StringVar(&b.cfg.DatabaseCACert, "c", b.cfg.DatabaseCACert, "Database CA certificate file")
	fs.StringVar(&b.cfg.SecretKey, "k", b.cfg.SecretKey, "Secret key")
	fs.StringVar(&b.cfg.LogLevel, "l", b.cfg.LogLevel, "Log level")
	fs.StringVar(&b.cfg.LandingPage, "p", b.cfg.LandingPage, "Landing page URL")
	fs.DurationVar(&b.cfg.TokenTTL, "t", b.cfg.TokenTTL, "Token TTL")
	fs.Uint64Var(&b.cfg.HashConcurrency, "w", b.cfg.HashConcurrency, "Concurrent password hashes, 0 means NumCPU")
	fs.Float64Var(&b.cfg.PasswordMinEntropy, "e", b.cfg.PasswordMinEntropy, "Minimal password entropy bits, 0 disables the check")
	maxConns := int(b.cfg.DatabaseMaxConns)
	fs.IntVar(&maxConns, "m", maxConns, "Database max connections")

	if err := fs.Parse(b.args); err != nil {
		b.log.LogAttrs(context.Background(),
			slog.LevelError, "Failed to parse flags", slog.Any(model.KeyLoggerError, err))
	}
	b.cfg.DatabaseMaxConns = int32(maxConns) //nolint: gosec // small positive config value
	return b
}

func (b *Builder) GetConfig() *Config {
	return b.cfg
}

func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, serviceerrs.ErrEmptySecret)
	}
	if c.DatabaseURI == "" {
		errs = append(errs, errors.New("database URI is empty"))
	}
	if c.DatabaseMaxConns <= 0 {
		errs = append(errs, errors.New("database max connections must be positive"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token TTL must be positive"))
	}
	if c.PasswordMinEntropy < 0 {
		errs = append(errs, errors.New("password min entropy must not be negative"))
	}
	return errors.Join(errs...)
}
