package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/blackcloro/escrow-program/internal/domain/account"
)

type Config struct {
	Port      int             `mapstructure:"PORT" validate:"min=1,max=65535"`
	Log       LogConfig       `mapstructure:"LOG"`
	DB        DBConfig        `mapstructure:"DB"`
	Worker    WorkerConfig    `mapstructure:"WORKER"`
	Rent      RentConfig      `mapstructure:"RENT"`
	Program   ProgramConfig   `mapstructure:"PROGRAM"`
	RateLimit RateLimitConfig `mapstructure:"RATE_LIMIT"`
}

type LogConfig struct {
	Level string `mapstructure:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
}

type DBConfig struct {
	// DSN selects the Postgres store. Empty keeps accounts in memory.
	DSN        string `mapstructure:"DSN"`
	Migrations string `mapstructure:"MIGRATIONS"`
}

type WorkerConfig struct {
	Interval time.Duration `mapstructure:"INTERVAL" validate:"gt=0"`
}

type RentConfig struct {
	LamportsPerByteYear uint64  `mapstructure:"LAMPORTS_PER_BYTE_YEAR" validate:"gt=0"`
	ExemptionThreshold  float64 `mapstructure:"EXEMPTION_THRESHOLD" validate:"gt=0"`
}

// RateLimitConfig bounds requests per client. Max of zero disables limiting.
type RateLimitConfig struct {
	Max    int           `mapstructure:"MAX" validate:"min=0"`
	Window time.Duration `mapstructure:"WINDOW" validate:"gt=0"`
}

type ProgramConfig struct {
	ID string `mapstructure:"ID" validate:"omitempty,len=64,hexadecimal,excludesall=xX"`
}

var validate = validator.New()

func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile reads path as an env file, then lets environment variables prefixed
// with ESCROW_PROGRAM_ override it. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", 4000)
	v.SetDefault("LOG.LEVEL", "info")
	v.SetDefault("DB.DSN", "")
	v.SetDefault("DB.MIGRATIONS", "file://migrations")
	v.SetDefault("WORKER.INTERVAL", time.Minute)
	v.SetDefault("RENT.LAMPORTS_PER_BYTE_YEAR", account.DefaultRent.LamportsPerByteYear)
	v.SetDefault("RENT.EXEMPTION_THRESHOLD", account.DefaultRent.ExemptionThreshold)
	v.SetDefault("PROGRAM.ID", "")
	v.SetDefault("RATE_LIMIT.MAX", 100)
	v.SetDefault("RATE_LIMIT.WINDOW", 30*time.Second)

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file, %s. Using defaults and environment variables.\n", err)
	}

	v.SetEnvPrefix("ESCROW_PROGRAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) ProgramID() (account.Pubkey, error) {
	if c.Program.ID == "" {
		return account.DefaultEscrowProgramID, nil
	}
	return account.ParsePubkey(strings.ToLower(c.Program.ID))
}

func (c *Config) RentParams() account.Rent {
	return account.Rent{
		LamportsPerByteYear: c.Rent.LamportsPerByteYear,
		ExemptionThreshold:  c.Rent.ExemptionThreshold,
	}
}
