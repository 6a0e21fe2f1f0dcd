// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Catalog CatalogConfig `toml:"catalog"`
	Auth    AuthConfig    `toml:"auth"`

	// Slots are the meal occasions, in display order.
	Slots []string `toml:"slots"`
}

type ServerConfig struct {
	Transport string `toml:"transport"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
}

type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

type CatalogConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
	Users         []User `toml:"users"`
}

// User is an account allowed to generate plans. PasswordHash is a bcrypt
// hash, produced with `meal-plan -hash-password`.
type User struct {
	Username     string `toml:"username"`
	PasswordHash string `toml:"password_hash"`
	Role         string `toml:"role"`
}

var DefaultSlots = []string{"Desayuno", "Comida", "Cena"}

// Load reads an optional .env file and an optional TOML file, then applies
// MEALPLAN_* environment overrides and defaults. An empty path skips the
// TOML file. The result is not validated; callers apply their own overrides
// first and then call Validate.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	return cfg, nil
}

func (c *Config) SetDefaults() {
	if c.Server.Transport == "" {
		c.Server.Transport = "http"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8012
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = "/data/meal-plan.db"
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "grupos.json"
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 12
	}
	if len(c.Slots) == 0 {
		c.Slots = append([]string(nil), DefaultSlots...)
	}
	for i := range c.Auth.Users {
		if c.Auth.Users[i].Role == "" {
			c.Auth.Users[i].Role = "nutritionist"
		}
	}
}

func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MEALPLAN_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("MEALPLAN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("MEALPLAN_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("MEALPLAN_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("MEALPLAN_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("MEALPLAN_SLOTS"); v != "" {
		var slots []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				slots = append(slots, s)
			}
		}
		c.Slots = slots
	}
}

func (c *Config) Validate() error {
	if c.Server.Transport != "http" {
		return fmt.Errorf("unsupported transport %q", c.Server.Transport)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}
	if c.Auth.TokenTTLHours < 0 {
		return fmt.Errorf("token_ttl_hours must not be negative")
	}

	seenSlots := make(map[string]bool, len(c.Slots))
	for _, s := range c.Slots {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("slot names must not be empty")
		}
		if seenSlots[s] {
			return fmt.Errorf("slot %q listed twice", s)
		}
		seenSlots[s] = true
	}

	seenUsers := make(map[string]bool, len(c.Auth.Users))
	for _, u := range c.Auth.Users {
		if u.Username == "" || u.PasswordHash == "" {
			return fmt.Errorf("every user needs username and password_hash")
		}
		if seenUsers[u.Username] {
			return fmt.Errorf("user %q listed twice", u.Username)
		}
		seenUsers[u.Username] = true
	}
	if len(c.Auth.Users) > 0 && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when users are configured")
	}
	return nil
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}
