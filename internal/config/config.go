package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"kitchen"
)

// Storage formats.
const (
	FormatSQLite  = "sqlite"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

var ErrInvalidConfig = errors.New("invalid config")

// Ingredient is an extra conversion table entry declared in the config file.
type Ingredient struct {
	Name     string               `yaml:"name"`
	BaseUnit string               `yaml:"base_unit"`
	Units    []kitchen.UnitFactor `yaml:"units"`
}

type Config struct {
	Database    string       `yaml:"database"`
	Format      string       `yaml:"format"`
	LogLevel    string       `yaml:"log_level"`
	Listen      string       `yaml:"listen"`
	Ingredients []Ingredient `yaml:"ingredients"`
}

func Default() Config {
	return Config{
		Format:   FormatSQLite,
		LogLevel: "info",
		Listen:   "127.0.0.1:7420",
	}
}

// HomeDir is $KITCHEN_HOME, or ~/.kitchen.
func HomeDir() string {
	if h := os.Getenv("KITCHEN_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kitchen"
	}
	return filepath.Join(home, ".kitchen")
}

func DefaultPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// Load reads the config at path over the defaults. A missing file is not an
// error. Environment overrides apply last.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("KITCHEN_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("KITCHEN_FORMAT"); v != "" {
		c.Format = v
	}
	if v := os.Getenv("KITCHEN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case FormatSQLite, FormatJSON, FormatMsgpack:
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidConfig, c.Format)
	}
	for i, ing := range c.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("%w: ingredient %d has no name", ErrInvalidConfig, i)
		}
		if _, err := kitchen.ParseBaseUnit(ing.BaseUnit); err != nil {
			return fmt.Errorf("%w: ingredient %q: %v", ErrInvalidConfig, ing.Name, err)
		}
	}
	return nil
}

// DatabasePath is Database, or a file under HomeDir named after the format.
func (c Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	switch strings.ToLower(c.Format) {
	case FormatJSON:
		return filepath.Join(HomeDir(), "kitchen.json")
	case FormatMsgpack:
		return filepath.Join(HomeDir(), "kitchen.msgpack")
	default:
		return filepath.Join(HomeDir(), "kitchen.db")
	}
}

// Register adds the configured ingredients to t.
func (c Config) Register(t *kitchen.Table) error {
	for _, ing := range c.Ingredients {
		base, err := kitchen.ParseBaseUnit(ing.BaseUnit)
		if err != nil {
			return err
		}
		if err := t.Register(ing.Name, base, ing.Units...); err != nil {
			return err
		}
	}
	return nil
}
