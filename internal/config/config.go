package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vk/bndl/internal/compiler"
	"github.com/vk/bndl/internal/value"
)

// Loader reads a configuration file and layers it over an existing Config.
type Loader interface {
	Load(ctx context.Context, path string, into *Config) error
}

// Config holds everything the toolchain reads from its environment.
type Config struct {
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	CacheEnabled bool
	// CacheDir holds the persistent plan cache. Empty keeps plans in memory.
	CacheDir string

	Workers int `validate:"gte=1,lte=256"`

	// Passthrough replaces the compiler's default pass-through type list
	// when non-empty.
	Passthrough []string `validate:"dive,required"`
	Units       []Unit   `validate:"dive"`

	ServeAddr string `validate:"required"`

	Builder Builder
}

// Unit is a user-defined literal suffix.
type Unit struct {
	Suffix    string  `validate:"required"`
	Dimension string  `validate:"oneof=angle length"`
	Factor    float64 `validate:"gt=0"`
}

// Builder selects the Target Graph Builder used by `bndl apply`.
type Builder struct {
	Name      string `validate:"oneof=memory remote"`
	URL       string `validate:"omitempty,url"`
	Namespace string
	Timeout   time.Duration `validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		CacheEnabled: true,
		Workers:      4,
		ServeAddr:    ":8080",
		Builder: Builder{
			Name:      "memory",
			Namespace: "/",
			Timeout:   10 * time.Second,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the extra units can be
// registered.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("invalid configuration: %s fails %q (value %v)", e.Namespace(), tagWithParam(e), e.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Builder.Name == "remote" && c.Builder.URL == "" {
		return errors.New("invalid configuration: the remote builder needs a URL")
	}
	if _, err := c.UnitTable(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func tagWithParam(e validator.FieldError) string {
	if e.Param() == "" {
		return e.Tag()
	}
	return e.Tag() + "=" + e.Param()
}

// UnitTable returns the default units extended by c.Units.
func (c *Config) UnitTable() (*value.UnitTable, error) {
	table := value.DefaultUnits()
	for _, u := range c.Units {
		err := table.Register(value.Unit{
			Suffix:    u.Suffix,
			Dimension: value.Dimension(u.Dimension),
			Factor:    u.Factor,
		})
		if err != nil {
			return nil, err
		}
	}
	return table, nil
}

// CompilerOptions translates the configuration into compiler options.
func (c *Config) CompilerOptions() []compiler.Option {
	if len(c.Passthrough) == 0 {
		return nil
	}
	return []compiler.Option{compiler.WithPassthrough(c.Passthrough...)}
}

// CachePath returns the badger directory, or "" when plans are cached in
// memory only.
func (c *Config) CachePath() string {
	if c.CacheDir == "" {
		return ""
	}
	return filepath.Join(c.CacheDir, "plans")
}

// splitList parses a comma separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
