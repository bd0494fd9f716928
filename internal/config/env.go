package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the toolchain reads.
const EnvPrefix = "BNDL_"

// LoadDotenv loads path into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv layers BNDL_* variables over c. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("CACHE_DIR", &c.CacheDir)
	str("SERVE_ADDR", &c.ServeAddr)
	str("BUILDER", &c.Builder.Name)
	str("BUILDER_URL", &c.Builder.URL)
	str("BUILDER_NAMESPACE", &c.Builder.Namespace)

	if v, ok := lookup(EnvPrefix + "CACHE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCACHE: %w", EnvPrefix, err)
		}
		c.CacheEnabled = b
	}
	if v, ok := lookup(EnvPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", EnvPrefix, err)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvPrefix + "BUILDER_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sBUILDER_TIMEOUT: %w", EnvPrefix, err)
		}
		c.Builder.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "PASSTHROUGH"); ok {
		c.Passthrough = splitList(v)
	}
	return nil
}
