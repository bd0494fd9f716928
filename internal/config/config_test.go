package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, errMsg: "Config.LogLevel"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, errMsg: "oneof=text json"},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, errMsg: "Config.Workers"},
		{name: "empty passthrough entry", mutate: func(c *Config) { c.Passthrough = []string{"Reroute", ""} }, errMsg: "Passthrough[1]"},
		{name: "bad unit dimension", mutate: func(c *Config) { c.Units = []Unit{{Suffix: "yd", Dimension: "mass", Factor: 1}} }, errMsg: "Units[0].Dimension"},
		{name: "unregistrable unit", mutate: func(c *Config) { c.Units = []Unit{{Suffix: "a.b", Dimension: "length", Factor: 1}} }, errMsg: `unit suffix "a.b"`},
		{name: "remote without url", mutate: func(c *Config) { c.Builder.Name = "remote" }, errMsg: "needs a URL"},
		{name: "bad url", mutate: func(c *Config) { c.Builder.URL = "not a url" }, errMsg: "Builder.URL"},
		{name: "unknown builder", mutate: func(c *Config) { c.Builder.Name = "blender" }, errMsg: "Builder.Name"},
		{name: "zero timeout", mutate: func(c *Config) { c.Builder.Timeout = 0 }, errMsg: "Builder.Timeout"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			assert.ErrorContains(t, c.Validate(), tc.errMsg)
		})
	}
}

func TestUnitTable(t *testing.T) {
	c := Default()
	c.Units = []Unit{{Suffix: "yd", Dimension: "length", Factor: 0.9144}}
	table, err := c.UnitTable()
	require.NoError(t, err)

	u, ok := table.Lookup("yd")
	require.True(t, ok)
	assert.InDelta(t, 0.9144, u.Factor, 1e-12)
	_, ok = table.Lookup("deg")
	assert.True(t, ok, "defaults are kept")
}

func TestCompilerOptions(t *testing.T) {
	c := Default()
	assert.Empty(t, c.CompilerOptions())
	c.Passthrough = []string{"MyReroute"}
	assert.Len(t, c.CompilerOptions(), 1)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BNDL_LOG_LEVEL":       "debug",
		"BNDL_CACHE":           "false",
		"BNDL_WORKERS":         "12",
		"BNDL_PASSTHROUGH":     "NodeReroute, ,MyFrame",
		"BNDL_BUILDER":         "remote",
		"BNDL_BUILDER_URL":     "http://localhost:3000/bndl",
		"BNDL_BUILDER_TIMEOUT": "250ms",
		"UNRELATED":            "x",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	require.NoError(t, c.ApplyEnv(lookup))
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat, "unset variables leave the value alone")
	assert.False(t, c.CacheEnabled)
	assert.Equal(t, 12, c.Workers)
	assert.Equal(t, []string{"NodeReroute", "MyFrame"}, c.Passthrough)
	assert.Equal(t, "remote", c.Builder.Name)
	assert.Equal(t, 250*time.Millisecond, c.Builder.Timeout)
	require.NoError(t, c.Validate())
}

func TestApplyEnv_Errors(t *testing.T) {
	for name, val := range map[string]string{
		"BNDL_CACHE":           "maybe",
		"BNDL_WORKERS":         "many",
		"BNDL_BUILDER_TIMEOUT": "soon",
	} {
		t.Run(name, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				if k == name {
					return val, true
				}
				return "", false
			}
			assert.ErrorContains(t, Default().ApplyEnv(lookup), name)
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	require.NoError(t, LoadDotenv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BNDL_TEST_DOTENV_WORKERS=7\n"), 0o600))
	t.Setenv("BNDL_TEST_DOTENV_WORKERS", "")
	os.Unsetenv("BNDL_TEST_DOTENV_WORKERS")

	require.NoError(t, LoadDotenv(path))
	assert.Equal(t, "7", os.Getenv("BNDL_TEST_DOTENV_WORKERS"))
}
