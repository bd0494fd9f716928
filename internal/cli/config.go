package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vk/bndl/internal/app"
	"github.com/vk/bndl/internal/config"
	"github.com/vk/bndl/internal/hcl"
)

const (
	defaultConfigFile = "bndl.hcl"
	defaultEnvFile    = ".env"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
	cacheDir   string
}

func (g *globalFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", defaultConfigFile, "Path to the HCL configuration file.")
	flags.StringVar(&g.envFile, "env-file", defaultEnvFile, "Path to a dotenv file with BNDL_* variables.")
	flags.StringVar(&g.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&g.cacheDir, "cache-dir", "", "Directory of the persistent plan cache. Empty keeps plans in memory.")
}

// loadConfig layers defaults, the configuration file, the environment and
// the global flags, in that order. mutate applies command flags last.
// Every failure is a usage error.
func (g *globalFlags) loadConfig(cmd *cobra.Command, mutate func(*config.Config)) (*config.Config, error) {
	flags := cmd.Flags()
	cfg := config.Default()

	if _, err := os.Stat(g.configPath); err == nil || flags.Changed("config") {
		if err := hcl.NewLoader().Load(cmd.Context(), g.configPath, cfg); err != nil {
			return nil, usageError(err)
		}
	}
	if err := config.LoadDotenv(g.envFile); err != nil {
		return nil, usageError(err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, usageError(err)
	}

	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = g.cacheDir
	}
	if mutate != nil {
		mutate(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// newApp builds an App from the layered configuration. Logs go to the
// command's error stream. Callers must Close the app.
func (g *globalFlags) newApp(cmd *cobra.Command, mutate func(*config.Config)) (*app.App, error) {
	cfg, err := g.loadConfig(cmd, mutate)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.ErrOrStderr(), cfg)
}
