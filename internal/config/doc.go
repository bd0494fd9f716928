// Package config defines the toolchain configuration and the rules for
// layering it from several sources.
//
// Precedence, lowest first: Default(), a bndl.hcl file (see internal/hcl),
// a .env file and BNDL_* environment variables (ApplyEnv), then command-line
// flags applied by internal/cli. Validate runs once after all layers.
package config
