// Package cli is responsible for parsing command-line arguments, layering
// configuration sources, and handling process-level concerns like exit
// codes. Each subcommand is a thin adapter over the app package.
package cli
