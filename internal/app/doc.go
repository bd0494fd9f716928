// Package app wires the toolchain together. It owns the configuration,
// logger, plan cache, builder registry and metrics, and exposes the
// pipeline operations (check, compile, export, inspect, apply) used by both
// the CLI and the HTTP service, decoupled from any specific entrypoint.
package app
