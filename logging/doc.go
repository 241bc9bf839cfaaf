// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. Every component in this module accepts a Logger via its
// options and defaults to NoOpLogger, so library consumers opt in to output
// explicitly.
package logging
