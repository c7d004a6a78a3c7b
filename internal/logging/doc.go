// Package logging configures slog output for the CLI and the pipeline.
//
// Two handler formats are supported: a compact console format for interactive
// use and JSON for log files and CI runs. Helper constructors keep attribute
// keys consistent across components.
package logging
