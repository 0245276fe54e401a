// Package slog provides log/slog decorators for transpress services. Each
// decorator delegates to the wrapped service and logs one record per call
// with its duration and error.
package slog
