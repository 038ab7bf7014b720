// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config provides a configuration struct and options to adjust the configuration.
//
// The configuration struct holds all configuration options for the extraction process.
// The configuration options can be adjusted using the option pattern style.
type Config struct {
	// bufferSize is the size of the buffer used to copy entry data and
	// the maximum number of bytes read from the outer archive at once
	bufferSize int

	// createDirMode is the file mode for directories that are created on
	// the fly, e.g. missing parent directories of an entry
	createDirMode fs.FileMode

	// logger stream for extraction
	logger logger

	// maxInputSize is the maximum size of the package file.
	// Set value to -1 to disable the check.
	maxInputSize int64

	// telemetryHook is a function to consume telemetry data after a finished operation
	// Important: do not adjust this value after extraction started
	telemetryHook TelemetryHook
}

// BufferSize returns the buffer size used while copying entry data.
func (c *Config) BufferSize() int {
	return c.bufferSize
}

// CheckInputSize checks if fileSize exceeds the configured maximum. If the maximum
// is exceeded, a [ErrMaxInputSizeExceeded] error is returned.
func (c *Config) CheckInputSize(fileSize int64) error {

	// check if disabled
	if c.MaxInputSize() == -1 {
		return nil
	}

	// check value
	if fileSize > c.MaxInputSize() {
		return ErrMaxInputSizeExceeded
	}
	return nil
}

// CreateDirMode returns the file mode for directories created on the fly.
func (c *Config) CreateDirMode() fs.FileMode {
	return c.createDirMode
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxInputSize returns the maximum size of the package file.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return func(ctx context.Context, d *TelemetryData) {
			// noop
		}
	}
	return c.telemetryHook
}

const (
	defaultBufferSize    = 4096 // one page per read
	defaultCreateDirMode = 0755 // default directory permissions rwxr-xr-x
	defaultMaxInputSize  = -1   // no input size check
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		bufferSize:    defaultBufferSize,
		createDirMode: defaultCreateDirMode,
		logger:        defaultLogger,
		maxInputSize:  defaultMaxInputSize,
		telemetryHook: defaultTelemetryHook,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithBufferSize options pattern function to set the buffer size used while
// copying entry data. Values below 1 are ignored.
func WithBufferSize(size int) ConfigOption {
	return func(c *Config) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// WithCreateDirMode options pattern function to set the file mode for
// directories created on the fly.
func WithCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.createDirMode = mode.Perm()
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxInputSize options pattern function to set MaxInputSize for the package file. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after a finished operation.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
