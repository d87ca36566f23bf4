package pptx2md

import "log/slog"

// Option configures a Converter.
type Option func(*Converter)

// WithImageDir sets the directory exported graphics are written to
// (default: "images").
func WithImageDir(dir string) Option {
	return func(c *Converter) {
		c.imageDir = dir
	}
}

// WithLogger sets the logger for progress and diagnostics
// (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithImageExporter overrides the exporter offered by the opened document.
func WithImageExporter(exporter ImageExporter) Option {
	return func(c *Converter) {
		c.exporter = exporter
	}
}

// WithProvider registers an additional document provider, tried before the
// built-in ones.
func WithProvider(name string, p DocumentProvider) Option {
	return func(c *Converter) {
		c.RegisterProvider(name, p, PrioritySpecific-1)
	}
}
