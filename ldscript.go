package ldscript

import (
	"go.uber.org/zap"

	"github.com/wippyai/ldscript/descriptor"
	"github.com/wippyai/ldscript/layout"
	"github.com/wippyai/ldscript/script"
)

// Config combines layout and generation settings.
type Config struct {
	Script script.Options
	Layout layout.Options
}

// DefaultConfig returns the default layout and generation settings.
func DefaultConfig() Config {
	return Config{
		Layout: layout.DefaultOptions(),
		Script: script.DefaultOptions(),
	}
}

// Generate freezes l and writes its linker script and startup glue into
// dir using the default generation options.
func Generate(l *layout.Layout, dir string) ([]string, error) {
	return GenerateWith(l, dir, script.DefaultOptions())
}

// GenerateWith is Generate with explicit options.
func GenerateWith(l *layout.Layout, dir string, opts script.Options) ([]string, error) {
	img, err := l.Freeze()
	if err != nil {
		return nil, err
	}
	return script.Generate(dir, img, opts)
}

// Build loads the descriptor at path, validates it and writes the
// generated files into dir.
func Build(path, dir string, cfg Config) ([]string, error) {
	l, err := descriptor.Load(path, cfg.Layout)
	if err != nil {
		return nil, err
	}
	return GenerateWith(l, dir, cfg.Script)
}

// SetLogger installs l as the logger of every package in the module.
// A nil logger restores the no-op default.
func SetLogger(l *zap.Logger) {
	layout.SetLogger(l)
	descriptor.SetLogger(l)
	script.SetLogger(l)
}
