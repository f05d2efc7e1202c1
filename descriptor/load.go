package descriptor

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/ldscript/errors"
	"github.com/wippyai/ldscript/layout"
)

// Format identifies a descriptor syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatStarlark
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatStarlark:
		return "starlark"
	}
	return "unknown"
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".star", ".starlark":
		return FormatStarlark, nil
	}
	return 0, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
		At(errors.Position{File: path}).
		Detail("unrecognized descriptor extension %q (want .yaml, .yml, .json or .star)", filepath.Ext(path)).
		Build()
}

// Parse parses data in the given format. name is used in positions.
func Parse(name string, data []byte, f Format) (*Document, error) {
	switch f {
	case FormatYAML, FormatJSON:
		return ParseYAML(name, data)
	case FormatStarlark:
		return ParseStarlark(name, data)
	}
	return nil, errors.InvalidInput(errors.PhaseLoad, nil, "unknown descriptor format "+f.String())
}

// ParseFile reads and parses a descriptor file, picking the format from
// its extension.
func ParseFile(path string) (*Document, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, path, err)
	}

	Logger().Debug("parsing descriptor",
		zap.String("path", path),
		zap.Stringer("format", f))

	return Parse(path, data, f)
}

// Load parses a descriptor file and applies it to a new Layout.
func Load(path string, opts layout.Options) (*layout.Layout, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	l := layout.New(opts)
	if err := Apply(doc, l); err != nil {
		return nil, err
	}
	return l, nil
}
