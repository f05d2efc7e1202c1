package script

import (
	"path/filepath"
	"strings"

	"github.com/wippyai/ldscript/errors"
	"github.com/wippyai/ldscript/layout"
)

// Options configures generation.
type Options struct {
	// ScriptName is the linker script file name inside the output directory.
	ScriptName string
	// StartupName is the startup glue file name.
	StartupName string
	// InitFunc names the C function that copies and clears sections.
	InitFunc string
	// Entry is the symbol passed to ENTRY().
	Entry string
	// Startup enables writing the startup glue.
	Startup bool
}

// DefaultOptions returns the standard generation settings.
func DefaultOptions() Options {
	return Options{
		ScriptName:  "link.x",
		StartupName: "startup.c",
		InitFunc:    "ldscript_init",
		Entry:       "Reset_Handler",
		Startup:     true,
	}
}

func (o Options) validate() error {
	if err := fileName("script_name", o.ScriptName); err != nil {
		return err
	}
	if !layout.ValidIdentifier(o.Entry) {
		return errors.InvalidIdentifier(errors.PhaseGenerate, []string{"entry"}, o.Entry)
	}
	if !o.Startup {
		return nil
	}
	if err := fileName("startup_name", o.StartupName); err != nil {
		return err
	}
	if o.StartupName == o.ScriptName {
		return errors.InvalidInput(errors.PhaseGenerate, []string{"startup_name"},
			"startup glue and linker script need distinct file names")
	}
	if !layout.ValidIdentifier(o.InitFunc) {
		return errors.InvalidIdentifier(errors.PhaseGenerate, []string{"init_func"}, o.InitFunc)
	}
	return nil
}

func fileName(field, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
			Path(field).
			Value(name).
			Detail("%q is not a plain file name", name).
			Build()
	}
	return nil
}
