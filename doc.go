// Package ldscript models firmware memory layouts and generates the
// linker scripts that realize them.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	ldscript/            Root package with Build and Generate entry points
//	├── layout/          Regions, capabilities, sections and validation
//	├── descriptor/      YAML, JSON and Starlark layout descriptions
//	├── script/          GNU ld script and C startup glue emission
//	├── errors/          Structured error types with descriptor positions
//	└── cmd/ldscript/    Command line front-end
//
// # Quick Start
//
// Build a layout in code:
//
//	l := layout.NewWithDefaults()
//	flash, _ := l.AddRXRegion("flash", 0x08000000, layout.Kilobytes(256))
//	ram, _ := l.AddRWXRegion("ram", 0x20000000, layout.Kilobytes(128))
//
//	_ = l.VectorTable(flash, flash, layout.WithOffset(0), layout.WithSize(0x400))
//	_ = l.Text(flash, flash)
//	_ = l.Data(ram, flash)
//	_ = l.Bss(ram)
//	_ = l.Stack(ram, layout.WithSize(layout.Kilobytes(4)))
//
//	paths, err := ldscript.Generate(l, "build")
//
// Or from a descriptor file:
//
//	paths, err := ldscript.Build("board.yaml", "build", ldscript.DefaultConfig())
//
// # Capabilities
//
// Placement methods take region handles whose type encodes the rights the
// region grants. Executing code from a read/write region, or writing data
// into a read/execute region, does not compile. Descriptor input goes
// through layout.Place, which performs the same checks at run time.
//
// # Thread Safety
//
// A Layout is built by a single goroutine. Once frozen, its Image is
// immutable and may be shared.
package ldscript
