// Package descriptor loads declarative layout descriptions and applies
// them to a layout.Layout.
//
// Two syntaxes are supported. YAML (or JSON) documents hold exactly one
// MemoryRegions group and exactly one Sections group:
//
//	MemoryRegions:
//	  Flash: { address: 0x08000000, size: 256K, access: RX }
//	  Ram:   { address: 0x20000000, size: 128 kilobytes, access: RWX }
//	Sections:
//	  VectorTable: { region: Flash, offset: 0, size: 1K }
//	  Text:        { region: Flash }
//	  Data:        { vma: Ram, lma: Flash }
//	  Bss:         { region: Ram }
//
// Starlark scripts (.star) call region() and section() builtins instead;
// see ParseStarlark.
//
// Names are normalized to snake_case, size units are converted to bytes,
// and every error carries the position of the element at fault. The
// section role is inferred from its name unless a kind attribute is
// given.
package descriptor
