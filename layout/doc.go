// Package layout models the memory layout of a firmware image.
//
// A Layout owns named memory regions with fixed capabilities and named
// sections placed into them. Sections have an execution region (VMA) and
// a load region (LMA); when they differ, startup code copies the section
// before use.
//
// # Regions
//
// Region intervals are half-open and never intersect. Touching regions
// are allowed:
//
//	l := layout.NewWithDefaults()
//	flash, _ := l.AddRXRegion("flash", 0x00000000, layout.Kilobytes(32))
//	ram, _ := l.AddRWXRegion("ram", 0x20000000, layout.Kilobytes(256))
//	_, err := l.AddRWXRegion("ram2", 0x20000000, layout.Kilobytes(4))
//	// err is an overlap error naming "ram"
//
// # Capabilities
//
// The typed handles RWRegion, RXRegion and RWXRegion implement the marker
// interfaces Readable, Writable and Executable for the rights they grant.
// Placement methods take these interfaces, so passing a read/write region
// as the execution region of Text does not compile. Place is the run-time
// checked equivalent for callers that learn region kinds from data.
//
// # Lifecycle
//
// Empty → Populated → Generated. Freeze validates completeness and
// returns an immutable Image; the layout rejects mutation afterwards.
package layout
