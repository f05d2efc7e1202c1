// Package script serializes a frozen layout.Image.
//
// LinkerScript renders a GNU ld script with a MEMORY block listing every
// region, an ENTRY directive and a SECTIONS block in image order. Each
// output section exports __<name>_start and __<name>_end; boot-copy
// sections also export __<name>_load, the address of their initial bytes.
// StartupGlue renders a C init function that uses those symbols to copy
// boot-copy sections and clear bss sections. Generate writes both files.
//
//	img, err := l.Freeze()
//	if err != nil {
//		return err
//	}
//	paths, err := script.Generate("build", img, script.DefaultOptions())
package script
