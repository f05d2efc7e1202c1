package script

import (
	"fmt"
	"strings"

	"github.com/wippyai/ldscript/layout"
)

const header = "/* Generated by ldscript. Do not edit. */"

// emitter accumulates generated text line by line.
type emitter struct {
	b strings.Builder
}

func (e *emitter) line(indent int, format string, args ...any) {
	e.b.WriteString(strings.Repeat("  ", indent))
	if len(args) > 0 {
		fmt.Fprintf(&e.b, format, args...)
	} else {
		e.b.WriteString(format)
	}
	e.b.WriteByte('\n')
}

func (e *emitter) blank() { e.b.WriteByte('\n') }

func (e *emitter) String() string { return e.b.String() }

// Symbol names exported for every section.
func startSymbol(s layout.Section) string { return "__" + s.Name + "_start" }
func endSymbol(s layout.Section) string   { return "__" + s.Name + "_end" }
func loadSymbol(s layout.Section) string  { return "__" + s.Name + "_load" }

// LinkerScript renders img as a GNU ld linker script. The output depends
// only on img and opts.
func LinkerScript(img *layout.Image, opts Options) string {
	var e emitter

	e.line(0, header)
	e.blank()

	e.line(0, "MEMORY")
	e.line(0, "{")
	for _, r := range img.Regions() {
		e.line(1, "%s (%s) : ORIGIN = 0x%08x, LENGTH = 0x%08x",
			r.ID, r.Capabilities.LinkerAttrs(), uint32(r.Base), uint32(r.Size))
	}
	e.line(0, "}")
	e.blank()

	e.line(0, "ENTRY(%s)", opts.Entry)
	e.blank()

	e.line(0, "SECTIONS")
	e.line(0, "{")
	for i, s := range img.Sections() {
		if i > 0 {
			e.blank()
		}
		outputSection(&e, s)
	}
	e.line(0, "}")

	return e.String()
}

func outputSection(e *emitter, s layout.Section) {
	head := "." + s.Name
	if s.HasOffset {
		head += fmt.Sprintf(" ORIGIN(%s) + 0x%08x", s.VMA, s.Offset)
	}
	if s.Role.NoLoad() {
		head += " (NOLOAD)"
	}
	head += " :"
	if s.Align > 0 {
		head += fmt.Sprintf(" ALIGN(%d)", s.Align)
	}

	e.line(1, "%s", head)
	e.line(1, "{")
	e.line(2, "%s = .;", startSymbol(s))
	for _, in := range inputs(s) {
		e.line(2, "%s", in)
	}
	if s.Size > 0 {
		e.line(2, "ASSERT(. - %s <= 0x%x, \"section %s exceeds %s\");",
			startSymbol(s), uint32(s.Size), s.Name, s.Size)
		e.line(2, ". = %s + 0x%x;", startSymbol(s), uint32(s.Size))
	}
	// A sized section ends exactly at its reservation. Only derived sizes
	// are padded to a word boundary.
	if s.Size == 0 && (s.BootCopy() || s.Role == layout.RoleBss) {
		e.line(2, ". = ALIGN(4);")
	}
	e.line(2, "%s = .;", endSymbol(s))

	if s.BootCopy() {
		e.line(1, "} > %s AT > %s", s.VMA, s.LMA)
		e.line(1, "%s = LOADADDR(.%s);", loadSymbol(s), s.Name)
	} else {
		e.line(1, "} > %s", s.VMA)
	}
}

// inputs returns the input section descriptions collected into s.
func inputs(s layout.Section) []string {
	own := fmt.Sprintf("*(.%s .%s.*)", s.Name, s.Name)
	switch s.Role {
	case layout.RoleVectors, layout.RoleCustom:
		return []string{"KEEP(" + own + ")"}
	case layout.RoleText:
		if s.Name == "text" {
			return []string{own, "*(.rodata .rodata.*)"}
		}
	case layout.RoleBss:
		if s.Name == "bss" {
			return []string{own, "*(COMMON)"}
		}
	case layout.RoleStack:
		return nil
	}
	return []string{own}
}
