package script

import (
	"github.com/wippyai/ldscript/layout"
)

// StartupGlue renders the C file whose init function copies every
// boot-copy section from its load address and zeroes every bss section.
// It relies on the symbols LinkerScript defines.
func StartupGlue(img *layout.Image, opts Options) string {
	var e emitter

	copies := img.BootCopy()
	zeros := img.ZeroFill()
	copyFn := opts.InitFunc + "_copy"
	zeroFn := opts.InitFunc + "_zero"

	e.line(0, header)
	e.blank()

	for _, s := range copies {
		e.line(0, "extern unsigned char %s[], %s[], %s[];", startSymbol(s), endSymbol(s), loadSymbol(s))
	}
	for _, s := range zeros {
		e.line(0, "extern unsigned char %s[], %s[];", startSymbol(s), endSymbol(s))
	}
	if len(copies)+len(zeros) > 0 {
		e.blank()
	}

	if len(copies) > 0 {
		e.line(0, "static void %s(unsigned char *dst, const unsigned char *src, const unsigned char *end)", copyFn)
		e.line(0, "{")
		e.line(1, "while (dst < end) {")
		e.line(2, "*dst++ = *src++;")
		e.line(1, "}")
		e.line(0, "}")
		e.blank()
	}
	if len(zeros) > 0 {
		e.line(0, "static void %s(unsigned char *dst, const unsigned char *end)", zeroFn)
		e.line(0, "{")
		e.line(1, "while (dst < end) {")
		e.line(2, "*dst++ = 0;")
		e.line(1, "}")
		e.line(0, "}")
		e.blank()
	}

	e.line(0, "void %s(void)", opts.InitFunc)
	e.line(0, "{")
	for _, s := range copies {
		e.line(1, "%s(%s, %s, %s);", copyFn, startSymbol(s), loadSymbol(s), endSymbol(s))
	}
	for _, s := range zeros {
		e.line(1, "%s(%s, %s);", zeroFn, startSymbol(s), endSymbol(s))
	}
	e.line(0, "}")

	return e.String()
}
