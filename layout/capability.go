package layout

import (
	"strings"

	"github.com/wippyai/ldscript/errors"
)

// Capability is the set of access rights a region grants.
type Capability uint8

const (
	Read Capability = 1 << iota
	Write
	Execute
)

// Canonical capability kinds. Every region carries exactly one of these.
const (
	RW  = Read | Write
	RX  = Read | Execute
	RWX = Read | Write | Execute
)

// Has reports whether c grants every right in want.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Canonical reports whether c is one of RW, RX or RWX.
func (c Capability) Canonical() bool {
	switch c {
	case RW, RX, RWX:
		return true
	}
	return false
}

// String returns the upper-case form, e.g. "RX".
func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var b strings.Builder
	if c.Has(Read) {
		b.WriteByte('R')
	}
	if c.Has(Write) {
		b.WriteByte('W')
	}
	if c.Has(Execute) {
		b.WriteByte('X')
	}
	return b.String()
}

// LinkerAttrs returns the GNU ld MEMORY attribute letters.
func (c Capability) LinkerAttrs() string {
	return strings.ToLower(c.String())
}

// ParseCapability parses "RW", "RX" or "RWX", case-insensitively.
func ParseCapability(s string) (Capability, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RW":
		return RW, nil
	case "RX":
		return RX, nil
	case "RWX":
		return RWX, nil
	}
	return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Value(s).
		Detail("access %q must be one of RX, RW, RWX", s).
		Build()
}
