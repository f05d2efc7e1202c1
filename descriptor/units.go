package descriptor

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/ldscript/errors"
	"github.com/wippyai/ldscript/layout"
)

// unit suffixes, longest first so "kb" wins over "b".
var sizeUnits = []struct {
	suffix string
	scale  uint64
}{
	{"kilobytes", 1024},
	{"megabytes", 1024 * 1024},
	{"bytes", 1},
	{"kib", 1024},
	{"mib", 1024 * 1024},
	{"kb", 1024},
	{"mb", 1024 * 1024},
	{"k", 1024},
	{"m", 1024 * 1024},
	{"b", 1},
}

// ParseSize converts a size literal into bytes. Accepted forms are a
// plain integer (decimal, 0x, 0o, 0b, underscores allowed) or a decimal
// integer followed by a unit: B, bytes, K, KB, KiB, kilobytes, M, MB,
// MiB, megabytes. Units are case-insensitive and may be separated by
// spaces. Hexadecimal literals take no unit.
func ParseSize(s string) (layout.Size, error) {
	n, err := parseScaled(s)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseParse, nil, s, "32 bits")
	}
	return layout.Size(n), nil
}

func parseScaled(s string) (uint64, error) {
	lit := strings.ToLower(strings.TrimSpace(s))
	if lit == "" {
		return 0, errors.InvalidInput(errors.PhaseParse, nil, "empty size")
	}

	if !strings.HasPrefix(lit, "0x") {
		for _, u := range sizeUnits {
			if !strings.HasSuffix(lit, u.suffix) {
				continue
			}
			num := strings.TrimSpace(strings.TrimSuffix(lit, u.suffix))
			n, err := strconv.ParseUint(num, 10, 64)
			if err != nil {
				continue
			}
			if n > math.MaxUint64/u.scale {
				return 0, errors.Overflow(errors.PhaseParse, nil, s, "64 bits")
			}
			return n * u.scale, nil
		}
	}

	n, err := strconv.ParseUint(lit, 0, 64)
	if err != nil {
		return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Value(s).
			Detail("invalid size %q", s).
			Cause(err).
			Build()
	}
	return n, nil
}

// ParseAddress converts an integer literal into a 32-bit address.
func ParseAddress(s string) (layout.Address, error) {
	n, err := parseUint32(s)
	if err != nil {
		return 0, err
	}
	return layout.Address(n), nil
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Value(s).
			Detail("invalid integer %q", s).
			Cause(err).
			Build()
	}
	if n > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseParse, nil, s, "32 bits")
	}
	return uint32(n), nil
}
