package descriptor

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/wippyai/ldscript/errors"
	"github.com/wippyai/ldscript/layout"
)

// Group names of a YAML or JSON descriptor.
const (
	GroupRegions  = "MemoryRegions"
	GroupSections = "Sections"
)

// Document is a parsed, fully resolved layout description. Sizes are in
// bytes and names are normalized; region references are not yet checked.
type Document struct {
	Source   string
	Regions  []RegionSpec
	Sections []SectionSpec
}

// RegionSpec describes one memory region.
type RegionSpec struct {
	Name    string
	Pos     errors.Position
	Address layout.Address
	Size    layout.Size
	Access  layout.Capability
}

// SectionSpec describes one section placement. Exactly one of Region or
// the VMA/LMA pair is set.
type SectionSpec struct {
	Name      string
	Region    string
	VMA       string
	LMA       string
	Pos       errors.Position
	Size      layout.Size
	Offset    uint32
	Align     uint32
	Role      layout.Role
	HasOffset bool
}

// Placement returns the execution and load region names.
func (s SectionSpec) Placement() (vma, lma string) {
	if s.Region != "" {
		return s.Region, s.Region
	}
	return s.VMA, s.LMA
}

func (s SectionSpec) options() []layout.SectionOption {
	var opts []layout.SectionOption
	if s.Size != 0 {
		opts = append(opts, layout.WithSize(s.Size))
	}
	if s.HasOffset {
		opts = append(opts, layout.WithOffset(s.Offset))
	}
	if s.Align != 0 {
		opts = append(opts, layout.WithAlign(s.Align))
	}
	return opts
}

// Apply registers every region and section of doc with l, in document
// order. The first failure is returned with the element's position.
func Apply(doc *Document, l *layout.Layout) error {
	regions := make(map[string]layout.Region, len(doc.Regions))
	for _, r := range doc.Regions {
		h, err := l.AddRegion(r.Name, r.Address, r.Size, r.Access)
		if err != nil {
			return errors.WithPosition(err, r.Pos)
		}
		regions[r.Name] = h
	}

	for _, s := range doc.Sections {
		vmaName, lmaName := s.Placement()
		vma, ok := regions[vmaName]
		if !ok {
			return unknownRegion(s, vmaName)
		}
		lma, ok := regions[lmaName]
		if !ok {
			return unknownRegion(s, lmaName)
		}
		if err := l.Place(s.Name, s.Role, vma, lma, s.options()...); err != nil {
			return errors.WithPosition(err, s.Pos)
		}
	}

	Logger().Debug("descriptor applied",
		zap.String("source", doc.Source),
		zap.Int("regions", len(doc.Regions)),
		zap.Int("sections", len(doc.Sections)))

	return nil
}

func unknownRegion(s SectionSpec, region string) error {
	return errors.New(errors.PhaseLoad, errors.KindNotFound).
		Path(GroupSections, s.Name).
		At(s.Pos).
		Value(region).
		Detail("section references unknown region %q", region).
		Build()
}

// NormalizeName converts a CamelCase descriptor identifier to the
// snake_case name used in the layout: "CcramData" becomes "ccram_data",
// "VectorTable" becomes "vector_table". Lower-case names are unchanged.
func NormalizeName(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
