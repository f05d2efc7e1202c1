package layout

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/ldscript/errors"
)

// Usage is the explicitly sized space sections claim in one region.
type Usage struct {
	// Exec counts sections executing from the region.
	Exec uint64
	// Load counts boot-copy sections whose initial bytes are stored in
	// the region.
	Load uint64
}

// Total returns Exec + Load.
func (u Usage) Total() uint64 { return u.Exec + u.Load }

// Image is an immutable snapshot of a layout, ready for serialization.
type Image struct {
	usage     map[string]Usage
	regions   []MemoryRegion
	sections  []Section
	validated bool
}

// Regions returns the regions in registration order.
func (img *Image) Regions() []MemoryRegion {
	return append([]MemoryRegion(nil), img.regions...)
}

// Sections returns the sections in emission order: by role, then name.
func (img *Image) Sections() []Section {
	return append([]Section(nil), img.sections...)
}

// Region looks up a region by name.
func (img *Image) Region(name string) (MemoryRegion, bool) {
	for _, r := range img.regions {
		if r.ID == name {
			return r, true
		}
	}
	return MemoryRegion{}, false
}

// Section looks up a section by name.
func (img *Image) Section(name string) (Section, bool) {
	for _, s := range img.sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// SectionsIn returns the sections that execute from or load into region,
// in emission order.
func (img *Image) SectionsIn(region string) []Section {
	var out []Section
	for _, s := range img.sections {
		if s.VMA == region || s.LMA == region {
			out = append(out, s)
		}
	}
	return out
}

// BootCopy returns the sections startup code must copy.
func (img *Image) BootCopy() []Section {
	var out []Section
	for _, s := range img.sections {
		if s.BootCopy() {
			out = append(out, s)
		}
	}
	return out
}

// ZeroFill returns the sections startup code must clear.
func (img *Image) ZeroFill() []Section {
	var out []Section
	for _, s := range img.sections {
		if s.Role == RoleBss {
			out = append(out, s)
		}
	}
	return out
}

// Usage returns the space claimed in region by explicitly sized sections.
func (img *Image) Usage(region string) Usage {
	return img.usage[region]
}

// Snapshot captures the current layout without validating or freezing
// it. Useful for inspecting an incomplete layout.
func (l *Layout) Snapshot() *Image {
	if l.image != nil {
		return l.image
	}
	img := &Image{
		regions:  make([]MemoryRegion, len(l.regions)),
		sections: sortedSections(l.sections),
		usage:    make(map[string]Usage, len(l.regions)),
	}
	for i, r := range l.regions {
		img.regions[i] = r.MemoryRegion
	}
	for _, s := range img.sections {
		u := img.usage[s.VMA]
		u.Exec += uint64(s.Size)
		img.usage[s.VMA] = u
		if s.BootCopy() {
			u := img.usage[s.LMA]
			u.Load += uint64(s.Size)
			img.usage[s.LMA] = u
		}
	}
	return img
}

// Freeze validates the layout for completeness and moves it to the
// generated state. Any later mutation fails with a frozen error. Calling
// Freeze again returns the same image.
func (l *Layout) Freeze() (*Image, error) {
	if l.image != nil {
		return l.image, nil
	}
	img := l.Snapshot()
	if err := validate(img); err != nil {
		return nil, err
	}
	img.validated = true
	l.image = img

	Logger().Debug("layout frozen",
		zap.Int("regions", len(img.regions)),
		zap.Int("sections", len(img.sections)))

	return img, nil
}

// Validate reports whether img is complete and fits its regions. Images
// returned by Freeze are already validated.
func (img *Image) Validate() error {
	if img.validated {
		return nil
	}
	return validate(img)
}

func validate(img *Image) error {
	if len(img.regions) == 0 {
		return errors.Incomplete(nil, "layout has no memory regions")
	}

	hasVectors := false
	for _, s := range img.sections {
		if s.Role == RoleVectors {
			hasVectors = true
		}
		if s.Role == RoleStack && s.Size == 0 {
			return errors.Incomplete([]string{s.Name}, "stack section needs an explicit size")
		}
	}
	if !hasVectors {
		return errors.Incomplete(nil, "no section provides the reset vector table")
	}
	return checkPlacement(img)
}

// extent is the byte range a sized section claims, relative to the
// region origin.
type extent struct {
	name       string
	start, end uint64
}

// checkPlacement replays the location counter the linker keeps per
// region. Sections are laid out in emission order, a pinned section moves
// the counter to its offset, and a boot-copy section also advances the
// counter of its load region. Unsized sections claim nothing.
func checkPlacement(img *Image) error {
	cursor := make(map[string]uint64, len(img.regions))
	claimed := make(map[string][]extent, len(img.regions))

	claim := func(s Section, region string, start uint64, pinned bool) error {
		r, _ := img.Region(region)
		e := extent{name: s.Name, start: start, end: start + uint64(s.Size)}
		if e.end > e.start {
			for _, o := range claimed[region] {
				if e.start < o.end && o.start < e.end {
					return errors.New(errors.PhaseValidate, errors.KindOverlap).
						Path(s.Name).
						Value(o.name).
						Detail("section %q at [%#x, %#x) overlaps %q at [%#x, %#x) in region %q",
							s.Name, e.start, e.end, o.name, o.start, o.end, region).
						Build()
				}
			}
			claimed[region] = append(claimed[region], e)
		}
		if e.end > uint64(r.Size) {
			path := []string{s.Name}
			if pinned {
				path = append(path, "offset")
			}
			return errors.Overflow(errors.PhaseValidate, path,
				fmt.Sprintf("%#x", e.end), fmt.Sprintf("region %q size %#x", r.ID, uint32(r.Size)))
		}
		cursor[region] = e.end
		return nil
	}

	for _, s := range img.sections {
		start := cursor[s.VMA]
		switch {
		case s.HasOffset:
			start = uint64(s.Offset)
		case s.Align > 1:
			r, _ := img.Region(s.VMA)
			base := uint64(r.Base)
			start = alignUp(base+start, uint64(s.Align)) - base
		}
		if err := claim(s, s.VMA, start, s.HasOffset); err != nil {
			return err
		}
		if s.BootCopy() {
			if err := claim(s, s.LMA, cursor[s.LMA], false); err != nil {
				return err
			}
		}
	}
	return nil
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

func sortedSections(m map[string]Section) []Section {
	out := make([]Section, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].Name < out[j].Name
	})
	return out
}
