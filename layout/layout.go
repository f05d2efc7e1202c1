package layout

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/ldscript/errors"
)

// Options configures layout behavior.
type Options struct {
	// StrictSections rejects re-registration of a section name instead of
	// replacing the earlier definition.
	StrictSections bool
}

// DefaultOptions returns default layout configuration.
func DefaultOptions() Options {
	return Options{}
}

// State is the lifecycle stage of a Layout.
type State int

const (
	StateEmpty State = iota
	StatePopulated
	StateGenerated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	case StateGenerated:
		return "generated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Layout aggregates the memory regions and sections of one firmware
// image. Not safe for concurrent use.
type Layout struct {
	byName   map[string]*regionInfo
	sections map[string]Section
	image    *Image
	regions  []*regionInfo
	options  Options
}

// New creates an empty Layout with the given options.
func New(opts Options) *Layout {
	return &Layout{
		byName:   make(map[string]*regionInfo),
		sections: make(map[string]Section),
		options:  opts,
	}
}

// NewWithDefaults creates an empty Layout with default options.
func NewWithDefaults() *Layout {
	return New(DefaultOptions())
}

// Options returns the configuration.
func (l *Layout) Options() Options {
	return l.options
}

// State reports the lifecycle stage.
func (l *Layout) State() State {
	switch {
	case l.image != nil:
		return StateGenerated
	case len(l.regions) > 0 || len(l.sections) > 0:
		return StatePopulated
	}
	return StateEmpty
}

// AddRWRegion registers a read/write region.
func (l *Layout) AddRWRegion(name string, base Address, size Size) (RWRegion, error) {
	r, err := l.addRegion(name, base, size, RW)
	if err != nil {
		return RWRegion{}, err
	}
	return RWRegion{handle{r}}, nil
}

// AddRXRegion registers a read/execute region.
func (l *Layout) AddRXRegion(name string, base Address, size Size) (RXRegion, error) {
	r, err := l.addRegion(name, base, size, RX)
	if err != nil {
		return RXRegion{}, err
	}
	return RXRegion{handle{r}}, nil
}

// AddRWXRegion registers a read/write/execute region.
func (l *Layout) AddRWXRegion(name string, base Address, size Size) (RWXRegion, error) {
	r, err := l.addRegion(name, base, size, RWX)
	if err != nil {
		return RWXRegion{}, err
	}
	return RWXRegion{handle{r}}, nil
}

// AddRegion registers a region whose kind is only known at run time. The
// returned value is the typed handle for kind, so callers may assert it
// to RWRegion, RXRegion or RWXRegion.
func (l *Layout) AddRegion(name string, base Address, size Size, kind Capability) (Region, error) {
	r, err := l.addRegion(name, base, size, kind)
	if err != nil {
		return nil, err
	}
	return handleFor(r), nil
}

func (l *Layout) addRegion(name string, base Address, size Size, kind Capability) (*regionInfo, error) {
	if l.image != nil {
		return nil, errors.Frozen(errors.PhaseRegister, "add region "+name)
	}
	if !ValidIdentifier(name) {
		return nil, errors.InvalidIdentifier(errors.PhaseRegister, []string{name}, name)
	}
	if !kind.Canonical() {
		return nil, errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Path(name).
			Value(kind).
			Detail("capability %s is not one of RW, RX, RWX", kind).
			Build()
	}
	if size == 0 {
		return nil, errors.InvalidInput(errors.PhaseRegister, []string{name}, "region size must be positive")
	}

	candidate := MemoryRegion{ID: name, Base: base, Size: size, Capabilities: kind}
	if candidate.End() > addressSpaceEnd {
		return nil, errors.Overflow(errors.PhaseRegister, []string{name}, fmt.Sprintf("%#x", candidate.End()), "the 32-bit address space")
	}
	if _, exists := l.byName[name]; exists {
		return nil, errors.Duplicate(errors.PhaseRegister, "region", name)
	}
	if conflict := l.overlapping(candidate); conflict != nil {
		return nil, errors.OverlappingRegion(name, conflict.ID)
	}

	r := &regionInfo{owner: l, MemoryRegion: candidate}
	l.regions = append(l.regions, r)
	l.byName[name] = r

	Logger().Debug("region added",
		zap.String("region", name),
		zap.Stringer("base", base),
		zap.Uint32("size", uint32(size)),
		zap.Stringer("access", kind))

	return r, nil
}

// overlapping returns the first registered region, in insertion order,
// whose interval intersects candidate. Region counts are single digits,
// so a linear scan is enough.
func (l *Layout) overlapping(candidate MemoryRegion) *regionInfo {
	for _, r := range l.regions {
		if r.Overlaps(candidate) {
			return r
		}
	}
	return nil
}

// Region looks up a registered region by name.
func (l *Layout) Region(name string) (Region, bool) {
	r, ok := l.byName[name]
	if !ok {
		return nil, false
	}
	return handleFor(r), true
}

// Regions returns all regions in registration order.
func (l *Layout) Regions() []Region {
	out := make([]Region, len(l.regions))
	for i, r := range l.regions {
		out[i] = handleFor(r)
	}
	return out
}

// VectorTable places the reset/interrupt vector table.
func (l *Layout) VectorTable(vma Readable, lma Readable, opts ...SectionOption) error {
	return l.place("vector_table", RoleVectors, vma, lma, opts)
}

// Text places executable code and read-only data.
func (l *Layout) Text(vma Executable, lma Readable, opts ...SectionOption) error {
	return l.place("text", RoleText, vma, lma, opts)
}

// Data places initialized data. A vma different from lma makes the
// section boot-copy.
func (l *Layout) Data(vma ReadWrite, lma Readable, opts ...SectionOption) error {
	return l.place("data", RoleData, vma, lma, opts)
}

// Bss places zero-initialized data. It is never copied at boot.
func (l *Layout) Bss(region ReadWrite, opts ...SectionOption) error {
	return l.place("bss", RoleBss, region, region, opts)
}

// Stack reserves the initial stack. A size is required at freeze time.
func (l *Layout) Stack(region ReadWrite, opts ...SectionOption) error {
	return l.place("stack", RoleStack, region, region, opts)
}

// RAMFunc places functions that execute from RAM after being copied
// from the load region.
func (l *Layout) RAMFunc(vma Executable, lma Readable, opts ...SectionOption) error {
	return l.place("ramfunc", RoleRAMFunc, vma, lma, opts)
}

// CustomSection places an arbitrary named section.
func (l *Layout) CustomSection(name string, vma Readable, lma Readable, opts ...SectionOption) error {
	return l.place(name, RoleCustom, vma, lma, opts)
}

// Place records a section with an explicit role. Unlike the typed
// operations, capability requirements are checked at run time; a region
// lacking one is rejected before the section is recorded.
func (l *Layout) Place(name string, role Role, vma, lma Region, opts ...SectionOption) error {
	return l.place(name, role, vma, lma, opts)
}

func (l *Layout) place(name string, role Role, vma, lma Region, opts []SectionOption) error {
	if l.image != nil {
		return errors.Frozen(errors.PhasePlace, "place section "+name)
	}
	if !ValidIdentifier(name) {
		return errors.InvalidIdentifier(errors.PhasePlace, []string{name}, name)
	}
	if !role.Valid() {
		return errors.InvalidInput(errors.PhasePlace, []string{name}, fmt.Sprintf("unknown role %d", role))
	}

	v, err := l.member(name, "vma", vma)
	if err != nil {
		return err
	}
	lm, err := l.member(name, "lma", lma)
	if err != nil {
		return err
	}

	if role.NoLoad() && v != lm {
		return errors.InvalidInput(errors.PhasePlace, []string{name},
			fmt.Sprintf("%s section must be load-in-place, got vma %q and lma %q", role, v.ID, lm.ID))
	}
	if want := role.VMARequires(); !v.Capabilities.Has(want) {
		return errors.CapabilityViolation(name, "vma", v.ID, v.Capabilities.String(), want.String())
	}
	if want := role.LMARequires(); !lm.Capabilities.Has(want) {
		return errors.CapabilityViolation(name, "lma", lm.ID, lm.Capabilities.String(), want.String())
	}

	s := Section{Name: name, Role: role, VMA: v.ID, LMA: lm.ID}
	for _, opt := range opts {
		opt(&s)
	}
	if s.Align != 0 && s.Align&(s.Align-1) != 0 {
		return errors.New(errors.PhasePlace, errors.KindInvalidInput).
			Path(name, "align").
			Value(s.Align).
			Detail("alignment %d is not a power of two", s.Align).
			Build()
	}

	if _, exists := l.sections[name]; exists {
		if l.options.StrictSections {
			return errors.Duplicate(errors.PhasePlace, "section", name)
		}
		Logger().Warn("section redefined, replacing earlier definition",
			zap.String("section", name))
	}
	l.sections[name] = s

	Logger().Debug("section placed",
		zap.String("section", name),
		zap.Stringer("role", role),
		zap.String("vma", s.VMA),
		zap.String("lma", s.LMA),
		zap.Bool("boot_copy", s.BootCopy()))

	return nil
}

// member resolves a handle to a region owned by this layout.
func (l *Layout) member(section, which string, r Region) (*regionInfo, error) {
	if r == nil || r.info() == nil {
		return nil, errors.New(errors.PhasePlace, errors.KindNotFound).
			Path(section, which).
			Detail("%s region handle is empty", which).
			Build()
	}
	info := r.info()
	if info.owner != l {
		return nil, errors.New(errors.PhasePlace, errors.KindNotFound).
			Path(section, which).
			Value(info.ID).
			Detail("region %q is not registered in this layout", info.ID).
			Build()
	}
	return info, nil
}

// Section looks up a section by name.
func (l *Layout) Section(name string) (Section, bool) {
	s, ok := l.sections[name]
	return s, ok
}

// Sections returns all sections ordered by role, then name.
func (l *Layout) Sections() []Section {
	return sortedSections(l.sections)
}
