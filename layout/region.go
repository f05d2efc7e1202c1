package layout

// MemoryRegion is the plain description of a registered region.
type MemoryRegion struct {
	ID           string
	Base         Address
	Size         Size
	Capabilities Capability
}

// End returns one past the last byte of the region.
func (m MemoryRegion) End() uint64 {
	return uint64(m.Base) + uint64(m.Size)
}

// Overlaps reports whether the half-open intervals of m and o intersect.
// Regions that only touch at a boundary do not overlap.
func (m MemoryRegion) Overlaps(o MemoryRegion) bool {
	return uint64(m.Base) < o.End() && uint64(o.Base) < m.End()
}

// Contains reports whether the address lies inside the region.
func (m MemoryRegion) Contains(addr Address) bool {
	return addr >= m.Base && uint64(addr) < m.End()
}

type regionInfo struct {
	owner *Layout
	MemoryRegion
}

// Region is a handle to a region registered in a Layout. Only the handle
// types of this package implement it.
type Region interface {
	ID() string
	Base() Address
	Size() Size
	End() uint64
	Capabilities() Capability
	Describe() MemoryRegion
	info() *regionInfo
}

// Readable is a region whose contents may be read.
type Readable interface {
	Region
	readable()
}

// Writable is a region whose contents may be written.
type Writable interface {
	Region
	writable()
}

// Executable is a region whose contents may be executed.
type Executable interface {
	Region
	executable()
}

// ReadWrite is a region that may be both read and written.
type ReadWrite interface {
	Readable
	Writable
}

type handle struct {
	r *regionInfo
}

func (h handle) ID() string {
	if h.r == nil {
		return ""
	}
	return h.r.ID
}

func (h handle) Base() Address {
	if h.r == nil {
		return 0
	}
	return h.r.Base
}

func (h handle) Size() Size {
	if h.r == nil {
		return 0
	}
	return h.r.MemoryRegion.Size
}

func (h handle) End() uint64 {
	if h.r == nil {
		return 0
	}
	return h.r.End()
}

func (h handle) Capabilities() Capability {
	if h.r == nil {
		return 0
	}
	return h.r.Capabilities
}

func (h handle) Describe() MemoryRegion {
	if h.r == nil {
		return MemoryRegion{}
	}
	return h.r.MemoryRegion
}

func (h handle) info() *regionInfo { return h.r }

// RWRegion is a handle to a read/write region (RAM without execute).
type RWRegion struct{ handle }

func (RWRegion) readable() {}
func (RWRegion) writable() {}

// RXRegion is a handle to a read/execute region (flash).
type RXRegion struct{ handle }

func (RXRegion) readable()   {}
func (RXRegion) executable() {}

// RWXRegion is a handle to a read/write/execute region.
type RWXRegion struct{ handle }

func (RWXRegion) readable()   {}
func (RWXRegion) writable()   {}
func (RWXRegion) executable() {}

var (
	_ ReadWrite  = RWRegion{}
	_ Readable   = RXRegion{}
	_ Executable = RXRegion{}
	_ ReadWrite  = RWXRegion{}
	_ Executable = RWXRegion{}
)

// handleFor returns the typed handle matching the region's capability kind.
func handleFor(r *regionInfo) Region {
	switch r.Capabilities {
	case RW:
		return RWRegion{handle{r}}
	case RX:
		return RXRegion{handle{r}}
	default:
		return RWXRegion{handle{r}}
	}
}
