package layout

// Section places a named output section into regions. VMA is where the
// CPU uses the bytes, LMA is where they are stored in the image.
type Section struct {
	Name      string
	VMA       string
	LMA       string
	Size      Size
	Offset    uint32
	Align     uint32
	Role      Role
	HasOffset bool
}

// BootCopy reports whether startup code must copy the section from its
// load address to its execution address.
func (s Section) BootCopy() bool {
	return s.VMA != s.LMA
}

// SectionOption customizes a placement.
type SectionOption func(*Section)

// WithSize fixes the section size in bytes.
func WithSize(size Size) SectionOption {
	return func(s *Section) { s.Size = size }
}

// WithOffset pins the section at offset bytes past its VMA region origin.
func WithOffset(offset uint32) SectionOption {
	return func(s *Section) {
		s.Offset = offset
		s.HasOffset = true
	}
}

// WithAlign sets the section alignment. It must be a power of two.
func WithAlign(align uint32) SectionOption {
	return func(s *Section) { s.Align = align }
}

// ValidIdentifier reports whether s can name a region or section in a
// linker script: a letter or underscore followed by letters, digits or
// underscores.
func ValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
