package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // region registration
	PhasePlace    Phase = "place"    // section placement
	PhaseValidate Phase = "validate" // freeze-time layout validation
	PhaseParse    Phase = "parse"    // descriptor parsing
	PhaseLoad     Phase = "load"     // descriptor file loading
	PhaseGenerate Phase = "generate" // linker script emission
)

// Kind categorizes the error
type Kind string

const (
	KindOverlap           Kind = "overlap"
	KindCapability        Kind = "capability"
	KindDuplicate         Kind = "duplicate"
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindOverflow          Kind = "overflow"
	KindFieldUnknown      Kind = "field_unknown"
	KindFieldMissing      Kind = "field_missing"
	KindGroupMissing      Kind = "group_missing"
	KindGroupDuplicate    Kind = "group_duplicate"
	KindInvalidIdentifier Kind = "invalid_identifier"
	KindIncomplete        Kind = "incomplete"
	KindFrozen            Kind = "frozen"
	KindIO                Kind = "io"
)

// Position locates an element inside a descriptor source.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	var b strings.Builder
	if p.File != "" {
		b.WriteString(p.File)
	}
	if p.Line > 0 {
		if b.Len() > 0 {
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%d", p.Line)
		if p.Column > 0 {
			fmt.Fprintf(&b, ":%d", p.Column)
		}
	}
	return b.String()
}

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Pos    Position
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Pos.IsValid() || e.Pos.File != "" {
		b.WriteString(e.Pos.String())
		b.WriteString(": ")
	}

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the element path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// At sets the source position
func (b *Builder) At(pos Position) *Builder {
	b.err.Pos = pos
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OverlappingRegion reports that a new region intersects the named one.
// The conflicting region id is carried in Value.
func OverlappingRegion(name, conflicting string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindOverlap,
		Path:   []string{name},
		Value:  conflicting,
		Detail: fmt.Sprintf("region overlaps %q", conflicting),
	}
}

// CapabilityViolation reports a region lacking a capability a placement needs
func CapabilityViolation(section, role, region, have, want string) *Error {
	return &Error{
		Phase:  PhasePlace,
		Kind:   KindCapability,
		Path:   []string{section, role},
		Value:  region,
		Detail: fmt.Sprintf("region %q is %s, placement requires %s", region, have, want),
	}
}

// Duplicate creates a duplicate definition error
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Path:   []string{name},
		Value:  name,
		Detail: fmt.Sprintf("%s %q already defined", what, name),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Value:  name,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Path:   path,
		Detail: detail,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, limit string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Value:  value,
		Detail: fmt.Sprintf("value %v exceeds %s", value, limit),
	}
}

// InvalidIdentifier creates an invalid identifier error
func InvalidIdentifier(phase Phase, path []string, ident string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidIdentifier,
		Path:   path,
		Value:  ident,
		Detail: fmt.Sprintf("%q is not a valid identifier", ident),
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required attribute %q not found", fieldName),
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldUnknown,
		Path:   path,
		Value:  fieldName,
		Detail: fmt.Sprintf("unknown attribute %q", fieldName),
	}
}

// GroupMissing reports a required top-level group absent from a descriptor
func GroupMissing(group string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindGroupMissing,
		Path:   []string{group},
		Detail: fmt.Sprintf("`%s` is a required group", group),
	}
}

// GroupDuplicate reports a top-level group given more than once
func GroupDuplicate(group string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindGroupDuplicate,
		Path:   []string{group},
		Detail: fmt.Sprintf("more than one `%s` group found", group),
	}
}

// Incomplete reports a layout missing a structurally required element
func Incomplete(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindIncomplete,
		Path:   path,
		Detail: detail,
	}
}

// Frozen reports a mutation attempted after the layout was frozen
func Frozen(phase Phase, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFrozen,
		Detail: fmt.Sprintf("%s: layout is frozen", op),
	}
}

// IO wraps a file system failure during generation or loading
func IO(phase Phase, path string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Value:  path,
		Detail: path,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithPosition returns err with pos attached when err is an *Error without
// a position of its own. Other errors are returned unchanged.
func WithPosition(err error, pos Position) error {
	e, ok := err.(*Error)
	if !ok || e.Pos.IsValid() {
		return err
	}
	cp := *e
	cp.Pos = pos
	return &cp
}
