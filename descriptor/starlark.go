package descriptor

import (
	stderrors "errors"
	"fmt"
	"math"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/wippyai/ldscript/errors"
	"github.com/wippyai/ldscript/layout"
)

// regionValue is the Starlark value returned by region(). It may be
// passed to section() in place of the region name.
type regionValue struct {
	name string
}

func (r *regionValue) String() string        { return fmt.Sprintf("region(%q)", r.name) }
func (*regionValue) Type() string            { return "region" }
func (*regionValue) Freeze()                 {}
func (*regionValue) Truth() starlark.Bool    { return starlark.True }
func (r *regionValue) Hash() (uint32, error) { return starlark.String(r.name).Hash() }

var (
	_ starlark.Value = &regionValue{}
)

type starlarkBuilder struct {
	doc *Document
}

// ParseStarlark evaluates a Starlark layout script. The script describes
// the layout by calling the predeclared builtins:
//
//	flash = region("flash", address = 0x08000000, size = kb(256), access = "RX")
//	ram = region("ram", address = 0x20000000, size = "128K", access = "RWX")
//	section("vector_table", region = flash, offset = 0, size = kb(1))
//	section("data", vma = ram, lma = flash)
//
// Regions and sections are recorded in call order.
func ParseStarlark(name string, src []byte) (*Document, error) {
	b := &starlarkBuilder{doc: &Document{Source: name}}

	thread := &starlark.Thread{Name: name}

	globals := starlark.StringDict{
		"region":  starlark.NewBuiltin("region", b.region),
		"section": starlark.NewBuiltin("section", b.section),
		"kb":      starlark.NewBuiltin("kb", scaleBuiltin(1024)),
		"mb":      starlark.NewBuiltin("mb", scaleBuiltin(1024*1024)),
	}

	_, err := starlark.ExecFileOptions(&syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
	}, thread, name, src, globals)
	if err != nil {
		var le *errors.Error
		if stderrors.As(err, &le) {
			return nil, le
		}
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			At(errors.Position{File: name}).
			Detail("evaluate script").
			Cause(err).
			Build()
	}

	return b.doc, nil
}

func callerPos(thread *starlark.Thread) errors.Position {
	frame := thread.CallFrame(1)
	return errors.Position{
		File:   frame.Pos.Filename(),
		Line:   int(frame.Pos.Line),
		Column: int(frame.Pos.Col),
	}
}

func (b *starlarkBuilder) region(
	thread *starlark.Thread,
	fn *starlark.Builtin,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
) (starlark.Value, error) {
	var (
		name    string
		address starlark.Value
		size    starlark.Value
		access  string
	)

	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"name", &name,
		"address", &address,
		"size", &size,
		"access", &access,
	); err != nil {
		return starlark.None, err
	}

	pos := callerPos(thread)
	name = NormalizeName(name)
	path := []string{GroupRegions, name}
	if !layout.ValidIdentifier(name) {
		return starlark.None, errors.WithPosition(errors.InvalidIdentifier(errors.PhaseParse, path, name), pos)
	}

	addr, err := starlarkUint32(address)
	if err != nil {
		return starlark.None, rehome(err, append(path, "address"), pos)
	}
	sz, err := starlarkSize(size)
	if err != nil {
		return starlark.None, rehome(err, append(path, "size"), pos)
	}
	capability, err := layout.ParseCapability(access)
	if err != nil {
		return starlark.None, rehome(err, append(path, "access"), pos)
	}

	b.doc.Regions = append(b.doc.Regions, RegionSpec{
		Name:    name,
		Pos:     pos,
		Address: layout.Address(addr),
		Size:    sz,
		Access:  capability,
	})

	return &regionValue{name: name}, nil
}

func (b *starlarkBuilder) section(
	thread *starlark.Thread,
	fn *starlark.Builtin,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
) (starlark.Value, error) {
	var (
		name   string
		region starlark.Value
		vma    starlark.Value
		lma    starlark.Value
		size   starlark.Value
		offset starlark.Value
		align  starlark.Value
		kind   string
	)

	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"name", &name,
		"region?", &region,
		"vma?", &vma,
		"lma?", &lma,
		"size?", &size,
		"offset?", &offset,
		"align?", &align,
		"kind?", &kind,
	); err != nil {
		return starlark.None, err
	}

	pos := callerPos(thread)
	name = NormalizeName(name)
	path := []string{GroupSections, name}
	if !layout.ValidIdentifier(name) {
		return starlark.None, errors.WithPosition(errors.InvalidIdentifier(errors.PhaseParse, path, name), pos)
	}

	form := sectionForm{name: name, hasOffset: present(offset)}
	var err error
	if form.region, form.hasRegion, err = regionRef(region); err != nil {
		return starlark.None, rehome(err, append(path, "region"), pos)
	}
	if form.vma, form.hasVMA, err = regionRef(vma); err != nil {
		return starlark.None, rehome(err, append(path, "vma"), pos)
	}
	if form.lma, form.hasLMA, err = regionRef(lma); err != nil {
		return starlark.None, rehome(err, append(path, "lma"), pos)
	}

	spec, err := form.resolve(path)
	if err != nil {
		return starlark.None, errors.WithPosition(err, pos)
	}
	spec.Pos = pos

	if present(size) {
		if spec.Size, err = starlarkSize(size); err != nil {
			return starlark.None, rehome(err, append(path, "size"), pos)
		}
	}
	if present(offset) {
		off, err := starlarkSize(offset)
		if err != nil {
			return starlark.None, rehome(err, append(path, "offset"), pos)
		}
		spec.Offset = uint32(off)
		spec.HasOffset = true
	}
	if present(align) {
		if spec.Align, err = starlarkUint32(align); err != nil {
			return starlark.None, rehome(err, append(path, "align"), pos)
		}
	}
	if kind != "" {
		role, ok := layout.ParseRole(kind)
		if !ok {
			return starlark.None, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(append(path, "kind")...).
				At(pos).
				Value(kind).
				Detail("unknown section kind %q", kind).
				Build()
		}
		spec.Role = role
	}

	b.doc.Sections = append(b.doc.Sections, spec)
	return starlark.None, nil
}

func scaleBuiltin(scale uint64) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(
		thread *starlark.Thread,
		fn *starlark.Builtin,
		args starlark.Tuple,
		kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var n starlark.Value
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &n); err != nil {
			return starlark.None, err
		}
		var v uint64
		if err := starlark.AsInt(n, &v); err != nil {
			return starlark.None, fmt.Errorf("%s: %w", fn.Name(), err)
		}
		if v > math.MaxUint32/scale {
			return starlark.None, errors.Overflow(errors.PhaseParse, nil, v, "32 bits")
		}
		return starlark.MakeUint64(v * scale), nil
	}
}

func present(v starlark.Value) bool {
	return v != nil && v != starlark.None
}

func regionRef(v starlark.Value) (string, bool, error) {
	switch r := v.(type) {
	case nil, starlark.NoneType:
		return "", false, nil
	case *regionValue:
		return r.name, true, nil
	case starlark.String:
		return string(r), true, nil
	}
	return "", false, errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Value(v.Type()).
		Detail("expected region or string, got %s", v.Type()).
		Build()
}

func starlarkUint32(v starlark.Value) (uint32, error) {
	if s, ok := starlark.AsString(v); ok {
		return parseUint32(s)
	}
	var n uint64
	if err := starlark.AsInt(v, &n); err != nil {
		return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Value(v.String()).
			Detail("expected unsigned integer, got %s", v.Type()).
			Cause(err).
			Build()
	}
	if n > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseParse, nil, n, "32 bits")
	}
	return uint32(n), nil
}

func starlarkSize(v starlark.Value) (layout.Size, error) {
	if s, ok := starlark.AsString(v); ok {
		return ParseSize(s)
	}
	n, err := starlarkUint32(v)
	return layout.Size(n), err
}

func rehome(err error, path []string, pos errors.Position) error {
	e, ok := err.(*errors.Error)
	if !ok {
		return err
	}
	cp := *e
	cp.Path = path
	cp.Pos = pos
	return &cp
}
