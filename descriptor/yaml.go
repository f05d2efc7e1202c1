package descriptor

import (
	"gopkg.in/yaml.v3"

	"github.com/wippyai/ldscript/errors"
	"github.com/wippyai/ldscript/layout"
)

// ParseYAML parses a YAML descriptor. JSON is a subset of YAML, so JSON
// descriptors are accepted too. The document is walked as a node tree so
// every error carries the line and column of the offending element.
func ParseYAML(name string, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			At(errors.Position{File: name}).
			Detail("malformed document").
			Cause(err).
			Build()
	}

	p := &yamlParser{file: name}
	return p.document(&root)
}

type yamlParser struct {
	file string
}

func (p *yamlParser) pos(n *yaml.Node) errors.Position {
	return errors.Position{File: p.file, Line: n.Line, Column: n.Column}
}

func (p *yamlParser) document(root *yaml.Node) (*Document, error) {
	doc := &Document{Source: p.file}

	top := root
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = top.Content[0]
	}
	if top.Kind == 0 || isNull(top) {
		return nil, withFile(errors.GroupMissing(GroupRegions), p.file)
	}
	if top.Kind != yaml.MappingNode {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			At(p.pos(top)).
			Detail("descriptor must be a mapping of `%s` and `%s`", GroupRegions, GroupSections).
			Build()
	}

	var seenRegions, seenSections bool
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		switch key.Value {
		case GroupRegions:
			if seenRegions {
				return nil, errors.WithPosition(errors.GroupDuplicate(GroupRegions), p.pos(key))
			}
			seenRegions = true
			regions, err := p.regions(val)
			if err != nil {
				return nil, err
			}
			doc.Regions = regions
		case GroupSections:
			if seenSections {
				return nil, errors.WithPosition(errors.GroupDuplicate(GroupSections), p.pos(key))
			}
			seenSections = true
			sections, err := p.sections(val)
			if err != nil {
				return nil, err
			}
			doc.Sections = sections
		default:
			return nil, errors.New(errors.PhaseParse, errors.KindFieldUnknown).
				Path(key.Value).
				At(p.pos(key)).
				Value(key.Value).
				Detail("expected either `%s` or `%s`", GroupRegions, GroupSections).
				Build()
		}
	}

	if !seenRegions {
		return nil, withFile(errors.GroupMissing(GroupRegions), p.file)
	}
	if !seenSections {
		return nil, withFile(errors.GroupMissing(GroupSections), p.file)
	}
	return doc, nil
}

// entries iterates the name → attributes pairs of a group.
func (p *yamlParser) entries(group string, n *yaml.Node, fn func(name string, key, val *yaml.Node) error) error {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Path(group).
			At(p.pos(n)).
			Detail("`%s` must be a mapping", group).
			Build()
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		name := NormalizeName(key.Value)
		if !layout.ValidIdentifier(name) {
			return errors.WithPosition(errors.InvalidIdentifier(errors.PhaseParse, []string{group, key.Value}, key.Value), p.pos(key))
		}
		if val.Kind != yaml.MappingNode {
			return errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(group, name).
				At(p.pos(val)).
				Detail("attributes must be a mapping").
				Build()
		}
		if err := fn(name, key, val); err != nil {
			return err
		}
	}
	return nil
}

// attrs collects the scalar attributes of an element, rejecting unknown
// and repeated names.
func (p *yamlParser) attrs(path []string, n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		attrPath := append(append([]string(nil), path...), key.Value)
		if !contains(allowed, key.Value) {
			return nil, errors.WithPosition(errors.FieldUnknown(errors.PhaseParse, attrPath, key.Value), p.pos(key))
		}
		if _, dup := out[key.Value]; dup {
			return nil, errors.WithPosition(errors.Duplicate(errors.PhaseParse, "attribute", key.Value), p.pos(key))
		}
		if val.Kind != yaml.ScalarNode {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(attrPath...).
				At(p.pos(val)).
				Detail("attribute %q must be a scalar", key.Value).
				Build()
		}
		out[key.Value] = val
	}
	return out, nil
}

func (p *yamlParser) regions(n *yaml.Node) ([]RegionSpec, error) {
	var out []RegionSpec
	err := p.entries(GroupRegions, n, func(name string, key, val *yaml.Node) error {
		path := []string{GroupRegions, name}
		a, err := p.attrs(path, val, "address", "size", "access")
		if err != nil {
			return err
		}
		for _, req := range []string{"address", "size", "access"} {
			if a[req] == nil {
				return errors.WithPosition(errors.FieldMissing(errors.PhaseParse, path, req), p.pos(key))
			}
		}

		spec := RegionSpec{Name: name, Pos: p.pos(key)}
		if spec.Address, err = ParseAddress(a["address"].Value); err != nil {
			return p.attrError(err, path, "address", a["address"])
		}
		if spec.Size, err = ParseSize(a["size"].Value); err != nil {
			return p.attrError(err, path, "size", a["size"])
		}
		if spec.Access, err = layout.ParseCapability(a["access"].Value); err != nil {
			return p.attrError(err, path, "access", a["access"])
		}
		out = append(out, spec)
		return nil
	})
	return out, err
}

func (p *yamlParser) sections(n *yaml.Node) ([]SectionSpec, error) {
	var out []SectionSpec
	err := p.entries(GroupSections, n, func(name string, key, val *yaml.Node) error {
		path := []string{GroupSections, name}
		a, err := p.attrs(path, val, "region", "offset", "size", "vma", "lma", "align", "kind")
		if err != nil {
			return err
		}
		attr := func(k string) (string, bool) {
			if a[k] == nil {
				return "", false
			}
			return a[k].Value, true
		}

		region, hasRegion := attr("region")
		vma, hasVMA := attr("vma")
		lma, hasLMA := attr("lma")
		_, hasOffset := attr("offset")

		raw := sectionForm{
			name: name, region: region, vma: vma, lma: lma,
			hasRegion: hasRegion, hasVMA: hasVMA, hasLMA: hasLMA, hasOffset: hasOffset,
		}
		spec, err := raw.resolve(path)
		if err != nil {
			return errors.WithPosition(err, p.pos(key))
		}
		spec.Pos = p.pos(key)

		if v, ok := attr("size"); ok {
			if spec.Size, err = ParseSize(v); err != nil {
				return p.attrError(err, path, "size", a["size"])
			}
		}
		if v, ok := attr("offset"); ok {
			size, err := ParseSize(v)
			if err != nil {
				return p.attrError(err, path, "offset", a["offset"])
			}
			spec.Offset = uint32(size)
			spec.HasOffset = true
		}
		if v, ok := attr("align"); ok {
			if spec.Align, err = parseUint32(v); err != nil {
				return p.attrError(err, path, "align", a["align"])
			}
		}
		if v, ok := attr("kind"); ok {
			role, ok := layout.ParseRole(v)
			if !ok {
				return errors.New(errors.PhaseParse, errors.KindInvalidInput).
					Path(append(path, "kind")...).
					At(p.pos(a["kind"])).
					Value(v).
					Detail("unknown section kind %q", v).
					Build()
			}
			spec.Role = role
		}
		out = append(out, spec)
		return nil
	})
	return out, err
}

// attrError re-homes a value parsing error onto the attribute's path and
// position.
func (p *yamlParser) attrError(err error, path []string, attr string, n *yaml.Node) error {
	e, ok := err.(*errors.Error)
	if !ok {
		return err
	}
	cp := *e
	cp.Path = append(append([]string(nil), path...), attr)
	cp.Pos = p.pos(n)
	return &cp
}

// sectionForm holds the placement attributes before the (region) versus
// (vma, lma) forms are told apart. Shared by the YAML and Starlark
// front-ends.
type sectionForm struct {
	name      string
	region    string
	vma       string
	lma       string
	hasRegion bool
	hasVMA    bool
	hasLMA    bool
	hasOffset bool
}

func (f sectionForm) resolve(path []string) (SectionSpec, error) {
	spec := SectionSpec{Name: f.name, Role: layout.InferRole(f.name)}

	switch {
	case f.hasRegion && (f.hasVMA || f.hasLMA):
		return spec, errors.InvalidInput(errors.PhaseParse, path, "section should have either (vma, lma) or region")
	case f.hasRegion:
		ref, err := reference(path, "region", f.region)
		if err != nil {
			return spec, err
		}
		spec.Region = ref
	case f.hasVMA && f.hasLMA:
		if f.hasOffset {
			return spec, errors.InvalidInput(errors.PhaseParse, path, "offset is only valid with the region form")
		}
		vma, err := reference(path, "vma", f.vma)
		if err != nil {
			return spec, err
		}
		lma, err := reference(path, "lma", f.lma)
		if err != nil {
			return spec, err
		}
		spec.VMA, spec.LMA = vma, lma
	case f.hasVMA:
		return spec, errors.FieldMissing(errors.PhaseParse, path, "lma")
	case f.hasLMA:
		return spec, errors.FieldMissing(errors.PhaseParse, path, "vma")
	default:
		return spec, errors.InvalidInput(errors.PhaseParse, path, "section should have either (vma, lma) or region")
	}
	return spec, nil
}

func reference(path []string, attr, value string) (string, error) {
	name := NormalizeName(value)
	if !layout.ValidIdentifier(name) {
		return "", errors.InvalidIdentifier(errors.PhaseParse, append(append([]string(nil), path...), attr), value)
	}
	return name, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func withFile(e *errors.Error, file string) error {
	return errors.WithPosition(e, errors.Position{File: file})
}
