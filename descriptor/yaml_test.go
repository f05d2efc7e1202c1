package descriptor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lderrors "github.com/wippyai/ldscript/errors"
	"github.com/wippyai/ldscript/layout"
)

const regularYAML = `MemoryRegions:
  Flash:
    address: 0x00000000
    size: 256K
    access: RX
  Ram:
    address: 0x20000000
    size: 128 kilobytes
    access: RWX
  CcRam:
    address: 0x21000000
    size: 16KiB
    access: RWX
Sections:
  VectorTable:
    region: Flash
    offset: 0x00
    size: 1K
  Text:
    region: Flash
  Ramfunc:
    vma: Ram
    lma: Flash
    size: 32K
  Data:
    vma: Ram
    lma: Flash
  CcramData:
    vma: CcRam
    lma: Flash
  Bss:
    region: Ram
  CcramBss:
    region: CcRam
`

func structured(t *testing.T, err error) *lderrors.Error {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var e *lderrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	return e
}

func TestParseYAML_Regular(t *testing.T) {
	doc, err := ParseYAML("layout.yaml", []byte(regularYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	if len(doc.Regions) != 3 {
		t.Fatalf("regions = %d, want 3", len(doc.Regions))
	}
	want := []RegionSpec{
		{Name: "flash", Address: 0, Size: 256 * 1024, Access: layout.RX},
		{Name: "ram", Address: 0x20000000, Size: 128 * 1024, Access: layout.RWX},
		{Name: "cc_ram", Address: 0x21000000, Size: 16 * 1024, Access: layout.RWX},
	}
	for i, w := range want {
		got := doc.Regions[i]
		if got.Name != w.Name || got.Address != w.Address || got.Size != w.Size || got.Access != w.Access {
			t.Errorf("region %d = %+v, want %+v", i, got, w)
		}
	}
	if doc.Regions[1].Pos.Line != 6 {
		t.Errorf("ram line = %d, want 6", doc.Regions[1].Pos.Line)
	}

	names := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		names[i] = s.Name
	}
	wantNames := "vector_table,text,ramfunc,data,ccram_data,bss,ccram_bss"
	if got := strings.Join(names, ","); got != wantNames {
		t.Errorf("sections = %s, want %s", got, wantNames)
	}

	vt := doc.Sections[0]
	if vt.Role != layout.RoleVectors || !vt.HasOffset || vt.Size != 1024 || vt.Region != "flash" {
		t.Errorf("vector_table = %+v", vt)
	}
	ccd := doc.Sections[4]
	if ccd.Role != layout.RoleData || ccd.VMA != "cc_ram" || ccd.LMA != "flash" {
		t.Errorf("ccram_data = %+v", ccd)
	}
	if doc.Sections[6].Role != layout.RoleBss {
		t.Errorf("ccram_bss role = %v, want bss", doc.Sections[6].Role)
	}
}

func TestApply_Regular(t *testing.T) {
	doc, err := ParseYAML("layout.yaml", []byte(regularYAML))
	if err != nil {
		t.Fatal(err)
	}
	l := layout.NewWithDefaults()
	if err := Apply(doc, l); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	data, ok := l.Section("data")
	if !ok || !data.BootCopy() {
		t.Errorf("data = %+v, want boot-copy", data)
	}
	bss, _ := l.Section("bss")
	if bss.BootCopy() {
		t.Error("bss should be load-in-place")
	}
	if _, err := l.Freeze(); err != nil {
		t.Errorf("Freeze: %v", err)
	}
}

func TestParseYAML_JSON(t *testing.T) {
	src := `{
  "MemoryRegions": {
    "flash": {"address": 0, "size": "32K", "access": "RX"},
    "ram": {"address": 536870912, "size": 262144, "access": "RWX"}
  },
  "Sections": {
    "vector_table": {"region": "flash"},
    "text": {"vma": "ram", "lma": "flash"}
  }
}`
	doc, err := Parse("layout.json", []byte(src), FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Regions[1].Address != 0x20000000 || doc.Regions[1].Size != 256*1024 {
		t.Errorf("ram = %+v", doc.Regions[1])
	}
	if vma, lma := doc.Sections[1].Placement(); vma != "ram" || lma != "flash" {
		t.Errorf("text placement = %s/%s", vma, lma)
	}
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind lderrors.Kind
		line int
		path string
	}{
		{
			name: "empty document",
			src:  "",
			kind: lderrors.KindGroupMissing,
		},
		{
			name: "missing sections",
			src:  "MemoryRegions:\n  flash: {address: 0, size: 1K, access: RX}\n",
			kind: lderrors.KindGroupMissing,
			path: "Sections",
		},
		{
			name: "missing regions",
			src:  "Sections: {}\n",
			kind: lderrors.KindGroupMissing,
			path: "MemoryRegions",
		},
		{
			name: "duplicate regions group",
			src:  "MemoryRegions: {}\nSections: {}\nMemoryRegions: {}\n",
			kind: lderrors.KindGroupDuplicate,
			line: 3,
		},
		{
			name: "unknown group",
			src:  "MemoryRegions: {}\nSections: {}\nSymbols: {}\n",
			kind: lderrors.KindFieldUnknown,
			line: 3,
		},
		{
			name: "unknown region attribute",
			src:  "MemoryRegions:\n  flash:\n    adress: 0\n    size: 1K\n    access: RX\nSections: {}\n",
			kind: lderrors.KindFieldUnknown,
			line: 3,
			path: "MemoryRegions.flash.adress",
		},
		{
			name: "missing region attribute",
			src:  "MemoryRegions:\n  flash:\n    address: 0\n    access: RX\nSections: {}\n",
			kind: lderrors.KindFieldMissing,
			line: 2,
		},
		{
			name: "bad access",
			src:  "MemoryRegions:\n  flash: {address: 0, size: 1K, access: RO}\nSections: {}\n",
			kind: lderrors.KindInvalidInput,
			line: 2,
			path: "MemoryRegions.flash.access",
		},
		{
			name: "bad size unit",
			src:  "MemoryRegions:\n  flash:\n    address: 0\n    size: 1G\n    access: RX\nSections: {}\n",
			kind: lderrors.KindInvalidInput,
			line: 4,
			path: "MemoryRegions.flash.size",
		},
		{
			name: "address overflow",
			src:  "MemoryRegions:\n  flash: {address: 0x100000000, size: 1K, access: RX}\nSections: {}\n",
			kind: lderrors.KindOverflow,
		},
		{
			name: "invalid region name",
			src:  "MemoryRegions:\n  flash-1: {address: 0, size: 1K, access: RX}\nSections: {}\n",
			kind: lderrors.KindInvalidIdentifier,
			line: 2,
		},
		{
			name: "region and vma",
			src:  "MemoryRegions: {}\nSections:\n  text: {region: flash, vma: ram, lma: flash}\n",
			kind: lderrors.KindInvalidInput,
			line: 3,
		},
		{
			name: "vma without lma",
			src:  "MemoryRegions: {}\nSections:\n  text: {vma: ram}\n",
			kind: lderrors.KindFieldMissing,
			line: 3,
		},
		{
			name: "no placement",
			src:  "MemoryRegions: {}\nSections:\n  text: {size: 1K}\n",
			kind: lderrors.KindInvalidInput,
		},
		{
			name: "offset with vma form",
			src:  "MemoryRegions: {}\nSections:\n  text: {vma: ram, lma: flash, offset: 0}\n",
			kind: lderrors.KindInvalidInput,
		},
		{
			name: "unknown section attribute",
			src:  "MemoryRegions: {}\nSections:\n  text:\n    region: flash\n    keep: true\n",
			kind: lderrors.KindFieldUnknown,
			line: 5,
		},
		{
			name: "unknown kind",
			src:  "MemoryRegions: {}\nSections:\n  persist: {region: ram, kind: heap}\n",
			kind: lderrors.KindInvalidInput,
		},
		{
			name: "repeated attribute",
			src:  "MemoryRegions:\n  flash:\n    address: 0\n    address: 4\n    size: 1K\n    access: RX\nSections: {}\n",
			kind: lderrors.KindDuplicate,
			line: 4,
		},
		{
			name: "non mapping attributes",
			src:  "MemoryRegions:\n  flash: 42\nSections: {}\n",
			kind: lderrors.KindInvalidInput,
		},
		{
			name: "malformed yaml",
			src:  "MemoryRegions: [\n",
			kind: lderrors.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML("bad.yaml", []byte(tt.src))
			e := structured(t, err)
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v (%v)", e.Kind, tt.kind, err)
			}
			if tt.line != 0 && e.Pos.Line != tt.line {
				t.Errorf("Line = %d, want %d (%v)", e.Pos.Line, tt.line, err)
			}
			if tt.path != "" && strings.Join(e.Path, ".") != tt.path {
				t.Errorf("Path = %v, want %s", e.Path, tt.path)
			}
			if e.Pos.File != "bad.yaml" {
				t.Errorf("File = %q, want bad.yaml", e.Pos.File)
			}
		})
	}
}

func TestApply_Errors(t *testing.T) {
	t.Run("unknown region reference", func(t *testing.T) {
		src := "MemoryRegions:\n  flash: {address: 0, size: 1K, access: RX}\nSections:\n  text: {region: rom}\n"
		doc, err := ParseYAML("a.yaml", []byte(src))
		if err != nil {
			t.Fatal(err)
		}
		e := structured(t, Apply(doc, layout.NewWithDefaults()))
		if e.Kind != lderrors.KindNotFound || e.Pos.Line != 4 {
			t.Errorf("got %v at line %d", e.Kind, e.Pos.Line)
		}
	})

	t.Run("overlap carries region position", func(t *testing.T) {
		src := "MemoryRegions:\n  ram: {address: 0x20000000, size: 256K, access: RWX}\n  ram2: {address: 0x20000000, size: 4K, access: RWX}\nSections: {}\n"
		doc, err := ParseYAML("a.yaml", []byte(src))
		if err != nil {
			t.Fatal(err)
		}
		e := structured(t, Apply(doc, layout.NewWithDefaults()))
		if e.Kind != lderrors.KindOverlap || e.Value != "ram" {
			t.Errorf("got %v conflicting %v", e.Kind, e.Value)
		}
		if e.Pos.Line != 3 {
			t.Errorf("Line = %d, want 3", e.Pos.Line)
		}
	})

	t.Run("capability violation", func(t *testing.T) {
		src := "MemoryRegions:\n  flash: {address: 0, size: 1K, access: RX}\n  dram: {address: 0x1000, size: 1K, access: RW}\nSections:\n  text: {region: dram}\n"
		doc, err := ParseYAML("a.yaml", []byte(src))
		if err != nil {
			t.Fatal(err)
		}
		l := layout.NewWithDefaults()
		e := structured(t, Apply(doc, l))
		if e.Kind != lderrors.KindCapability || e.Pos.Line != 5 {
			t.Errorf("got %v at line %d", e.Kind, e.Pos.Line)
		}
		if _, ok := l.Section("text"); ok {
			t.Error("rejected section must not be recorded")
		}
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yml")
	if err := os.WriteFile(path, []byte(regularYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := Load(path, layout.DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := len(l.Regions()); n != 3 {
		t.Errorf("regions = %d, want 3", n)
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"), layout.DefaultOptions())
		e := structured(t, err)
		if e.Kind != lderrors.KindIO {
			t.Errorf("Kind = %v, want io", e.Kind)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "board.toml"), layout.DefaultOptions())
		e := structured(t, err)
		if e.Kind != lderrors.KindInvalidInput {
			t.Errorf("Kind = %v, want invalid_input", e.Kind)
		}
	})
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"flash":        "flash",
		"Flash":        "flash",
		"VectorTable":  "vector_table",
		"CcramData":    "ccram_data",
		"CcRam":        "cc_ram",
		"ISRVector":    "isr_vector",
		"vector_table": "vector_table",
		"RAM":          "ram",
		"Sram2":        "sram2",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
