package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	lderrors "github.com/wippyai/ldscript/errors"
	"github.com/wippyai/ldscript/layout"
)

const regularStar = `flash = region("Flash", address = 0x00000000, size = kb(256), access = "RX")
ram = region("Ram", address = 0x20000000, size = "128 kilobytes", access = "RWX")
ccram = region("CcRam", address = 0x21000000, size = "16KiB", access = "RWX")

section("VectorTable", region = flash, offset = 0, size = kb(1))
section("Text", region = flash)
section("Ramfunc", vma = ram, lma = flash, size = "32K")
section("Data", vma = ram, lma = flash)
section("CcramData", vma = ccram, lma = "flash")
section("Bss", region = ram)
section("CcramBss", region = ccram)
`

func TestParseStarlark_MatchesYAML(t *testing.T) {
	star, err := ParseStarlark("layout.star", []byte(regularStar))
	if err != nil {
		t.Fatalf("ParseStarlark: %v", err)
	}
	yml, err := ParseYAML("layout.yaml", []byte(regularYAML))
	if err != nil {
		t.Fatal(err)
	}

	if len(star.Regions) != len(yml.Regions) {
		t.Fatalf("regions = %d, want %d", len(star.Regions), len(yml.Regions))
	}
	for i := range yml.Regions {
		a, b := star.Regions[i], yml.Regions[i]
		if a.Name != b.Name || a.Address != b.Address || a.Size != b.Size || a.Access != b.Access {
			t.Errorf("region %d: starlark %+v, yaml %+v", i, a, b)
		}
	}

	if len(star.Sections) != len(yml.Sections) {
		t.Fatalf("sections = %d, want %d", len(star.Sections), len(yml.Sections))
	}
	for i := range yml.Sections {
		a, b := star.Sections[i], yml.Sections[i]
		a.Pos, b.Pos = lderrors.Position{}, lderrors.Position{}
		if a != b {
			t.Errorf("section %d: starlark %+v, yaml %+v", i, a, b)
		}
	}

	if star.Regions[1].Pos.Line != 2 || star.Regions[1].Pos.File != "layout.star" {
		t.Errorf("ram pos = %v, want layout.star:2", star.Regions[1].Pos)
	}
	if star.Sections[3].Pos.Line != 8 {
		t.Errorf("data line = %d, want 8", star.Sections[3].Pos.Line)
	}
}

func TestParseStarlark_Programmatic(t *testing.T) {
	src := `
flash = region("flash", address = 0x08000000, size = mb(1), access = "RX")
banks = []
for i in range(2):
    banks.append(region("sram%d" % i, address = 0x20000000 + i * kb(64), size = kb(64), access = "RW"))

section("vector_table", region = flash, size = 0x200)
section("text", region = flash)
section("data", vma = banks[0], lma = flash, align = 8)
section("stack", region = banks[1], size = kb(4))
`
	doc, err := ParseStarlark("gen.star", []byte(src))
	if err != nil {
		t.Fatalf("ParseStarlark: %v", err)
	}
	if len(doc.Regions) != 3 || doc.Regions[2].Name != "sram1" || doc.Regions[2].Address != 0x20010000 {
		t.Fatalf("regions = %+v", doc.Regions)
	}
	stack := doc.Sections[3]
	if stack.Role != layout.RoleStack || stack.Size != 4096 || stack.Region != "sram1" {
		t.Errorf("stack = %+v", stack)
	}
	if doc.Sections[2].Align != 8 {
		t.Errorf("data align = %d, want 8", doc.Sections[2].Align)
	}

	l := layout.NewWithDefaults()
	if err := Apply(doc, l); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := l.Freeze(); err != nil {
		t.Errorf("Freeze: %v", err)
	}
}

func TestParseStarlark_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind lderrors.Kind
		line int
	}{
		{
			name: "syntax error",
			src:  "region(\n",
			kind: lderrors.KindInvalidInput,
		},
		{
			name: "missing argument",
			src:  `region("flash", address = 0, size = 1)`,
			kind: lderrors.KindInvalidInput,
		},
		{
			name: "bad access",
			src:  "\nregion(\"flash\", address = 0, size = 1, access = \"X\")",
			kind: lderrors.KindInvalidInput,
			line: 2,
		},
		{
			name: "bad identifier",
			src:  `region("9flash", address = 0, size = 1, access = "RX")`,
			kind: lderrors.KindInvalidIdentifier,
			line: 1,
		},
		{
			name: "address overflow",
			src:  `region("flash", address = 0x100000000, size = 1, access = "RX")`,
			kind: lderrors.KindOverflow,
			line: 1,
		},
		{
			name: "scale overflow",
			src:  `x = mb(4096)`,
			kind: lderrors.KindOverflow,
		},
		{
			name: "mixed forms",
			src:  `section("text", region = "flash", vma = "ram", lma = "flash")`,
			kind: lderrors.KindInvalidInput,
			line: 1,
		},
		{
			name: "lma without vma",
			src:  "\n\nsection(\"data\", lma = \"flash\")",
			kind: lderrors.KindFieldMissing,
			line: 3,
		},
		{
			name: "offset with vma form",
			src:  `section("data", vma = "ram", lma = "flash", offset = 0)`,
			kind: lderrors.KindInvalidInput,
		},
		{
			name: "bad region reference type",
			src:  `section("text", region = 42)`,
			kind: lderrors.KindInvalidInput,
			line: 1,
		},
		{
			name: "unknown kind",
			src:  `section("persist", region = "ram", kind = "heap")`,
			kind: lderrors.KindInvalidInput,
			line: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStarlark("bad.star", []byte(tt.src))
			e := structured(t, err)
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v (%v)", e.Kind, tt.kind, err)
			}
			if tt.line != 0 && e.Pos.Line != tt.line {
				t.Errorf("Line = %d, want %d (%v)", e.Pos.Line, tt.line, err)
			}
		})
	}
}

func TestLoad_Starlark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.star")
	if err := os.WriteFile(path, []byte(regularStar), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := Load(path, layout.Options{StrictSections: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !l.Options().StrictSections {
		t.Error("options not carried into the layout")
	}
	if _, ok := l.Section("ccram_bss"); !ok {
		t.Error("ccram_bss missing")
	}
}
