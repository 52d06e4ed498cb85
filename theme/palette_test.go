package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if p.Name != "Dusk" {
		t.Fatalf("expected Dusk, got %q", p.Name)
	}
	if len(p.Colors) != 11 {
		t.Fatalf("expected 11 colors, got %d", len(p.Colors))
	}
	if p.Lookup(0) != (RGB{18, 16, 32}) || p.Lookup(1) != (RGB{250, 245, 200}) {
		t.Fatalf("unexpected endpoints %v %v", p.Lookup(0), p.Lookup(1))
	}
}

func TestParseGPL(t *testing.T) {
	src := "GIMP Palette\nName: Two\nColumns: 2\n# comment\n  0   0   0\tblack\n200 100 0 orange\n300 0 0 out of range\n"
	p, err := ParseGPL(strings.NewReader(src), "two.gpl")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Two" || len(p.Colors) != 2 {
		t.Fatalf("unexpected palette %+v", p)
	}
	if mid := p.Lookup(0.5); mid != (RGB{100, 50, 0}) {
		t.Fatalf("expected midpoint {100 50 0}, got %v", mid)
	}

	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n"), "empty.gpl"); err == nil {
		t.Fatal("expected error for empty palette")
	}
}

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.gpl")
	if err := os.WriteFile(path, []byte("GIMP Palette\n1 2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadGPL(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Colors[0].Hex() != "#010203" {
		t.Fatalf("unexpected color %s", p.Colors[0].Hex())
	}
	if _, err := LoadGPL(filepath.Join(t.TempDir(), "missing.gpl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
