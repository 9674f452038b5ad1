package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("script.pl", []byte("print 1;"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	id2 := fs.Add("script.pl", []byte("print 2;"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latestID, exists := fs.GetLatest("script.pl")
	if !exists || latestID != id2 {
		t.Fatalf("Expected latest ID %d, got %d (exists=%v)", id2, latestID, exists)
	}

	if got := string(fs.Get(id1).Content); got != "print 1;" {
		t.Errorf("old version must stay readable, got %q", got)
	}
}

func TestAddVirtualNormalizes(t *testing.T) {
	fs := NewFileSet()
	raw := []byte("\xEF\xBB\xBFmy $x = 1;\r\nprint $x;\r\n")
	id := fs.AddVirtual("mem.pl", raw)
	f := fs.Get(id)

	if string(f.Content) != "my $x = 1;\nprint $x;\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileVirtual == 0 || f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("unexpected flags %b", f.Flags)
	}
	if f.LineCount() != 2 {
		t.Fatalf("expected 2 lines, got %d", f.LineCount())
	}
}

func TestNFCNormalization(t *testing.T) {
	fs := NewFileSet()
	// "é" as e + combining acute accent
	id := fs.AddVirtual("nfc.pl", []byte("my $name = \"cafe\u0301\";"))
	f := fs.Get(id)
	if string(f.Content) != "my $name = \"caf\u00e9\";" {
		t.Fatalf("expected composed form, got %q", f.Content)
	}
	if f.Flags&FileNormalizedNFC == 0 {
		t.Fatalf("NFC flag not set")
	}
}

func TestResolveAndLineOf(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("pos.pl", []byte("ab\ncd\n\nef"))
	f := fs.Get(id)

	tests := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},
		{2, 1, 3}, // the newline itself belongs to line 1
		{3, 2, 1},
		{6, 3, 1},
		{7, 4, 1},
		{8, 4, 2},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start.Line != tt.line || start.Col != tt.col {
			t.Errorf("offset %d: got %d:%d, want %d:%d", tt.off, start.Line, start.Col, tt.line, tt.col)
		}
		if got := f.LineOf(tt.off); got != tt.line {
			t.Errorf("LineOf(%d) = %d, want %d", tt.off, got, tt.line)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("lines.pl", []byte("first\nsecond\nthird")))

	cases := map[uint32]string{0: "", 1: "first", 2: "second", 3: "third", 4: ""}
	for n, want := range cases {
		if got := f.GetLine(n); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.pl")
	if err := os.WriteFile(path, []byte("print \"hi\\n\";\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "print \"hi\\n\";\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if got := f.FormatPath("relative", dir); got != "hello.pl" {
		t.Errorf("relative path = %q", got)
	}
	if got := f.FormatPath("basename", ""); got != "hello.pl" {
		t.Errorf("basename = %q", got)
	}

	if _, err := fs.Load(filepath.Join(dir, "missing.pl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
