package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	f1 := fs.Add("test.cv", []byte("hello world"), 0)
	if f1.ID != 0 {
		t.Fatalf("expected first FileID to be 0, got %d", f1.ID)
	}
	f2 := fs.Add("test.cv", []byte("hello universe"), 0)
	if f2.ID != 1 {
		t.Fatalf("expected second FileID to be 1, got %d", f2.ID)
	}
	latest, ok := fs.GetLatest("test.cv")
	if !ok || latest != f2.ID {
		t.Fatalf("GetLatest = %d,%v; want %d,true", latest, ok, f2.ID)
	}
	if got := string(fs.Get(f1.ID).Content); got != "hello world" {
		t.Fatalf("old version lost: %q", got)
	}
}

func TestPositionAndLines(t *testing.T) {
	fs := NewFileSet()
	f := fs.AddVirtual("a.cv", []byte("ab\ncd\n\nef"))

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // the '\n' itself belongs to line 1
		{3, LineCol{2, 1}},
		{7, LineCol{4, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tc := range cases {
		if got := f.Position(tc.off); got != tc.want {
			t.Fatalf("Position(%d) = %+v, want %+v", tc.off, got, tc.want)
		}
	}
	if got := f.GetLine(2); got != "cd" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(3); got != "" {
		t.Fatalf("GetLine(3) = %q", got)
	}
	if got := f.Text(Span{File: f.ID, Start: 3, End: 100}); got != "cd\n\nef" {
		t.Fatalf("Text clamp = %q", got)
	}
}

func TestFileSetConcurrentAdd(t *testing.T) {
	fs := NewFileSet()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fs.AddVirtual("x.cv", []byte("x"))
		}()
	}
	wg.Wait()
	seen := make(map[FileID]bool)
	for i := 0; i < 32; i++ {
		f := fs.Get(FileID(i))
		if f == nil || seen[f.ID] {
			t.Fatalf("file %d missing or duplicated", i)
		}
		seen[f.ID] = true
	}
}

func TestNoSpan(t *testing.T) {
	if !NoSpan.IsNone() || NoSpan.String() != "-" {
		t.Fatalf("NoSpan misbehaves: %v", NoSpan)
	}
	if fs := NewFileSet(); fs.Get(NoFileID) != nil {
		t.Fatal("Get(NoFileID) must be nil")
	}
}

func TestLoadNormalizesAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "win.cv")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFclass C {\r\n}\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	f, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(f.Content) != "class C {\n}\n" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 || f.IsVirtual() {
		t.Fatalf("flags = %b", f.Flags)
	}
	if got := f.Position(10).String(); got != "2:1" {
		t.Fatalf("Position(10) = %s", got)
	}
	if !fs.AddVirtual("mem.cv", nil).IsVirtual() {
		t.Fatalf("AddVirtual must mark the file virtual")
	}
}
