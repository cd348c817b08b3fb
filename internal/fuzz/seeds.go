package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB - ограничение для тестового корпуса
)

var builtinSeeds = []string{
	"",
	"class Program { static void Main() { } }\n",
	"#r \"core.cvm\"\n#load \"other.cv\"\nusing System;\nclass A { }\n",
	"extern alias X;\nusing X::N;\nglobal using System.Linq;\nnamespace A.B;\nrecord struct P<T, U> { }\n",
	"System.Console.WriteLine(1);\nclass C { static async Task<int> Main(string[] args) { await Task.Delay(1); return 0; } }\n",
	"#pragma warning disable CMP4472, CMP4473\nclass N { void F(int a) { if (a == null) { } } }\n#pragma warning restore\n",
	"#warning look here\nnamespace A { namespace B { interface I { void M(); } enum E { X, Y } } }\n",
	"class Broken { int F( { \"unterminated\n",
	"/* open comment\nclass X { }\n",
	"namespace { class } } } {{{ ;;; \n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range builtinSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.cv файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error { //nolint:errcheck
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".cv" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
