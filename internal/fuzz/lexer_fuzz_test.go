package fuzztests

import (
	"testing"

	"corvid/internal/diag"
	"corvid/internal/lexer"
	"corvid/internal/source"
	"corvid/internal/token"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		fs := source.NewFileSet()
		file := fs.AddVirtual("fuzz.cv", input)

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		// каждый токен продвигает курсор, иначе лексер зациклился
		for i := 0; ; i++ {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				break
			}
			if i > len(file.Content)+1 {
				t.Fatalf("lexer produced more tokens than input bytes (%d)", len(file.Content))
			}
		}
	})
}
