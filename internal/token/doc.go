// Package token defines lexical token kinds and trivia for corvid sources.
// Invariants:
//   - Token.Span matches Text exactly.
//   - A '#' line is lexed as one Directive token whose Text is the whole line
//     without the trailing newline. Directives never become trivia.
//   - Predefined type names (int, string, void, ...) are identifiers except
//     `void`, which the entry point rules need to recognise cheaply.
package token
