// Package token defines lexical token kinds for the Theta compiler.
// Invariants:
//   - Token.Text is the exact source slice for Ident/number tokens; for
//     string literals it is the decoded, NFC-normalized value.
//   - Token.Span always covers the raw source bytes of the token.
//   - Comments ("//" line, "/- ... -/" block) never reach the token stream.
//   - Type names (Number, String, List, ...) are identifiers, not keywords.
package token
