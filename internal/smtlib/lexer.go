// Package smtlib implements a minimal reader for a QF_LIA/QF_ALIA subset of
// SMT-LIB2: enough to load declare-fun/assert commands using +, -, *,
// select, store, =, distinct, <=, >=, <, >, and, or, not into an
// internal/expr tree. It underpins the refsolver reference Oracle's Parse
// method and is used directly by tests that want a formula from text
// rather than built with expr's constructors.
//
// It is not a general SMT-LIB2 front end: a production Oracle binds to a
// real solver's own parser and never needs this package (spec.md treats
// parsing as the Oracle's external responsibility). Grounded on
// kanso-lang-kanso/grammar's stateful-lexer idiom.
package smtlib

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenizes SMT-LIB2 s-expression syntax: parens, symbols (including
// operator symbols like "+" and "<="), integers, and whitespace/comments.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `;[^\n]*`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"LParen", `\(`, nil},
		{"RParen", `\)`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"Symbol", `[a-zA-Z_+\-*/<>=!][a-zA-Z0-9_+\-*/<>=!.]*`, nil},
	},
})
