package lexer_test

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/agenthands/xenon/internal/golden"
	"github.com/agenthands/xenon/pkg/compiler/lexer"
)

func TestGoldenTokens(t *testing.T) {
	cases, err := golden.Load("testdata/tokens.md")
	be.Err(t, err, nil)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			words, err := lexer.Tokenize(tc.Input)

			if want, ok := tc.Assertion(golden.AssertError); ok {
				be.Err(t, err, want)
				return
			}
			be.Err(t, err, nil)

			if want, ok := tc.Assertion(golden.AssertWords); ok {
				rows := make([]string, len(words))
				for i, w := range words {
					rows[i] = w.Kind.String() + " " + w.String()
				}
				be.Equal(t, strings.Join(rows, "\n"), want)
			}
		})
	}
}
