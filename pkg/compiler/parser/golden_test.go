package parser_test

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/agenthands/xenon/internal/golden"
	"github.com/agenthands/xenon/pkg/compiler/parser"
)

func TestGoldenParse(t *testing.T) {
	cases, err := golden.Load("testdata/parse.md")
	be.Err(t, err, nil)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.InputType == golden.InputLine {
				line, err := parser.ParseLine(tc.Input)
				be.Err(t, err, nil)
				if want, ok := tc.Assertion(golden.AssertScope); ok {
					be.Equal(t, strconv.Itoa(line.Scope), want)
				}
				return
			}

			file, err := parser.Parse(strings.NewReader(tc.Input))
			if want, ok := tc.Assertion(golden.AssertError); ok {
				be.Err(t, err, want)
			} else {
				be.Err(t, err, nil)
			}

			if want, ok := tc.Assertion(golden.AssertDump); ok {
				var buf bytes.Buffer
				be.Err(t, file.Dump(&buf), nil)
				be.Equal(t, strings.TrimRight(buf.String(), "\n"), want)
			}
		})
	}
}
