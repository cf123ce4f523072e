// Package golden extracts test cases from Markdown documents.
//
// A test case starts at a heading of the form "Test: <name>". It holds one
// input fence (language "xenon" for whole sources or "xenon-line" for a
// single line) and one or more assertion fences whose language names what
// the content is compared against.
package golden

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType is the language of an input fence.
type InputType string

const (
	InputSource InputType = "xenon"
	InputLine   InputType = "xenon-line"
)

// AssertionType is the language of an assertion fence.
type AssertionType string

const (
	AssertWords AssertionType = "words" // one word per line: kind, then the word as written
	AssertDump  AssertionType = "dump"  // SourceFile.Dump output
	AssertError AssertionType = "error" // substring of the error message
	AssertScope AssertionType = "scope" // scope of a single line
)

// Assertion is one expectation of a test case.
type Assertion struct {
	Type    AssertionType
	Content string
}

// Case is one test case of a document.
type Case struct {
	Name       string
	Line       int // line of the heading in the document
	Input      string
	InputType  InputType
	Assertions []Assertion
}

// Assertion returns the content of the first assertion of type typ.
func (c Case) Assertion(typ AssertionType) (string, bool) {
	for _, a := range c.Assertions {
		if a.Type == typ {
			return a.Content, true
		}
	}
	return "", false
}

// Load reads and extracts the test cases of a Markdown file.
func Load(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cases, err := Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// Extract parses a Markdown document and returns its test cases in order.
func Extract(source []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var current *Case

	flush := func() error {
		if current == nil {
			return nil
		}
		if current.InputType == "" {
			return fmt.Errorf("test '%s' has no input fence", current.Name)
		}
		if len(current.Assertions) == 0 {
			return fmt.Errorf("test '%s' has no assertion fences", current.Name)
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimPrefix(heading, "Test: "),
				Line: lineOf(n, source),
			}

		case *ast.FencedCodeBlock:
			lang := string(n.Language(source))
			line := lineOf(n, source)
			if lang == "" {
				return ast.WalkContinue, nil
			}
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of a test case", line, lang)
			}
			content := blockContent(n, source)

			switch {
			case isInput(lang):
				if current.InputType != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences in test '%s'", line, current.Name)
				}
				current.InputType = InputType(lang)
				current.Input = strings.TrimSuffix(content, "\n")
			case isAssertion(lang):
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(lang),
					Content: strings.TrimRight(content, "\n"),
				})
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, lang, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func isInput(lang string) bool {
	switch InputType(lang) {
	case InputSource, InputLine:
		return true
	}
	return false
}

func isAssertion(lang string) bool {
	switch AssertionType(lang) {
	case AssertWords, AssertDump, AssertError, AssertScope:
		return true
	}
	return false
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based document line where node starts.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 0
	}
	start := node.Lines().At(0).Start
	return 1 + bytes.Count(source[:min(start, len(source))], []byte{'\n'})
}
