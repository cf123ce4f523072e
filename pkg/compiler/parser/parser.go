package parser

import (
	"errors"
	"io"
	"log/slog"

	"github.com/agenthands/xenon/pkg/compiler/lexer"
	"github.com/agenthands/xenon/pkg/core/diag"
)

// globalScopeFirstWords are the statements allowed at scope 0.
var globalScopeFirstWords = map[string]bool{
	"include":  true,
	"const":    true,
	"var":      true,
	"array":    true,
	"storage":  true,
	"init":     true,
	"tick":     true,
	"function": true,
	"timer":    true,
	"input":    true,
}

// functionScopeFirstWords are the named statements allowed inside a block.
// Lines may also start with a $variable or an @function call.
var functionScopeFirstWords = map[string]bool{
	"var":     true,
	"array":   true,
	"output":  true,
	"foreach": true,
	"repeat":  true,
	"while":   true,
	"break":   true,
	"next":    true,
	"if":      true,
	"elseif":  true,
	"else":    true,
	"return":  true,
}

// ParsedLine is one tokenized source line and its indentation depth.
type ParsedLine struct {
	Scope int
	Line  int // 1-based, 0 when parsed outside a file
	Words []lexer.Word
}

// Empty reports whether the line carried no words (blank or comment only).
func (l ParsedLine) Empty() bool { return len(l.Words) == 0 }

// Parser turns source lines into ParsedLines.
type Parser struct {
	tokenizer *lexer.Tokenizer
	strict    bool
	name      string
	logger    *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxTextLength bounds text literals; zero disables the check.
func WithMaxTextLength(n int) Option {
	return func(p *Parser) { p.tokenizer = lexer.New(lexer.Options{MaxTextLength: n}) }
}

// WithStrict enables statement shape validation on top of the first word check.
func WithStrict(strict bool) Option {
	return func(p *Parser) { p.strict = strict }
}

// WithName sets the source name reported in diagnostics.
func WithName(name string) Option {
	return func(p *Parser) { p.name = name }
}

// WithLogger sets the logger used while aggregating a source stream.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser creates a parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		tokenizer: lexer.New(lexer.DefaultOptions()),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseLine parses a single line with the default options.
func ParseLine(text string) (ParsedLine, error) {
	return NewParser().ParseLine(text, 0)
}

// ParseLine tokenizes text, derives its scope from the leading tabs and
// checks that the first word may start a statement at that scope. Errors are
// positioned at lineNo.
func (p *Parser) ParseLine(text string, lineNo int) (ParsedLine, error) {
	line := ParsedLine{Line: lineNo}

	words, err := p.tokenizer.Tokenize(text)
	if err != nil {
		return line, p.position(err, lineNo)
	}

	kept := words[:0]
	for _, w := range words {
		if w.Is(lexer.KindTab) {
			if len(kept) == 0 {
				line.Scope++
			}
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return line, nil
	}
	line.Words = kept

	if err := checkFirstWord(line); err != nil {
		return line, p.position(err, lineNo)
	}
	if p.strict {
		if err := ValidateStatement(line); err != nil {
			return line, p.position(err, lineNo)
		}
		// include foo is the same file as include "foo".
		if line.Words[0].IsName("include") {
			line.Words[1].Kind = lexer.KindText
		}
	}
	return line, nil
}

func checkFirstWord(line ParsedLine) error {
	first := line.Words[0]
	if line.Scope == 0 {
		if !first.Is(lexer.KindName) || !globalScopeFirstWords[first.Text] {
			return diag.Word(diag.Grammar, "Invalid first word", first.Text, "in the global scope")
		}
		return nil
	}
	switch first.Kind {
	case lexer.KindVarname, lexer.KindFuncname:
		return nil
	case lexer.KindName:
		if functionScopeFirstWords[first.Text] {
			return nil
		}
	}
	return diag.Word(diag.Grammar, "Invalid first word", first.Text, "in a function scope")
}

func (p *Parser) position(err error, lineNo int) error {
	var de *diag.Error
	if errors.As(err, &de) {
		return de.At(lineNo, p.name)
	}
	return err
}
