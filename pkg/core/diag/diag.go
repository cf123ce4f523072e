// Package diag defines the structured errors reported by the front end.
//
// Every failure carries a Kind so callers can tell a bad source line from a
// bad artifact without matching on message text:
//
//	var de *diag.Error
//	if errors.As(err, &de) && de.Kind == diag.Grammar { ... }
//	if errors.Is(err, diag.ErrIndentation) { ... }
package diag

import (
	"strconv"
	"strings"
)

// Kind classifies a front-end failure.
type Kind uint8

const (
	// Lexical: a character the tokenizer does not recognize.
	Lexical Kind = iota + 1
	// Grammar: a line's words are not allowed at its scope.
	Grammar
	// Indentation: a line is nested more than one level deeper than its predecessor.
	Indentation
	// Format: an artifact with a bad magic, a newer version or malformed fields.
	Format
	// Structural: a truncated stream or an artifact whose contents contradict its header.
	Structural
)

// Kind values double as sentinels for errors.Is.
var (
	ErrLexical     error = Lexical
	ErrGrammar     error = Grammar
	ErrIndentation error = Indentation
	ErrFormat      error = Format
	ErrStructural  error = Structural
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical"
	case Grammar:
		return "grammar"
	case Indentation:
		return "indentation"
	case Format:
		return "format"
	case Structural:
		return "structural"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Error makes a Kind usable as a sentinel.
func (k Kind) Error() string { return k.String() + " error" }

// Error is a front-end failure with the minimal context needed to report it.
type Error struct {
	Kind   Kind
	Msg    string // what went wrong, e.g. "Invalid first word"
	Text   string // offending word or character, quoted in the message
	Detail string // trailing qualifier, e.g. "in the global scope"
	Line   int    // 1-based source line, 0 when unknown
	File   string // source name, empty when unknown
	Err    error  // underlying cause, if any

	hasText bool
}

// New returns an error of the given kind without an offending word.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Word returns an error naming the offending text, rendered as
// msg 'text' detail.
func Word(kind Kind, msg, text, detail string) *Error {
	return &Error{Kind: kind, Msg: msg, Text: text, Detail: detail, hasText: true}
}

// Wrap returns an error of the given kind caused by err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// At returns a copy of e positioned at the given line and file. A zero line
// or empty file keeps the value already recorded.
func (e *Error) At(line int, file string) *Error {
	c := *e
	if line > 0 {
		c.Line = line
	}
	if file != "" {
		c.File = file
	}
	return &c
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.hasText {
		b.WriteString(" '")
		b.WriteString(e.Text)
		b.WriteByte('\'')
	}
	if e.Detail != "" {
		b.WriteByte(' ')
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	if e.Line > 0 {
		b.WriteString(" at line ")
		b.WriteString(strconv.Itoa(e.Line))
	}
	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}
