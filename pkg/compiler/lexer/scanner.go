package lexer

import (
	"unicode/utf8"

	"github.com/agenthands/xenon/pkg/core/diag"
)

// DefaultMaxTextLength is the longest text literal, in bytes, accepted by
// default. It matches the text constant limit of the assembly format.
const DefaultMaxTextLength = 256

// Options tune the tokenizer.
type Options struct {
	// MaxTextLength bounds text literals after escape removal. Zero disables
	// the check.
	MaxTextLength int
}

// DefaultOptions returns the options used by the package-level Tokenize.
func DefaultOptions() Options {
	return Options{MaxTextLength: DefaultMaxTextLength}
}

// Tokenizer splits lines into words.
type Tokenizer struct {
	opts Options
}

// New creates a tokenizer with the given options.
func New(opts Options) *Tokenizer {
	return &Tokenizer{opts: opts}
}

// Tokenize splits one line with the default options.
func Tokenize(line string) ([]Word, error) {
	return New(DefaultOptions()).Tokenize(line)
}

// Tokenize splits one line into words. Parenthesized expressions are
// tokenized recursively and bracketed by ExpressionBegin/ExpressionEnd.
// Tab words are kept so the caller can compute the line scope.
func (t *Tokenizer) Tokenize(line string) ([]Word, error) {
	return t.appendWords(nil, line)
}

func (t *Tokenizer) appendWords(words []Word, src string) ([]Word, error) {
	for {
		w, n := Next(src)
		src = src[n:]

		switch w.Kind {
		case KindEmpty:
			return words, nil
		case KindInvalid:
			return words, diag.Word(diag.Lexical, "Invalid character", w.Text, "")
		case KindText:
			if t.opts.MaxTextLength > 0 && len(w.Text) > t.opts.MaxTextLength {
				return words, diag.Word(diag.Lexical, "Text too long", truncate(w.Text, 16), "")
			}
			words = append(words, w)
		case KindExpression:
			words = append(words, ExpressionBegin)
			var err error
			if words, err = t.appendWords(words, w.Text); err != nil {
				return words, err
			}
			words = append(words, ExpressionEnd)
		case KindOperator:
			if Classify(w) == OpNone {
				return words, diag.Word(diag.Lexical, "Invalid operator", w.Text, "")
			}
			words = append(words, w)
		default:
			words = append(words, w)
		}
	}
}

// Next returns the first word of src and the number of bytes it consumed.
// It returns an Empty word at end of input and when a comment starts, in
// which case the rest of src counts as consumed. An Expression word holds
// the text between the outer parentheses, still untokenized.
func Next(src string) (Word, int) {
	s := scanner{src: src}
	w := s.next()
	return w, s.cursor
}

// scanner holds the cursor of a single Next call.
type scanner struct {
	src    string
	cursor int
}

func (s *scanner) next() Word {
	for s.cursor < len(s.src) {
		ch := s.src[s.cursor]
		s.cursor++

		switch ch {
		case ' ':
			continue
		case '\t':
			return Tab
		case ',':
			return Comma
		case '.':
			return Trail
		case ':':
			return Cast
		case '$':
			if isAlpha(s.peek()) {
				return Word{Kind: KindVarname, Text: s.scanIdentifier()}
			}
			// A lone $ produces nothing.
			continue
		case '@':
			if isAlpha(s.peek()) {
				return Word{Kind: KindFuncname, Text: s.scanIdentifier()}
			}
			continue
		case '"':
			return s.scanText()
		case '(':
			return s.scanExpression()
		case ';':
			s.cursor = len(s.src)
			return Word{}
		}

		if ch == '/' && s.peek() == '/' {
			s.cursor = len(s.src)
			return Word{}
		}

		if isOperator(ch) {
			start := s.cursor - 1
			if isOperator(s.peek()) {
				s.cursor++
			}
			return Word{Kind: KindOperator, Text: s.src[start:s.cursor]}
		}

		if isDigit(ch) {
			s.cursor--
			return s.scanNumber()
		}

		if isAlpha(ch) {
			s.cursor--
			return Word{Kind: KindName, Text: s.scanIdentifier()}
		}

		s.cursor--
		r, size := utf8.DecodeRuneInString(s.src[s.cursor:])
		s.cursor += size
		return Word{Kind: KindInvalid, Text: string(r)}
	}
	return Word{}
}

func (s *scanner) peek() byte {
	if s.cursor >= len(s.src) {
		return 0
	}
	return s.src[s.cursor]
}

// scanIdentifier consumes [A-Za-z0-9_]* starting at the cursor and returns
// it lowercased.
func (s *scanner) scanIdentifier() string {
	start := s.cursor
	for s.cursor < len(s.src) && isAlnum(s.src[s.cursor]) {
		s.cursor++
	}
	return toLower(s.src[start:s.cursor])
}

// scanText consumes a text literal whose opening quote was already consumed.
// A backslash makes the next character literal and is itself dropped.
func (s *scanner) scanText() Word {
	buf := make([]byte, 0, 16)
	for s.cursor < len(s.src) {
		ch := s.src[s.cursor]
		s.cursor++
		if ch == '"' {
			break
		}
		if ch == '\\' {
			if s.cursor >= len(s.src) {
				break
			}
			ch = s.src[s.cursor]
			s.cursor++
		}
		buf = append(buf, ch)
	}
	return Word{Kind: KindText, Text: string(buf)}
}

// scanExpression consumes up to the parenthesis matching the one already
// consumed. Parentheses inside text literals do not count and escapes inside
// them are kept verbatim for the recursive pass.
func (s *scanner) scanExpression() Word {
	start := s.cursor
	depth := 0
	inText := false
	for s.cursor < len(s.src) {
		ch := s.src[s.cursor]
		if inText {
			switch ch {
			case '\\':
				s.cursor++
			case '"':
				inText = false
			}
		} else {
			switch ch {
			case '"':
				inText = true
			case '(':
				depth++
			case ')':
				if depth == 0 {
					s.cursor++
					return Word{Kind: KindExpression, Text: s.src[start : s.cursor-1]}
				}
				depth--
			}
		}
		s.cursor++
	}
	// Unbalanced: everything up to end of line is the expression.
	if s.cursor > len(s.src) {
		s.cursor = len(s.src)
	}
	return Word{Kind: KindExpression, Text: s.src[start:s.cursor]}
}

// scanNumber consumes digits with at most one decimal point. A second point
// ends the literal and is left for the next word.
func (s *scanner) scanNumber() Word {
	start := s.cursor
	hasDecimal := false
	for s.cursor < len(s.src) {
		ch := s.src[s.cursor]
		if ch == '.' {
			if hasDecimal {
				break
			}
			hasDecimal = true
		} else if !isDigit(ch) {
			break
		}
		s.cursor++
	}
	return Word{Kind: KindNumeric, Text: s.src[start:s.cursor]}
}

func isOperator(ch byte) bool {
	switch ch {
	case '=', '+', '-', '*', '/', '%', '^', '>', '<', '&', '|', '!', '~', '?':
		return true
	}
	return false
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isAlnum(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func toLower(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
