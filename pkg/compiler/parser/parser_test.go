package parser_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/nalgeon/be"

	"github.com/agenthands/xenon/pkg/compiler/lexer"
	"github.com/agenthands/xenon/pkg/compiler/parser"
	"github.com/agenthands/xenon/pkg/core/diag"
)

func TestParseLineFirstWord(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		scope   int
		wantErr string
	}{
		{name: "global var", src: "var $x = 1"},
		{name: "global function", src: "function @main()"},
		{name: "global include", src: `include "lib.xc"`},
		{name: "global timer", src: "timer frequency 4"},
		{name: "blank line", src: ""},
		{name: "comment only", src: "\t\t; nothing", scope: 2},
		{name: "nested output", src: "\toutput.0($x)", scope: 1},
		{name: "nested assignment", src: "\t\t$x += 1", scope: 2},
		{name: "nested call", src: "\t@f()", scope: 1},
		{name: "nested next", src: "\tnext", scope: 1},
		{
			name:    "output in global scope",
			src:     "output.0(1)",
			wantErr: "Invalid first word 'output' in the global scope",
		},
		{
			name:    "variable in global scope",
			src:     "$x = 1",
			wantErr: "Invalid first word 'x' in the global scope",
		},
		{
			name:    "function in a function scope",
			src:     "\tfunction @f()",
			scope:   1,
			wantErr: "Invalid first word 'function' in a function scope",
		},
		{
			name:    "number in a function scope",
			src:     "\t5",
			scope:   1,
			wantErr: "Invalid first word '5' in a function scope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := parser.ParseLine(tt.src)
			if tt.wantErr != "" {
				be.Err(t, err, tt.wantErr)
				be.Err(t, err, diag.ErrGrammar)
				return
			}
			be.Err(t, err, nil)
			be.Equal(t, line.Scope, tt.scope)
		})
	}
}

func TestParseLineDropsTabs(t *testing.T) {
	line, err := parser.ParseLine("\t\tif $a\t== 1")
	be.Err(t, err, nil)
	be.Equal(t, line.Scope, 2)
	for _, w := range line.Words {
		be.True(t, !w.Is(lexer.KindTab))
	}
	be.Equal(t, len(line.Words), 4)
}

func TestParseLineLexicalError(t *testing.T) {
	_, err := parser.NewParser(parser.WithName("main.xc")).ParseLine("var $x = #", 7)
	be.Err(t, err, diag.ErrLexical)
	be.Err(t, err, "Invalid character '#' at line 7 in main.xc")
}

func TestParseLineMaxTextLength(t *testing.T) {
	p := parser.NewParser(parser.WithMaxTextLength(4))
	_, err := p.ParseLine(`var $s = "abcd"`, 1)
	be.Err(t, err, nil)
	_, err = p.ParseLine(`var $s = "abcde"`, 2)
	be.Err(t, err, "Text too long")
}

func TestParse(t *testing.T) {
	src := "; header\n" +
		"var $count = 0\n" +
		"\n" +
		"init\n" +
		"\t$count = 1\n" +
		"\tif $count > 0\n" +
		"\t\toutput.0($count)\n" +
		"tick\n" +
		"\t$count++"

	file, err := parser.Parse(strings.NewReader(src), parser.WithName("main.xc"))
	be.Err(t, err, nil)
	be.Equal(t, file.Name, "main.xc")

	var lines, scopes []int
	for _, l := range file.Lines {
		lines = append(lines, l.Line)
		scopes = append(scopes, l.Scope)
	}
	be.Equal(t, lines, []int{2, 4, 5, 6, 7, 8, 9})
	be.Equal(t, scopes, []int{0, 0, 1, 1, 2, 0, 1})
}

func TestParseTooManyLeadingTabs(t *testing.T) {
	src := "init\n" +
		"\tif 1\n" +
		"\t\t$x = 1\n" +
		"tick\n" +
		"\t\t$x = 2\n" +
		"\t$x = 3\n"

	file, err := parser.Parse(strings.NewReader(src), parser.WithName("main.xc"))
	be.Err(t, err, diag.ErrIndentation)
	be.Err(t, err, "Too many leading tabs at line 5 in main.xc")
	be.True(t, file != nil)
	be.Equal(t, len(file.Lines), 4)

	var de *diag.Error
	be.True(t, errors.As(err, &de))
	be.Equal(t, de.Line, 5)
}

func TestParseScopeDecrease(t *testing.T) {
	src := "init\n\tif 1\n\t\tif 2\n\t\t\t$x = 1\ntick\n"
	file, err := parser.Parse(strings.NewReader(src))
	be.Err(t, err, nil)
	be.Equal(t, len(file.Lines), 5)
	be.Equal(t, file.Lines[4].Scope, 0)
}

func TestParseStopsAtFirstError(t *testing.T) {
	src := "init\n\t$x = 1\noutput.0(1)\ntick\n"
	file, err := parser.Parse(strings.NewReader(src))
	be.Err(t, err, diag.ErrGrammar)
	be.Err(t, err, "at line 3")
	be.Equal(t, len(file.Lines), 2)
}

func TestParseCarriageReturns(t *testing.T) {
	file, err := parser.Parse(strings.NewReader("init\r\n\t$x = 1\r\n"))
	be.Err(t, err, nil)
	be.Equal(t, len(file.Lines), 2)
}

func TestParseReadError(t *testing.T) {
	r := io.MultiReader(strings.NewReader("init\n"), iotest.ErrReader(errors.New("disk gone")))
	file, err := parser.Parse(r)
	be.Err(t, err, diag.ErrStructural)
	be.Err(t, err, "disk gone")
	be.Equal(t, len(file.Lines), 1)
}

func TestParseLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := parser.Parse(strings.NewReader("init\n\t\t$x = 1\n"), parser.WithLogger(logger), parser.WithName("a.xc"))
	be.Err(t, err, diag.ErrIndentation)

	out := buf.String()
	be.True(t, strings.Contains(out, "line parsed"))
	be.True(t, strings.Contains(out, "parse stopped"))
	be.True(t, strings.Contains(out, "file=a.xc"))
}

func TestSourceFileDump(t *testing.T) {
	file, err := parser.Parse(strings.NewReader("init\n\toutput.0(\"hi\")\n"), parser.WithName("a.xc"))
	be.Err(t, err, nil)

	var buf bytes.Buffer
	be.Err(t, file.Dump(&buf), nil)
	be.Equal(t, buf.String(), "; a.xc\n"+
		"   1: init\n"+
		"   2:     output . 0 ( \"hi\" )\n")
}

func TestStrictStatements(t *testing.T) {
	valid := []string{
		`include "lib.xc"`,
		"include lib",
		"const $max = 10",
		"const $name = \"x\" & $other",
		"var $x = 1",
		"var $s: text",
		"array $a: number",
		"array $b = $a",
		"storage var $hits: number",
		"storage array $log: text",
		"init",
		"tick",
		"timer frequency 4",
		"timer interval $delay",
		"function @add($a: number, $b: number): number",
		"function @reset()",
		"input.1($x: number, $y: text)",
		"\toutput.0($x, \"y\")",
		"\tforeach $items ($item)",
		"\tforeach $items ($item, $i)",
		"\trepeat 10 ($i)",
		"\trepeat $n ($i)",
		"\twhile $x < 10 and !$done",
		"\tif ($a + 2) * 3 >= floor($b)",
		"\telseif $s == \"x\"",
		"\telse",
		"\tbreak",
		"\tnext",
		"\treturn",
		"\treturn $a.size + 1",
		"\t$x = -$y",
		"\t$x += @add(1, 2):text",
		"\t$x++",
		"\t$a.0 = 5",
		"\t$a.$i = 5",
		"\t$a.append(1, 2)",
		"\t@reset()",
	}
	for _, src := range valid {
		t.Run(src, func(t *testing.T) {
			_, err := parser.NewParser(parser.WithStrict(true)).ParseLine(src, 1)
			be.Err(t, err, nil)
		})
	}

	invalid := []struct {
		src  string
		want string
	}{
		{"include", "Too few words"},
		{"include 5", "Invalid file name '5'"},
		{"include a b", "Too many words"},
		{"init now", "Too many words"},
		{"timer every 4", "Second word must be either 'frequency' or 'interval'"},
		{"timer frequency", "Too few words"},
		{"function main()", "Second word must be a valid function name"},
		{"function @f($a)", "Invalid arguments in function declaration"},
		{"function @f(): bool", "The only thing that can follow"},
		{"const $x", "Too few words"},
		{"const $x = 1 +", "Invalid expression after const assignment"},
		{"storage var $x: number = 1", "Cannot initialize storage values here"},
		{"storage var $x: bool", "Invalid storage type 'bool'"},
		{"var $x", "Second word must be a variable name"},
		{"array $a: number = 1", "Cannot initialize array values here"},
		{"\toutput(1)", "Output must be followed by a dot"},
		{"\tforeach $a ($x, $y, $z)", "Foreach must be followed by"},
		{"\trepeat 3", "Too few words"},
		{"\tif", "If must be followed by a boolean expression"},
		{"\twhile 1 2", "While must be followed by a boolean expression"},
		{"\treturn 1 +", "Return must be followed by nothing"},
		{"\t$x", "A leading variable name must be followed"},
		{"\t$x++ 1", "Too many words"},
		{"\t@f", "Too few words"},
		{"\t@f 1", "A function call must be followed by a set of parenthesis"},
	}
	for _, tt := range invalid {
		t.Run(tt.src, func(t *testing.T) {
			_, err := parser.NewParser(parser.WithStrict(true)).ParseLine(tt.src, 1)
			be.Err(t, err, diag.ErrGrammar)
			be.Err(t, err, tt.want)
		})
	}
}

func TestStrictIncludeNameBecomesText(t *testing.T) {
	line, err := parser.NewParser(parser.WithStrict(true)).ParseLine("include lib", 1)
	be.Err(t, err, nil)
	be.Equal(t, line.Words[1], lexer.Word{Kind: lexer.KindText, Text: "lib"})

	line, err = parser.ParseLine("include lib")
	be.Err(t, err, nil)
	be.Equal(t, line.Words[1].Kind, lexer.KindName)
}

func TestValidateStatementEmpty(t *testing.T) {
	be.Err(t, parser.ValidateStatement(parser.ParsedLine{}), nil)
}
