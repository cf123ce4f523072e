package golden

import (
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtract(t *testing.T) {
	doc := `# Tokens

Some prose that is ignored.

## Test: assignment
` + fence + `xenon-line
var $x = 1
` + fence + `
` + fence + `words
var
$x
` + fence + `

## Test: block
` + fence + `xenon
init
	var $a = 2
` + fence + `
` + fence + `dump
   2:     var $a
` + fence + `
` + fence + `error
nothing
` + fence + `
`
	cases, err := Extract([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	be.Equal(t, cases[0].Name, "assignment")
	be.Equal(t, cases[0].Line, 5)
	be.Equal(t, cases[0].InputType, InputLine)
	be.Equal(t, cases[0].Input, "var $x = 1")
	words, ok := cases[0].Assertion(AssertWords)
	be.True(t, ok)
	be.Equal(t, words, "var\n$x")

	be.Equal(t, cases[1].InputType, InputSource)
	be.Equal(t, cases[1].Input, "init\n\tvar $a = 2")
	be.Equal(t, len(cases[1].Assertions), 2)
	_, ok = cases[1].Assertion(AssertScope)
	be.True(t, !ok)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "fence outside test",
			doc:  fence + "xenon\ninit\n" + fence + "\n",
			want: "outside of a test case",
		},
		{
			name: "unknown language",
			doc:  "## Test: a\n" + fence + "lua\nx\n" + fence + "\n",
			want: "unknown fence language 'lua'",
		},
		{
			name: "two inputs",
			doc:  "## Test: a\n" + fence + "xenon\ninit\n" + fence + "\n" + fence + "xenon-line\ntick\n" + fence + "\n",
			want: "multiple input fences",
		},
		{
			name: "no input",
			doc:  "## Test: a\n" + fence + "error\nx\n" + fence + "\n",
			want: "has no input fence",
		},
		{
			name: "no assertion",
			doc:  "## Test: a\n" + fence + "xenon\ninit\n" + fence + "\n",
			want: "has no assertion fences",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte(tt.doc))
			be.Err(t, err, tt.want)
		})
	}
}

func TestExtractIgnoresPlainBlocks(t *testing.T) {
	doc := fence + "\nnot a test\n" + fence + "\n"
	cases, err := Extract([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 0)
}
