package lexer

import "strconv"

// Kind represents the type of word identified by the tokenizer.
type Kind uint8

const (
	// Intermediate kinds, never retained in a parsed line.
	KindEmpty      Kind = iota // end of input or a comment
	KindInvalid                // unrecognized character
	KindTab                    // \t, counts toward the line scope
	KindExpression             // ( ... ) before recursion

	// Final kinds.
	KindNumeric         // 0.0
	KindText            // "..."
	KindVarname         // $name
	KindFuncname        // @name
	KindName            // bare identifier
	KindOperator        // + - * / == ...
	KindExpressionBegin // (
	KindExpressionEnd   // )
	KindComma           // ,
	KindTrail           // .
	KindCast            // :
)

var kindNames = [...]string{
	KindEmpty:           "Empty",
	KindInvalid:         "Invalid",
	KindTab:             "Tab",
	KindExpression:      "Expression",
	KindNumeric:         "Numeric",
	KindText:            "Text",
	KindVarname:         "Varname",
	KindFuncname:        "Funcname",
	KindName:            "Name",
	KindOperator:        "Operator",
	KindExpressionBegin: "ExpressionBegin",
	KindExpressionEnd:   "ExpressionEnd",
	KindComma:           "Comma",
	KindTrail:           "Trail",
	KindCast:            "Cast",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Word is one lexical unit of a line.
type Word struct {
	Kind Kind
	Text string
}

// Marker words with fixed text.
var (
	ExpressionBegin = Word{Kind: KindExpressionBegin, Text: "("}
	ExpressionEnd   = Word{Kind: KindExpressionEnd, Text: ")"}
	Comma           = Word{Kind: KindComma, Text: ","}
	Trail           = Word{Kind: KindTrail, Text: "."}
	Cast            = Word{Kind: KindCast, Text: ":"}
	Tab             = Word{Kind: KindTab, Text: "\t"}
)

// Is reports whether w has kind k.
func (w Word) Is(k Kind) bool { return w.Kind == k }

// TextEquals reports whether w's text is exactly s.
func (w Word) TextEquals(s string) bool { return w.Text == s }

// IsName reports whether w is a Name word spelled s.
func (w Word) IsName(s string) bool { return w.Kind == KindName && w.Text == s }

// Meaningful reports whether w carries content, i.e. it is neither Empty
// nor Invalid.
func (w Word) Meaningful() bool { return w.Kind != KindEmpty && w.Kind != KindInvalid }

// String renders w the way it would appear in source.
func (w Word) String() string {
	switch w.Kind {
	case KindText:
		return strconv.Quote(w.Text)
	case KindVarname:
		return "$" + w.Text
	case KindFuncname:
		return "@" + w.Text
	case KindTab:
		return `\t`
	}
	return w.Text
}
