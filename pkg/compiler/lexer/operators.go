package lexer

// OpClass is the precedence group of an operator word, strongest first.
type OpClass uint8

const (
	OpNone       OpClass = iota
	OpTrail              // .
	OpCast               // :
	OpConcat             // &
	OpSuffix             // ++ -- !!
	OpNot                // !
	OpMul                // ^ % * /
	OpAdd                // + -
	OpCompare            // < <= > >=
	OpEquality           // == != <>
	OpAnd                // && and
	OpOr                 // || or
	OpAssignment         // = += -= *= /= ^= %= &=
	OpComma              // ,
)

var operatorClasses = map[string]OpClass{
	"&":  OpConcat,
	"++": OpSuffix, "--": OpSuffix, "!!": OpSuffix,
	"!": OpNot,
	"^": OpMul, "%": OpMul, "*": OpMul, "/": OpMul,
	"+": OpAdd, "-": OpAdd,
	"<": OpCompare, "<=": OpCompare, ">": OpCompare, ">=": OpCompare,
	"==": OpEquality, "!=": OpEquality, "<>": OpEquality,
	"&&": OpAnd,
	"||": OpOr,
	"=": OpAssignment, "+=": OpAssignment, "-=": OpAssignment, "*=": OpAssignment,
	"/=": OpAssignment, "^=": OpAssignment, "%=": OpAssignment, "&=": OpAssignment,
}

// Classify returns the operator group of w. Trail, Cast and Comma words map
// to their own groups, and the names "and"/"or" act as logical operators.
// Anything else, including operator spellings the language does not define
// (such as "~" or "?"), is OpNone.
func Classify(w Word) OpClass {
	switch w.Kind {
	case KindTrail:
		return OpTrail
	case KindCast:
		return OpCast
	case KindComma:
		return OpComma
	case KindName:
		switch w.Text {
		case "and":
			return OpAnd
		case "or":
			return OpOr
		}
	case KindOperator:
		return operatorClasses[w.Text]
	}
	return OpNone
}

// IsBinary reports whether c combines two operands inside an expression.
func (c OpClass) IsBinary() bool {
	switch c {
	case OpConcat, OpMul, OpAdd, OpCompare, OpEquality, OpAnd, OpOr:
		return true
	}
	return false
}
