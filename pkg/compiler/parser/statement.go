package parser

import (
	"github.com/agenthands/xenon/pkg/compiler/lexer"
	"github.com/agenthands/xenon/pkg/core/diag"
)

// ValidateStatement checks the shape of a whole statement, beyond the first
// word gate applied by ParseLine. Lines without words are always valid.
func ValidateStatement(line ParsedLine) error {
	w := line.Words
	if len(w) == 0 {
		return nil
	}
	switch w[0].Kind {
	case lexer.KindVarname:
		return validateVarStatement(w)
	case lexer.KindFuncname:
		if len(w) > 1 && !w[1].Is(lexer.KindExpressionBegin) {
			return grammar("A function call must be followed by a set of parenthesis, optionally containing arguments")
		}
		if len(w) < 3 {
			return grammar("Too few words")
		}
		if argsEnd(w, 1) != len(w) {
			return grammar("Invalid argument list after function call")
		}
		return nil
	case lexer.KindName:
	default:
		return diag.Word(diag.Grammar, "Invalid word", w[0].Text, "")
	}

	switch w[0].Text {
	case "include":
		if len(w) < 2 {
			return grammar("Too few words")
		}
		if !w[1].Is(lexer.KindText) && !w[1].Is(lexer.KindName) {
			return diag.Word(diag.Grammar, "Invalid file name", w[1].Text, "")
		}
		if len(w) > 2 {
			return grammar("Too many words")
		}

	case "init", "tick", "break", "next", "else":
		if len(w) != 1 {
			return grammar("Too many words")
		}

	case "timer":
		if len(w) > 1 && !w[1].IsName("frequency") && !w[1].IsName("interval") {
			return grammar("Second word must be either 'frequency' or 'interval'")
		}
		if len(w) > 2 && !isNumberOrVar(w[2]) {
			return grammar("Third word must be either a literal number or a constant name")
		}
		if len(w) > 3 {
			return grammar("Too many words")
		}
		if len(w) < 3 {
			return grammar("Too few words")
		}

	case "function":
		if len(w) > 1 && !w[1].Is(lexer.KindFuncname) {
			return grammar("Second word must be a valid function name starting with @")
		}
		if len(w) > 2 && !w[2].Is(lexer.KindExpressionBegin) {
			return grammar("Function name must be followed by a set of parenthesis, optionally containing an argument list")
		}
		if len(w) < 4 {
			return grammar("Too few words")
		}
		next := declarationArgsEnd(w, 2)
		if next < 0 {
			return grammar("Invalid arguments in function declaration")
		}
		if next != len(w) && !(len(w) == next+2 && w[next].Is(lexer.KindCast) && isValueType(w[next+1])) {
			return grammar("The only thing that can follow a function's argument list is a colon and its return type, which must be either 'number' or 'text'")
		}

	case "input":
		if len(w) > 1 && !w[1].Is(lexer.KindTrail) {
			return grammar("The input word must be followed by a dot and the input number")
		}
		if len(w) > 2 && !isNumberOrVar(w[2]) {
			return grammar("The input number after the dot must be either a literal number or a constant name")
		}
		if len(w) > 3 && !w[3].Is(lexer.KindExpressionBegin) {
			return grammar("Input number must be followed by a set of parenthesis, optionally containing an argument list")
		}
		if len(w) < 5 {
			return grammar("Too few words")
		}
		next := declarationArgsEnd(w, 3)
		if next < 0 {
			return grammar("Invalid arguments in input declaration")
		}
		if next != len(w) {
			return grammar("Too many words")
		}

	case "const":
		if len(w) < 4 {
			return grammar("Too few words")
		}
		if !w[1].Is(lexer.KindVarname) {
			return grammar("Invalid constant name (must start with $)")
		}
		if !isOp(w[2], "=") {
			return grammar("Invalid const assignment")
		}
		if !isExpression(w[3:]) {
			return grammar("Invalid expression after const assignment")
		}

	case "storage":
		if len(w) > 1 && !w[1].IsName("var") && !w[1].IsName("array") {
			return grammar("Second word must be either 'var' or 'array'")
		}
		if (len(w) > 2 && !w[2].Is(lexer.KindVarname)) || (len(w) > 3 && !w[3].Is(lexer.KindCast)) {
			return grammar("Third word must be a variable name (starting with $) followed by a colon and the storage type (number or text)")
		}
		if len(w) > 4 && !isValueType(w[4]) {
			return diag.Word(diag.Grammar, "Invalid storage type", w[4].Text, "it must be either 'number' or 'text'")
		}
		if len(w) > 5 && isOp(w[5], "=") {
			return grammar("Cannot initialize storage values here")
		}
		if len(w) > 5 {
			return grammar("Too many words")
		}
		if len(w) < 5 {
			return grammar("Too few words")
		}

	case "var":
		if len(w) < 4 || !w[1].Is(lexer.KindVarname) || (!isOp(w[2], "=") && !w[2].Is(lexer.KindCast)) ||
			(w[2].Is(lexer.KindCast) && (!isValueType(w[3]) || len(w) > 4)) {
			return grammar("Second word must be a variable name (starting with $), and it must be followed either by a colon and its type (number or text) or an equal sign and an expression")
		}
		if isOp(w[2], "=") && !isExpression(w[3:]) {
			return grammar("Invalid expression after var assignment")
		}

	case "array":
		if (len(w) > 1 && !w[1].Is(lexer.KindVarname)) ||
			(len(w) > 2 && !w[2].Is(lexer.KindCast) && !isOp(w[2], "=")) ||
			(len(w) > 3 && isOp(w[2], "=") && !w[3].Is(lexer.KindVarname)) {
			return grammar("Second word must be a variable name (starting with $) followed by either a colon and the array type (number or text) or an assignment to another array variable")
		}
		if len(w) > 3 && w[2].Is(lexer.KindCast) && !isValueType(w[3]) {
			return diag.Word(diag.Grammar, "Invalid array type", w[3].Text, "it must be either 'number' or 'text'")
		}
		if len(w) > 4 && isOp(w[4], "=") {
			return grammar("Cannot initialize array values here")
		}
		if len(w) > 4 {
			return grammar("Too many words")
		}
		if len(w) < 4 {
			return grammar("Too few words")
		}

	case "output":
		if len(w) > 1 && !w[1].Is(lexer.KindTrail) {
			return grammar("Output must be followed by a dot and the output number")
		}
		if len(w) > 2 && !isNumberOrVar(w[2]) {
			return grammar("Output number must be either a literal number or a constant name starting with $")
		}
		if len(w) > 3 && !w[3].Is(lexer.KindExpressionBegin) {
			return grammar("Output number must be followed by a set of parenthesis, optionally containing arguments")
		}
		if len(w) < 5 {
			return grammar("Too few words")
		}
		if argsEnd(w, 3) != len(w) {
			return grammar("Invalid argument list after output call")
		}

	case "foreach":
		if len(w) > 1 && !w[1].Is(lexer.KindVarname) {
			return grammar("Foreach must be followed by an array variable name starting with $")
		}
		if (len(w) > 2 && !w[2].Is(lexer.KindExpressionBegin)) ||
			(len(w) > 3 && !w[3].Is(lexer.KindVarname)) ||
			(len(w) > 4 && !w[4].Is(lexer.KindExpressionEnd) && !w[4].Is(lexer.KindComma)) ||
			(len(w) > 5 && !w[5].Is(lexer.KindVarname)) ||
			(len(w) > 6 && !w[6].Is(lexer.KindExpressionEnd)) {
			return grammar("Foreach must be followed by an array name and a set of parenthesis containing one or two parameters (the item and optionally the index)")
		}
		if len(w) < 5 || (w[4].Is(lexer.KindComma) && len(w) < 7) {
			return grammar("Too few words")
		}
		if len(w) > 7 || (w[4].Is(lexer.KindExpressionEnd) && len(w) > 5) {
			return grammar("Too many words")
		}

	case "repeat":
		if len(w) > 1 && !isNumberOrVar(w[1]) {
			return grammar("Repeat must be followed by either a literal number or a variable name starting with $")
		}
		if (len(w) > 2 && !w[2].Is(lexer.KindExpressionBegin)) ||
			(len(w) > 3 && !w[3].Is(lexer.KindVarname)) ||
			(len(w) > 4 && !w[4].Is(lexer.KindExpressionEnd)) {
			return grammar("Repeat must be followed by a number and a set of parenthesis containing one parameter (the index)")
		}
		if len(w) < 5 {
			return grammar("Too few words")
		}
		if len(w) > 5 {
			return grammar("Too many words")
		}

	case "while":
		if !isExpression(w[1:]) {
			return grammar("While must be followed by a boolean expression")
		}

	case "if":
		if !isExpression(w[1:]) {
			return grammar("If must be followed by a boolean expression")
		}

	case "elseif":
		if !isExpression(w[1:]) {
			return grammar("Elseif must be followed by a boolean expression")
		}

	case "return":
		if len(w) > 1 && !isExpression(w[1:]) {
			return grammar("Return must be followed by nothing, an expression, a variable name or a literal value")
		}

	default:
		return diag.Word(diag.Grammar, "Invalid word", w[0].Text, "")
	}
	return nil
}

// validateVarStatement checks lines starting with a $variable: an
// assignment, a suffix operator, an indexed assignment or a trailing call.
func validateVarStatement(w []lexer.Word) error {
	if len(w) < 2 {
		return grammar("A leading variable name must be followed either by a trailing function, an assignment or a suffix operator")
	}
	switch lexer.Classify(w[1]) {
	case lexer.OpAssignment:
		if len(w) < 3 {
			return grammar("Too few words")
		}
		if !isExpression(w[2:]) {
			return grammar("Invalid expression after var assignment")
		}
	case lexer.OpSuffix:
		if len(w) > 2 {
			return grammar("Too many words")
		}
	case lexer.OpTrail:
		if len(w) < 5 {
			return grammar("Too few words")
		}
		switch w[2].Kind {
		case lexer.KindNumeric, lexer.KindVarname:
			if lexer.Classify(w[3]) != lexer.OpAssignment || !isExpression(w[4:]) {
				return grammar("Invalid expression after var assignment")
			}
		case lexer.KindName, lexer.KindFuncname:
			if !w[3].Is(lexer.KindExpressionBegin) {
				return grammar("Invalid expression after trailing function on var")
			}
			if argsEnd(w, 3) != len(w) {
				return grammar("Invalid argument list after trailing function on var")
			}
		default:
			return grammar("Invalid expression after var assignment")
		}
	default:
		return grammar("A leading variable name must be followed either by a trailing function, an assignment or a suffix operator")
	}
	return nil
}

func grammar(msg string) error {
	return diag.New(diag.Grammar, msg)
}

func isOp(w lexer.Word, s string) bool {
	return w.Is(lexer.KindOperator) && w.Text == s
}

func isNumberOrVar(w lexer.Word) bool {
	return w.Is(lexer.KindNumeric) || w.Is(lexer.KindVarname)
}

func isValueType(w lexer.Word) bool {
	return w.IsName("number") || w.IsName("text")
}

// declarationArgsEnd checks a parenthesized list of typed parameters
// ($name: number|text, ...) starting at begin and returns the index after
// the closing parenthesis, or -1.
func declarationArgsEnd(w []lexer.Word, begin int) int {
	if begin >= len(w) || !w[begin].Is(lexer.KindExpressionBegin) {
		return -1
	}
	i := begin + 1
	if i < len(w) && w[i].Is(lexer.KindExpressionEnd) {
		return i + 1
	}
	for i+2 < len(w) {
		if !w[i].Is(lexer.KindVarname) || !w[i+1].Is(lexer.KindCast) || !isValueType(w[i+2]) {
			return -1
		}
		i += 3
		if i >= len(w) {
			return -1
		}
		switch w[i].Kind {
		case lexer.KindExpressionEnd:
			return i + 1
		case lexer.KindComma:
			i++
		default:
			return -1
		}
	}
	return -1
}

// argsEnd checks a parenthesized, comma separated list of expressions
// starting at begin and returns the index after the closing parenthesis,
// or -1.
func argsEnd(w []lexer.Word, begin int) int {
	if begin >= len(w) || !w[begin].Is(lexer.KindExpressionBegin) {
		return -1
	}
	i := begin + 1
	if i < len(w) && w[i].Is(lexer.KindExpressionEnd) {
		return i + 1
	}
	for i < len(w) {
		i = expressionEnd(w, i)
		if i < 0 || i >= len(w) {
			return -1
		}
		switch w[i].Kind {
		case lexer.KindExpressionEnd:
			return i + 1
		case lexer.KindComma:
			i++
		default:
			return -1
		}
	}
	return -1
}

// isExpression reports whether w is exactly one expression.
func isExpression(w []lexer.Word) bool {
	return len(w) > 0 && expressionEnd(w, 0) == len(w)
}

// expressionEnd parses operand (binary-operator operand)* from i and returns
// the index of the first word that is not part of it, or -1.
func expressionEnd(w []lexer.Word, i int) int {
	i = operandEnd(w, i)
	for i >= 0 && i < len(w) && lexer.Classify(w[i]).IsBinary() {
		i = operandEnd(w, i+1)
	}
	return i
}

func operandEnd(w []lexer.Word, i int) int {
	if i >= len(w) {
		return -1
	}
	if isOp(w[i], "!") || isOp(w[i], "-") {
		return operandEnd(w, i+1)
	}

	switch w[i].Kind {
	case lexer.KindNumeric, lexer.KindText, lexer.KindVarname:
		i++
	case lexer.KindName:
		i++
		if i < len(w) && w[i].Is(lexer.KindExpressionBegin) {
			i = argsEnd(w, i)
		}
	case lexer.KindFuncname:
		i = argsEnd(w, i+1)
	case lexer.KindExpressionBegin:
		i = expressionEnd(w, i+1)
		if i < 0 || i >= len(w) || !w[i].Is(lexer.KindExpressionEnd) {
			return -1
		}
		i++
	default:
		return -1
	}

	// Member access ($a.size, $a.0, $a.append(...)) and casts ($n:text).
	for i >= 0 && i+1 < len(w) {
		switch {
		case w[i].Is(lexer.KindTrail):
			switch w[i+1].Kind {
			case lexer.KindName, lexer.KindFuncname, lexer.KindNumeric, lexer.KindVarname:
				i += 2
				if i < len(w) && w[i].Is(lexer.KindExpressionBegin) {
					i = argsEnd(w, i)
				}
			default:
				return -1
			}
		case w[i].Is(lexer.KindCast) && w[i+1].Is(lexer.KindName):
			i += 2
		default:
			return i
		}
	}
	return i
}
